package ingestwire

// InsertRequest carries one batch of encoded insert requests
// (record.EncodeRequest output), possibly for different tables.
type InsertRequest struct {
	ID       uint64   `json:"id"`
	Database string   `json:"database"`
	Requests [][]byte `json:"requests"`
}

// Error codes reported in InsertResponse.Code.
const (
	CodeSchema  = "schema"
	CodeDecode  = "decode"
	CodeStorage = "storage"
)

// InsertResponse is the response for a request ID.
type InsertResponse struct {
	ID          uint64 `json:"id"`
	RowsWritten uint32 `json:"rows_written"`
	Error       string `json:"error,omitempty"`
	Code        string `json:"code,omitempty"`
}
