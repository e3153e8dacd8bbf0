package client

import "fmt"

// TransportError is any failure after a batch left the caller: dialing,
// sending, receiving, or a server-side rejection. It is not retried here.
type TransportError struct {
	Op  string // dial, send, recv, insert
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("novaingest: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a rejection reported by the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}
