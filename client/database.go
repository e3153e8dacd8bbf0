package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/novaingest/internal/record"
	"github.com/tuannm99/novaingest/server/ingestwire"
)

const (
	DefaultEndpoint = "localhost:4001"
	DefaultDatabase = "public"
)

// Config is handed to Dial once at startup.
type Config struct {
	Endpoint    string
	Database    string
	DialTimeout time.Duration
	// Optional per-request timeout (0 = no timeout) used when the context
	// carries no deadline.
	RWTimeout time.Duration
	Compress  bool
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	return c
}

var _ record.Inserter = (*Database)(nil)

// Database is a synchronous client bound to one database name.
// It locks send/recv so Insert can be called concurrently; calls serialize.
type Database struct {
	conn     net.Conn
	mu       sync.Mutex
	id       atomic.Uint64
	broken   atomic.Bool
	name     string
	compress bool

	rwTimeout time.Duration
}

// Dial connects to cfg.Endpoint. Empty Endpoint/Database fall back to
// DefaultEndpoint/DefaultDatabase.
func Dial(ctx context.Context, cfg Config) (*Database, error) {
	cfg = cfg.withDefaults()

	d := net.Dialer{Timeout: cfg.DialTimeout}
	c, err := d.DialContext(ctx, "tcp", cfg.Endpoint)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	slog.Debug("novaingest: connected", "endpoint", cfg.Endpoint, "database", cfg.Database)
	return newDatabase(c, cfg), nil
}

func newDatabase(c net.Conn, cfg Config) *Database {
	return &Database{
		conn:      c,
		name:      cfg.Database,
		compress:  cfg.Compress,
		rwTimeout: cfg.RWTimeout,
	}
}

// Name is the database the requests are written to.
func (d *Database) Name() string { return d.name }

func (d *Database) Close() error {
	if d == nil || d.conn == nil || !d.broken.CompareAndSwap(false, true) {
		return nil
	}
	return d.conn.Close()
}

// Insert encodes reqs, sends them as one batch and returns the number of
// rows the server reports as written. Encoding failures are the requests'
// own *record.SchemaError; everything after that is a *TransportError.
// Insert does not retry. After a transport failure the connection is
// closed and the Database must be redialed.
func (d *Database) Insert(ctx context.Context, reqs ...*record.InsertRequest) (uint32, error) {
	if d == nil || d.conn == nil {
		return 0, &TransportError{Op: "insert", Err: fmt.Errorf("nil client")}
	}

	encoded := make([][]byte, len(reqs))
	for i, r := range reqs {
		b, err := record.EncodeRequest(r)
		if err != nil {
			return 0, err
		}
		encoded[i] = b
	}

	reqID := d.id.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.broken.Load() {
		return 0, &TransportError{Op: "insert", Err: net.ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return 0, &TransportError{Op: "insert", Err: err}
	}
	if err := d.applyDeadline(ctx); err != nil {
		d.drop()
		return 0, &TransportError{Op: "send", Err: err}
	}
	stop := context.AfterFunc(ctx, func() { _ = d.conn.SetDeadline(time.Now()) })

	resp, err := d.roundTrip(ctx, ingestwire.InsertRequest{ID: reqID, Database: d.name, Requests: encoded})
	if !stop() || err != nil {
		// socket may hold a late reply or a deadline set by the cancel callback
		d.drop()
	} else {
		_ = d.conn.SetDeadline(time.Time{})
	}
	if err != nil {
		return 0, err
	}
	if resp.Error != "" {
		return 0, &TransportError{Op: "insert", Err: &ServerError{Code: resp.Code, Message: resp.Error}}
	}
	return resp.RowsWritten, nil
}

func (d *Database) roundTrip(ctx context.Context, req ingestwire.InsertRequest) (ingestwire.InsertResponse, error) {
	var resp ingestwire.InsertResponse
	if err := ingestwire.WriteFrame(d.conn, req, d.compress); err != nil {
		return resp, &TransportError{Op: "send", Err: ctxErr(ctx, err)}
	}
	if err := ingestwire.ReadFrame(d.conn, &resp); err != nil {
		return resp, &TransportError{Op: "recv", Err: ctxErr(ctx, err)}
	}
	if resp.ID != req.ID {
		return resp, &TransportError{Op: "recv", Err: fmt.Errorf("response id mismatch: got=%d want=%d", resp.ID, req.ID)}
	}
	return resp, nil
}

// drop closes the connection; every later Insert fails with net.ErrClosed.
func (d *Database) drop() {
	if d.broken.CompareAndSwap(false, true) {
		slog.Debug("novaingest: connection dropped", "database", d.name)
		_ = d.conn.Close()
	}
}

// applyDeadline bounds the exchange by the context deadline, or by
// rwTimeout when the context has none.
func (d *Database) applyDeadline(ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		return d.conn.SetDeadline(dl)
	}
	if d.rwTimeout > 0 {
		return d.conn.SetDeadline(time.Now().Add(d.rwTimeout))
	}
	return nil
}

// ctxErr prefers the context's error over the i/o timeout it caused.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %v", cerr, err)
	}
	return err
}
