package ingestwire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novaingest/internal/alias/bx"
	"github.com/tuannm99/novaingest/internal/record"
)

// Sink persists decoded requests and reports how many rows it wrote.
// batchID is stable for byte-identical batches so a sink can drop
// retransmissions.
type Sink interface {
	Write(ctx context.Context, database string, batchID uint64, reqs []*record.InsertRequest) (uint32, error)
}

type ServerConfig struct {
	Addr        string
	MetricsAddr string // empty disables the /metrics endpoint
	Compress    bool
}

type Server struct {
	sink     Sink
	compress bool
	reg      prometheus.Registerer
	metrics  *metrics
	log      *slog.Logger
}

type Option func(*Server)

// WithRegisterer registers the server metrics on reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Server) { s.reg = reg }
}

// WithCompression makes the server zstd-compress its responses.
func WithCompression(on bool) Option {
	return func(s *Server) { s.compress = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

func NewServer(sink Sink, opts ...Option) *Server {
	s := &Server{sink: sink, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.reg)
	return s
}

// Run listens on sc.Addr and serves until ctx is done. With sc.MetricsAddr
// set it also serves /metrics; either listener failing stops both.
func Run(ctx context.Context, sc ServerConfig, sink Sink) error {
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	reg := prometheus.NewRegistry()
	srv := NewServer(sink, WithRegisterer(reg), WithCompression(sc.Compress))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, ln) })

	if sc.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		hs := &http.Server{Addr: sc.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			slog.Info("metrics endpoint", "addr", sc.MetricsAddr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(sctx)
		})
	}

	return g.Wait()
}

// Serve accepts connections on ln until ctx is done. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() { _ = ln.Close() }()
	s.log.Info("novaingest tcp server listening", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn("accept", "err", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// No global deadline; clients apply their own per-request deadline.
	_ = conn.SetDeadline(time.Time{})

	for {
		var req InsertRequest
		if err := ReadFrame(conn, &req); err != nil {
			// peer hung up or sent garbage; nothing to answer
			return
		}

		resp := s.handle(ctx, &req)
		if err := WriteFrame(conn, resp, s.compress); err != nil {
			s.log.Warn("write response", "remote", conn.RemoteAddr().String(), "err", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req *InsertRequest) InsertResponse {
	s.metrics.requests.Inc()

	reqs := make([]*record.InsertRequest, 0, len(req.Requests))
	for i, b := range req.Requests {
		r, err := record.DecodeRequest(b)
		if err != nil {
			code := CodeDecode
			var se *record.SchemaError
			if errors.As(err, &se) {
				code = CodeSchema
			}
			return s.fail(req.ID, code, fmt.Errorf("request %d: %w", i, err))
		}
		reqs = append(reqs, r)
	}

	rows, err := s.sink.Write(ctx, req.Database, batchID(req), reqs)
	if err != nil {
		return s.fail(req.ID, CodeStorage, err)
	}
	if rows == 0 && len(reqs) > 0 && totalRows(reqs) > 0 {
		s.metrics.deduplicated.Inc()
	}
	s.metrics.rows.Add(float64(rows))

	s.log.Debug("insert", "id", req.ID, "database", req.Database, "requests", len(reqs), "rows", rows)
	return InsertResponse{ID: req.ID, RowsWritten: rows}
}

func (s *Server) fail(id uint64, code string, err error) InsertResponse {
	s.metrics.errors.WithLabelValues(code).Inc()
	s.log.Warn("insert rejected", "id", id, "code", code, "err", err)
	return InsertResponse{ID: id, Error: err.Error(), Code: code}
}

// batchID fingerprints the database and the encoded requests.
func batchID(req *InsertRequest) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(req.Database)
	var n [4]byte
	for _, b := range req.Requests {
		_, _ = d.Write(bx.AppendU32(n[:0], uint32(len(b))))
		_, _ = d.Write(b)
	}
	return d.Sum64()
}

func totalRows(reqs []*record.InsertRequest) uint64 {
	var n uint64
	for _, r := range reqs {
		n += uint64(r.RowCount())
	}
	return n
}
