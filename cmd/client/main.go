package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novaingest/client"
	"github.com/tuannm99/novaingest/internal"
	"github.com/tuannm99/novaingest/internal/lineproto"
	"github.com/tuannm99/novaingest/internal/record"
)

const prompt = "novaingest> "


type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *History) Append(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return err
	}
	h.lines = append(h.lines, line)
	return nil
}

func (h *History) Print(last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	start := len(h.lines) - last
	for i := start; i < len(h.lines); i++ {
		fmt.Printf("%5d  %s\n", i+1, h.lines[i])
	}
}

// ---- REPL helpers ----

// batchComplete reports a terminating ';' outside double quotes and strips it.
func batchComplete(line string) (string, bool) {
	inQuote := false
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return strings.TrimSpace(line[:i]), true
		}
	}
	return line, false
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, "\\") || line == "quit" || line == "exit"
}

// session keeps the shell's connection and redials after a transport
// failure closed it.
type session struct {
	cfg client.Config
	db  *client.Database
}

func (s *session) conn(ctx context.Context) (*client.Database, error) {
	if s.db == nil {
		db, err := client.Dial(ctx, s.cfg)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	return s.db, nil
}

func (s *session) drop() {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

// submit sends the pending points and empties b only when the server
// accepted them.
func submit(ctx context.Context, s *session, b *lineproto.Batch) error {
	if b.Len() == 0 {
		fmt.Println("nothing to send")
		return nil
	}
	reqs, err := b.Requests()
	if err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	rows, err := record.SubmitAll(ctx, db, reqs...)
	if err != nil {
		var se *client.ServerError
		var te *client.TransportError
		if !errors.As(err, &se) && errors.As(err, &te) {
			s.drop()
		}
		return err
	}
	b.Reset()
	fmt.Printf("OK (%d tables, %d rows written)\n", len(reqs), rows)
	return nil
}

func reportSubmit(err error, b *lineproto.Batch) {
	if err != nil {
		fmt.Printf("error: %v (%d points kept, \\discard drops them)\n", err, b.Len())
	}
}

// load adds every point read from r to b.
func load(r io.Reader, b *lineproto.Batch) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		if err := b.AddLine(sc.Text()); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novaingest_history"
	}
	return filepath.Join(home, ".novaingest_history")
}

func main() {
	var (
		cfgPath   = flag.String("config", "", "optional YAML config file")
		addr      = flag.String("addr", "", "server address (overrides config)")
		dbName    = flag.String("db", "", "database name (overrides config)")
		precision = flag.String("precision", "ms", "timestamp precision: s, ms, us, ns")
		histPath  = flag.String("history", defaultHistoryPath(), "history file path")
		histMax   = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShot   = flag.String("c", "", "send these newline separated points and exit")
		file      = flag.String("f", "", "send the points in this file and exit ('-' for stdin)")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cc := cfg.ClientConfig()
	if *addr != "" {
		cc.Endpoint = *addr
	}
	if *dbName != "" {
		cc.Database = *dbName
	}

	p, err := lineproto.ParsePrecision(*precision)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	batch := lineproto.NewBatch(p)

	ctx := context.Background()
	sess := &session{cfg: cc}
	db, err := sess.conn(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer sess.drop()

	// one-shot mode
	if *oneShot != "" || *file != "" {
		var src io.Reader = strings.NewReader(*oneShot)
		if *file == "-" {
			src = os.Stdin
		} else if *file != "" {
			f, err := os.Open(*file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "open: %v\n", err)
				os.Exit(1)
			}
			defer func() { _ = f.Close() }()
			src = f
		}
		if err := load(src, batch); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		reqs, err := batch.Flush()
		if err == nil {
			var rows uint32
			rows, err = record.SubmitAll(ctx, db, reqs...)
			fmt.Printf("Rows written: %d\n", rows)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	// preload history into readline (so up-arrow works immediately)
	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("connected to %s, database %s\n", cc.Endpoint, db.Name())
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C drops the pending points
			if batch.Len() > 0 {
				batch.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isMetaCommand(line) {
			switch line {
			case "\\q", "quit", "exit":
				return
			case "\\help":
				fmt.Printf(`meta commands:
  \q | quit | exit       quit
  \send                  send pending points
  \pending               show number of pending points
  \discard               drop pending points
  \history               print history
  \help                  show help

points (precision %s):
  table[,tag=value...] field=value[,field=value...] [timestamp]
  values: 1.5 float, 10i int, 10u uint, t/f bool, "text" string
  a line ending with ';' (or a lone ';') sends the pending points
`, p)
			case "\\send":
				reportSubmit(submit(ctx, sess, batch), batch)
				rl.SetPrompt(prompt)
			case "\\pending":
				fmt.Printf("%d pending points\n", batch.Len())
			case "\\discard":
				batch.Reset()
				rl.SetPrompt(prompt)
			case "\\history":
				h.Print(50)
			default:
				fmt.Printf("unknown command: %s\n", line)
			}
			continue
		}

		_ = h.Append(line)

		point, done := batchComplete(line)
		if err := batch.AddLine(point); err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if !done {
			rl.SetPrompt("...> ")
			continue
		}
		reportSubmit(submit(ctx, sess, batch), batch)
		rl.SetPrompt(prompt)
	}
}
