// Package dbadmin runs the auxiliary administrative servers that external
// tooling uses to reach the record store directly: a raw line-protocol TCP
// endpoint and a browser console that proxies statements through it. Both are
// started by Bootstrap before the HTTP API accepts traffic and stopped in
// reverse order on shutdown.
package dbadmin

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDependencyNotReady is returned when the web console is started before
// the TCP server it proxies through is running.
var ErrDependencyNotReady = errors.New("tcp admin server not started")

type Config struct {
	TCPPort     int
	WebPort     int
	AllowRemote bool
	// DSN of the underlying store, reported in the access summary
	DSN string
}

// TCPServer accepts newline-delimited commands and executes them against the
// store:
//
//	PING              liveness probe
//	QUERY <sql>       run a query, rows are tab-separated text
//	EXEC <sql>        run a statement, reports rows affected
//	QUIT              close the session
//
// Every reply ends with a line starting "OK" or "ERR". Query header and data
// lines are tab-indented so a column value can never be mistaken for a
// terminator.
type TCPServer struct {
	db          *sql.DB
	port        int
	allowRemote bool
	log         *slog.Logger

	mu      sync.Mutex
	ln      net.Listener
	running bool
}

func NewTCPServer(db *sql.DB, port int, allowRemote bool, log *slog.Logger) *TCPServer {
	return &TCPServer{db: db, port: port, allowRemote: allowRemote, log: log}
}

// Start binds the listener and begins accepting sessions. Starting an already
// running server is a no-op.
func (s *TCPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	ln, err := net.Listen("tcp", listenAddr(s.port, s.allowRemote))
	if err != nil {
		return fmt.Errorf("bind admin tcp port %d: %w", s.port, err)
	}
	s.ln = ln
	s.running = true
	s.log.Info("admin tcp server started", "addr", ln.Addr().String())
	go s.acceptLoop(ln)
	return nil
}

func (s *TCPServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr reports the bound address. Empty until Start succeeds.
func (s *TCPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Stop closes the listener and releases the port. Idempotent.
func (s *TCPServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	ln := s.ln
	s.ln = nil
	s.log.Info("admin tcp server stopping")
	return ln.Close()
}

func (s *TCPServer) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isFatalAccept(err) {
				// listener closed by Stop
				return
			}
			// transient (fd exhaustion and the like): keep serving
			s.log.Error("admin accept", "err", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		go s.handle(conn)
	}
}

func isFatalAccept(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

func (s *TCPServer) handle(conn net.Conn) {
	defer conn.Close()
	session := uuid.NewString()[:8]
	s.log.Info("admin session opened", "session", session, "remote", conn.RemoteAddr().String())

	w := bufio.NewWriter(conn)
	fmt.Fprintf(w, "user-records admin %s\nOK ready\n", session)
	w.Flush()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		verb, arg := splitCommand(sc.Text())
		switch verb {
		case "PING":
			fmt.Fprintln(w, "OK pong")
		case "QUIT":
			fmt.Fprintln(w, "OK bye")
			w.Flush()
			s.log.Info("admin session closed", "session", session)
			return
		case "EXEC":
			s.exec(w, arg)
		case "QUERY":
			s.query(w, arg)
		case "":
			continue
		default:
			fmt.Fprintf(w, "ERR unknown command %q\n", verb)
		}
		w.Flush()
	}
	s.log.Info("admin session closed", "session", session)
}

func (s *TCPServer) exec(w *bufio.Writer, stmt string) {
	if stmt == "" {
		fmt.Fprintln(w, "ERR empty statement")
		return
	}
	res, err := s.db.Exec(stmt)
	if err != nil {
		fmt.Fprintf(w, "ERR %v\n", err)
		return
	}
	n, _ := res.RowsAffected()
	fmt.Fprintf(w, "OK %d rows affected\n", n)
}

func (s *TCPServer) query(w *bufio.Writer, stmt string) {
	if stmt == "" {
		fmt.Fprintln(w, "ERR empty statement")
		return
	}
	rows, err := s.db.Query(stmt)
	if err != nil {
		fmt.Fprintf(w, "ERR %v\n", err)
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		fmt.Fprintf(w, "ERR %v\n", err)
		return
	}
	fmt.Fprintf(w, "\t%s\n", strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			fmt.Fprintf(w, "ERR %v\n", err)
			return
		}
		fields := make([]string, len(vals))
		for i, v := range vals {
			fields[i] = formatValue(v)
		}
		fmt.Fprintf(w, "\t%s\n", strings.Join(fields, "\t"))
		n++
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(w, "ERR %v\n", err)
		return
	}
	fmt.Fprintf(w, "OK %d rows\n", n)
}

func splitCommand(line string) (verb, arg string) {
	line = strings.TrimSpace(line)
	verb, arg, _ = strings.Cut(line, " ")
	return strings.ToUpper(verb), strings.TrimSpace(arg)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func listenAddr(port int, allowRemote bool) string {
	host := "127.0.0.1"
	if allowRemote {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
