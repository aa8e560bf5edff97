package dbadmin

import (
	"bufio"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const consolePage = `<!DOCTYPE html>
<html>
<head><title>user-records console</title></head>
<body>
<h3>user-records console</h3>
<p>tcp endpoint: {{.TCPAddr}}</p>
<form method="post" action="/exec">
<textarea name="statement" rows="4" cols="80">{{.Statement}}</textarea><br>
<select name="verb">
<option value="QUERY">QUERY</option>
<option value="EXEC">EXEC</option>
</select>
<button type="submit">Run</button>
</form>
<pre>{{.Result}}</pre>
</body>
</html>`

var consoleTmpl = template.Must(template.New("console").Parse(consolePage))

// WebConsole serves a browser query console. Submitted statements are not
// executed locally; they are forwarded over the raw TCP endpoint, so the TCP
// server must be running before the console comes up.
type WebConsole struct {
	tcp         *TCPServer
	port        int
	allowRemote bool
	log         *slog.Logger

	mu      sync.Mutex
	ln      net.Listener
	srv     *http.Server
	running bool
}

func NewWebConsole(tcp *TCPServer, port int, allowRemote bool, log *slog.Logger) *WebConsole {
	return &WebConsole{tcp: tcp, port: port, allowRemote: allowRemote, log: log}
}

// Start binds the console listener. It refuses to come up while the TCP
// server is down: the console is only a proxy for it. Idempotent once running.
func (c *WebConsole) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if !c.tcp.Running() {
		return ErrDependencyNotReady
	}
	ln, err := net.Listen("tcp", listenAddr(c.port, c.allowRemote))
	if err != nil {
		return fmt.Errorf("bind admin web port %d: %w", c.port, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", c.home)
	mux.HandleFunc("/exec", c.exec)
	srv := &http.Server{Handler: mux}

	c.ln = ln
	c.srv = srv
	c.running = true
	c.log.Info("admin web console started", "addr", ln.Addr().String())
	go srv.Serve(ln)
	return nil
}

func (c *WebConsole) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *WebConsole) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ln == nil {
		return ""
	}
	return c.ln.Addr().String()
}

// Stop closes the console server and releases the port. Idempotent.
func (c *WebConsole) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.running = false
	srv := c.srv
	c.srv = nil
	c.ln = nil
	c.log.Info("admin web console stopping")
	return srv.Close()
}

func (c *WebConsole) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	c.render(w, "", "")
}

func (c *WebConsole) exec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stmt := strings.TrimSpace(r.FormValue("statement"))
	verb := r.FormValue("verb")
	if verb != "EXEC" {
		verb = "QUERY"
	}
	if stmt == "" {
		c.render(w, "", "ERR empty statement")
		return
	}
	out, err := c.forward(verb, stmt)
	if err != nil {
		c.render(w, stmt, "ERR "+err.Error())
		return
	}
	c.render(w, stmt, out)
}

func (c *WebConsole) render(w http.ResponseWriter, stmt, result string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = consoleTmpl.Execute(w, struct {
		TCPAddr   string
		Statement string
		Result    string
	}{c.tcp.Addr(), stmt, result})
}

// forward runs one command over a fresh TCP session and returns the reply up
// to and including its OK/ERR terminator line.
func (c *WebConsole) forward(verb, stmt string) (string, error) {
	conn, err := net.DialTimeout("tcp", c.dialAddr(), 5*time.Second)
	if err != nil {
		return "", fmt.Errorf("tcp endpoint unreachable: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	r := bufio.NewReader(conn)
	if _, err := readReply(r); err != nil { // greeting banner
		return "", err
	}
	if _, err := fmt.Fprintf(conn, "%s %s\n", verb, stmt); err != nil {
		return "", err
	}
	return readReply(r)
}

// dialAddr rewrites a wildcard listen address to loopback for the local hop.
func (c *WebConsole) dialAddr() string {
	addr := c.tcp.Addr()
	if host, port, err := net.SplitHostPort(addr); err == nil {
		if host == "" || host == "::" || host == "0.0.0.0" {
			return net.JoinHostPort("127.0.0.1", port)
		}
	}
	return addr
}

func readReply(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read tcp reply: %w", err)
		}
		b.WriteString(line)
		if strings.HasPrefix(line, "OK") || strings.HasPrefix(line, "ERR") {
			return b.String(), nil
		}
	}
}
