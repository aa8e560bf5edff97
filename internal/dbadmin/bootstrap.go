package dbadmin

import (
	"database/sql"
	"log/slog"
)

// Handles owns the running admin servers. Shutdown stops them in strict
// reverse start order.
type Handles struct {
	TCP *TCPServer
	Web *WebConsole
	dsn string
	log *slog.Logger
}

// Bootstrap starts the admin servers in their required order: raw TCP server
// first, then the web console, then the access summary. The console must never
// be reachable before the TCP server is, because it proxies every statement
// through it. Any bind failure aborts the whole sequence; a half-started pair
// is torn down before returning.
func Bootstrap(db *sql.DB, cfg Config, log *slog.Logger) (*Handles, error) {
	tcp := NewTCPServer(db, cfg.TCPPort, cfg.AllowRemote, log)
	if err := tcp.Start(); err != nil {
		return nil, err
	}

	web := NewWebConsole(tcp, cfg.WebPort, cfg.AllowRemote, log)
	if err := web.Start(); err != nil {
		if serr := tcp.Stop(); serr != nil {
			log.Error("stopping tcp server after failed console start", "err", serr)
		}
		return nil, err
	}

	h := &Handles{TCP: tcp, Web: web, dsn: cfg.DSN, log: log}
	h.printAccessInfo()
	return h, nil
}

// printAccessInfo emits the access summary for external tooling. Informational
// only: it opens no connections.
func (h *Handles) printAccessInfo() {
	h.log.Info("database access information",
		"console_url", "http://"+h.Web.Addr(),
		"tcp_addr", h.TCP.Addr(),
		"dsn", h.dsn,
		"protocol", "line-based, commands PING / QUERY <sql> / EXEC <sql> / QUIT",
		"credentials", "none (development mode)",
	)
}

// Shutdown stops the console first, then the TCP server. Each stop is
// idempotent; failures are logged, never retried, and do not block exit.
func (h *Handles) Shutdown() {
	if err := h.Web.Stop(); err != nil {
		h.log.Error("stopping admin web console", "err", err)
	}
	if err := h.TCP.Stop(); err != nil {
		h.log.Error("stopping admin tcp server", "err", err)
	}
}
