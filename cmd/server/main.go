package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kanon95/user-records/internal/dbadmin"
	"github.com/kanon95/user-records/internal/repository"
	"github.com/kanon95/user-records/internal/service"
	"github.com/kanon95/user-records/internal/transport/httpapi"
	"github.com/kanon95/user-records/pkg/config"
	"github.com/kanon95/user-records/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gdb, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}

	repo := repository.NewUserRepo(gdb)
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Admin servers come up before the API takes traffic; a bind failure here
	// is fatal, there is no degraded mode with only one of them running.
	admin, err := dbadmin.Bootstrap(sqlDB, dbadmin.Config{
		TCPPort:     cfg.AdminTCPPort,
		WebPort:     cfg.AdminWebPort,
		AllowRemote: cfg.AdminAllowRemote,
		DSN:         cfg.DatabaseDSN,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}

	svc := service.NewUserSvc(repo)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(svc),
	}

	go func() {
		logger.Info("user-records api listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", "err", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	admin.Shutdown()
}
