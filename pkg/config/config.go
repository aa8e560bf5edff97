package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// DB: a plain file path opens sqlite, a postgres DSN opens postgres
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"data/users.db"`
	// Admin servers
	AdminTCPPort     int  `envconfig:"ADMIN_TCP_PORT" default:"9092"`
	AdminWebPort     int  `envconfig:"ADMIN_WEB_PORT" default:"8082"`
	AdminAllowRemote bool `envconfig:"ADMIN_ALLOW_REMOTE" default:"true"`
}

func Load() (App, error) {
	// .env is optional; real env vars win
	_ = godotenv.Load()
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
