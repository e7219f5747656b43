package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Queue    string `envconfig:"WORKER_QUEUE" default:"default"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// loadConfig reads .env files for local development, then the environment.
func loadConfig(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	return cfg, nil
}

func (c Config) DSN() (string, error) {
	if c.PostgresDB == "" {
		if c.DatabaseURL != "" {
			return c.DatabaseURL, nil
		}
		return "", errors.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}
	host := c.PostgresHost
	if host == "" {
		host = "localhost"
	}
	port := c.PostgresPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, c.PostgresUser, c.PostgresPassword, c.PostgresDB), nil
}

func (c Config) QueueKey() string {
	name := c.Queue
	if name == "" {
		name = "default"
	}
	return "queue:" + name
}

func configureLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid LOG_LEVEL %q", level)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}
