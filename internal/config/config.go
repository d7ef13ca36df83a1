package config

import (
	"context"
	"net"
	"strconv"

	"github.com/sethvargo/go-envconfig"
)

// Config is the environment-provided configuration surface. Every
// external-channel value is optional; an absent value disables the
// corresponding channel.
type Config struct {
	Host  string `env:"FPNDB_HOST"`
	Port  int    `env:"FPNDB_PORT,default=8080"`
	Debug bool   `env:"FPNDB_DEBUG,default=false"`

	// SecretKey signs session tokens; a random per-process key is
	// generated when unset.
	SecretKey string `env:"FPNDB_SECRET_KEY"`

	// BaseURL is the externally reachable address used for the
	// approval link in chat notifications.
	BaseURL string `env:"FPNDB_BASE_URL,default=http://localhost:8080"`

	// DatabaseURL switches persistence from the in-memory store to
	// postgres when set.
	DatabaseURL string `env:"DATABASE_URL"`

	SheetAPIURL    string `env:"SHEETY_API_URL"`
	SheetToken     string `env:"SHEETY_TOKEN"`
	MailAPIKey     string `env:"MAILJET_API_KEY"`
	MailSecretKey  string `env:"MAILJET_SECRET_KEY"`
	ChatWebhookURL string `env:"SLACK_WEBHOOK_URL"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
