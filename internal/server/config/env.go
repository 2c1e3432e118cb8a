package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config with pointer fields so that only variables
// actually present in the environment override earlier layers.
// ENCRYPTION_KEY keeps its historical name; it is the master secret the
// vault key is derived from.
type envConfig struct {
	EndpointAddr         *string `env:"ADDRESS"`
	DatabaseDSN          *string `env:"DATABASE_DSN"`
	JWTSecret            *string `env:"JWT_SECRET"`
	EncryptionSecret     *string `env:"ENCRYPTION_KEY"`
	TokenValidityMinutes *int    `env:"TOKEN_VALIDITY_MINUTES"`

	SMTPHost     *string `env:"SMTP_HOST"`
	SMTPPort     *int    `env:"SMTP_PORT"`
	SMTPUser     *string `env:"SMTP_USER"`
	SMTPPassword *string `env:"SMTP_PASSWORD"`
	SMTPFrom     *string `env:"SMTP_FROM"`
}

func parseEnv(config *Config) {
	c := &envConfig{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.JWTSecret != nil {
		config.JWTSecret = *c.JWTSecret
	}
	if c.EncryptionSecret != nil {
		config.EncryptionSecret = *c.EncryptionSecret
	}
	if c.TokenValidityMinutes != nil {
		config.TokenValidity = time.Duration(*c.TokenValidityMinutes) * time.Minute
	}
	if c.SMTPHost != nil {
		config.SMTPHost = *c.SMTPHost
	}
	if c.SMTPPort != nil {
		config.SMTPPort = *c.SMTPPort
	}
	if c.SMTPUser != nil {
		config.SMTPUser = *c.SMTPUser
	}
	if c.SMTPPassword != nil {
		config.SMTPPassword = *c.SMTPPassword
	}
	if c.SMTPFrom != nil {
		config.SMTPFrom = *c.SMTPFrom
	}
}
