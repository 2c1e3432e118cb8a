package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dsmelov/securekey/internal/flagx"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// Durations are given in minutes. After unmarshalling, set fields are copied
// into the runtime Config.
type JsonConfig struct {
	EndpointAddr         string `json:"endpoint_addr"`
	DatabaseDSN          string `json:"database_dsn"`
	JWTSecret            string `json:"jwt_secret"`
	EncryptionSecret     string `json:"encryption_secret"`
	TokenValidityMinutes int    `json:"token_validity_minutes"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	SMTPFrom     string `json:"smtp_from"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flags. If neither flag is set, no file is loaded. An unreadable or
// invalid file panics: a half-applied config is worse than a crash at boot.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.JWTSecret != "" {
		config.JWTSecret = c.JWTSecret
	}
	if c.EncryptionSecret != "" {
		config.EncryptionSecret = c.EncryptionSecret
	}
	if c.TokenValidityMinutes > 0 {
		config.TokenValidity = time.Duration(c.TokenValidityMinutes) * time.Minute
	}
	if c.SMTPHost != "" {
		config.SMTPHost = c.SMTPHost
	}
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SMTPUser != "" {
		config.SMTPUser = c.SMTPUser
	}
	if c.SMTPPassword != "" {
		config.SMTPPassword = c.SMTPPassword
	}
	if c.SMTPFrom != "" {
		config.SMTPFrom = c.SMTPFrom
	}
}
