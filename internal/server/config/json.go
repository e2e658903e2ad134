package config

import (
	"encoding/json"
	"os"

	"github.com/simplylizz/wannatalk/internal/flagx"
	"github.com/simplylizz/wannatalk/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, set fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	TelegramToken               string         `json:"telegram_token"`
	DatabaseDSN                 string         `json:"database_dsn"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	SecretKey                   string         `json:"secret_key"`
	AdminLogin                  string         `json:"admin_login"`
	AdminPasswordHash           string         `json:"admin_password_hash"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	SweepInterval               timex.Duration `json:"sweep_interval"`
	MatchAttempts               int            `json:"match_attempts"`
	DevelopmentMode             bool           `json:"development_mode"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. Zero-valued JSON fields leave the
// corresponding Config field untouched. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.TelegramToken != "" {
		config.TelegramToken = c.TelegramToken
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AdminLogin != "" {
		config.AdminLogin = c.AdminLogin
	}
	if c.AdminPasswordHash != "" {
		config.AdminPasswordHash = c.AdminPasswordHash
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.MatchAttempts != 0 {
		config.MatchAttempts = c.MatchAttempts
	}
	if c.DevelopmentMode {
		config.DevelopmentMode = true
	}
}
