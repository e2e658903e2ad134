package config

import (
	"flag"
	"os"
	"time"

	"github.com/simplylizz/wannatalk/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address for the operator API (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-k string   Telegram Bot API token
//	-s string   JWT HMAC secret key
//	-u string   operator login
//	-p string   operator bcrypt password hash
//	-t int      operator token validity, minutes
//	-i int      sweep interval, seconds
//	-m int      candidate attempts per match request
//	-dev        development mode (drops matching filters)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-s", "-u", "-p", "-t", "-i", "-m", "-dev"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port for the operator API")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TelegramToken, "k", config.TelegramToken, "telegram bot token")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AdminLogin, "u", config.AdminLogin, "operator login")
	fs.StringVar(&config.AdminPasswordHash, "p", config.AdminPasswordHash, "operator bcrypt password hash")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	sweepInterval := fs.Int("i", int(config.SweepInterval.Seconds()), "sweep interval (in seconds)")

	fs.IntVar(&config.MatchAttempts, "m", config.MatchAttempts, "candidate attempts per match request")
	fs.BoolVar(&config.DevelopmentMode, "dev", config.DevelopmentMode, "development mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Second
}
