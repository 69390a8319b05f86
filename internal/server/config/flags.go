package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/staffhub/internal/flagx"
)

// parseFlags overlays values from command-line flags.
//
// Supported flags:
//
//	-e string   environment (local, dev, production)
//	-a string   HTTP bind address (e.g. ":8080")
//	-n string   application name
//	-d string   database DSN, or "memory"
//	-s string   JWT HMAC secret (JWT_SECRET still wins, see SigningSecret)
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-b int      bcrypt cost
//
// Arguments are filtered with flagx.FilterArgs first so flags owned by
// other components (-c, -config) do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Env, "e", config.Env, "environment")
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.AppName, "n", config.AppName, "application name")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(flagx.FilterArgs(args, "e", "a", "n", "d", "s", "t", "r", "b")); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
		}
	})

	return nil
}
