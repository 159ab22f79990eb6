// Package main implements a small CLI that issues bearer tokens for the
// hanzi-api server using the configured JWT secret.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/phrazzld/hanzi-api/internal/config"
	"github.com/phrazzld/hanzi-api/internal/service/auth"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("token", pflag.ContinueOnError)
	subject := flags.String("subject", auth.DefaultSubject, "token subject")
	lifetime := flags.Duration("lifetime", 0, "token lifetime; the configured lifetime when zero")
	configFile := flags.String("config", "", "path to a YAML configuration file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigFile: *configFile,
		EnvFiles:   []string{".env"},
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return issue(cfg.Auth, *subject, *lifetime, out)
}

// issue writes a signed token for subject to out.
func issue(cfg config.AuthConfig, subject string, lifetime time.Duration, out io.Writer) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}

	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var token string
	if lifetime > 0 {
		token, err = svc.GenerateTokenWithLifetime(ctx, subject, lifetime)
	} else {
		token, err = svc.GenerateToken(ctx, subject)
	}
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
