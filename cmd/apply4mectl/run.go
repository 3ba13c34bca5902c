package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/polkiloo/apply4me/internal/pkg/auth"
)

const usage = `usage: apply4mectl <command> [flags]

commands:
  token     -subject <id> [-ttl 24h] [-secret s] [-strategy jwt|hmac]
  hash-key  -key <admin key> [-cost 10]
  sign      [-secret s] [-passphrase p] key=value ...`

var errUsage = errors.New(usage)

func run(args []string, out io.Writer, getenv func(string) string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "token":
		return runToken(args[1:], out, getenv)
	case "hash-key":
		return runHashKey(args[1:], out)
	case "sign":
		return runSign(args[1:], out, getenv)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func runToken(args []string, out io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "", "token subject (user id)")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := fs.String("secret", getenv("TOKEN_SECRET"), "token signing secret")
	strategy := fs.String("strategy", getenv("TOKEN_STRATEGY"), "jwt or hmac")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*subject) == "" {
		return errors.New("token: -subject is required")
	}
	if *secret == "" {
		return errors.New("token: secret is required (-secret or TOKEN_SECRET)")
	}

	opts := auth.Options{TTL: *ttl}
	var s auth.Strategy
	switch strings.ToLower(strings.TrimSpace(*strategy)) {
	case "", "jwt":
		s = auth.NewJWTStrategy(*secret, opts)
	case "hmac":
		s = auth.NewHMACStrategy(*secret, opts)
	default:
		return fmt.Errorf("token: unsupported strategy %q", *strategy)
	}

	token, err := s.IssueToken(*subject)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func runHashKey(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("hash-key", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	key := fs.String("key", "", "admin key to hash")
	cost := fs.Int("cost", 0, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return errors.New("hash-key: -key is required")
	}

	hash, err := auth.NewBcryptHasher(*cost).Hash(*key)
	if err != nil {
		return fmt.Errorf("hash-key: %w", err)
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func runSign(args []string, out io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	secret := fs.String("secret", getenv("WEBHOOK_SECRET"), "webhook secret")
	passphrase := fs.String("passphrase", getenv("WEBHOOK_PASSPHRASE"), "webhook passphrase")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *secret == "" {
		return errors.New("sign: secret is required (-secret or WEBHOOK_SECRET)")
	}
	if fs.NArg() == 0 {
		return errors.New("sign: at least one key=value pair is required")
	}

	params := make(map[string]string, fs.NArg())
	for _, pair := range fs.Args() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return fmt.Errorf("sign: malformed pair %q", pair)
		}
		params[k] = v
	}

	_, err := fmt.Fprintln(out, auth.NewCallbackSigner(*secret, *passphrase).Sign(params))
	return err
}
