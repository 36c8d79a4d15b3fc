package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/budget/agent"
	"github.com/etnz/budget/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr     string
	secret   string
	ai       bool
	tokenFor string
	ttl      time.Duration
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the budget over HTTP" }
func (*serveCmd) Usage() string {
	return `pft serve [-addr <addr>] [-secret <secret>] [-ai]
pft serve -secret <secret> -token-for <user>

  Serves the JSON API under /api. Requests carrying a bearer token signed
  with the secret act as the token's user, the others as guest.
  With -token-for, prints a token for the user and exits.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	addr := os.Getenv("PFT_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	f.StringVar(&c.addr, "addr", addr, "Listen address. Defaults to PFT_ADDR.")
	f.StringVar(&c.secret, "secret", os.Getenv("PFT_JWT_SECRET"), "HS256 secret of bearer tokens. Defaults to PFT_JWT_SECRET.")
	f.BoolVar(&c.ai, "ai", false, "Enable the suggestion routes, using Gemini.")
	f.StringVar(&c.tokenFor, "token-for", "", "Print a bearer token for this user and exit.")
	f.DurationVar(&c.ttl, "ttl", 24*time.Hour, "Validity of the token printed by -token-for.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.tokenFor != "" {
		if c.secret == "" {
			fmt.Fprintln(os.Stderr, "Error: -token-for needs a -secret.")
			return subcommands.ExitUsageError
		}
		token, err := server.NewToken(c.secret, c.tokenFor, c.ttl)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, token)
		return subcommands.ExitSuccess
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return withSession(ctx, func(s *session) error {
		cfg := server.Config{Secret: c.secret}
		if c.ai {
			gen, err := newGenerator(ctx)
			if err != nil {
				return err
			}
			cfg.Advisor = agent.NewAdvisor(gen, *model)
		}
		srv := server.New(s.coord, s.ledger, cfg)

		errc := make(chan error, 1)
		go func() { errc <- srv.Listen(c.addr) }()
		fmt.Fprintf(os.Stderr, "Serving on %s\n", c.addr)
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		log.Printf("server-shutdown addr=%q", c.addr)
		return srv.Shutdown()
	})
}
