// Package cmd implements the pft command line application to manage a
// personal budget.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/agent"
	"github.com/etnz/budget/events/kafka"
	"github.com/etnz/budget/local"
	"github.com/etnz/budget/remote"
	"github.com/etnz/budget/remote/postgres"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&flowCmd{dir: budget.Outgoing}, "transactions")
	c.Register(&flowCmd{dir: budget.Outgoing, update: true}, "transactions")
	c.Register(&deleteCmd{collection: budget.Expenses}, "transactions")
	c.Register(&flowCmd{dir: budget.Incoming}, "transactions")
	c.Register(&flowCmd{dir: budget.Incoming, update: true}, "transactions")
	c.Register(&deleteCmd{collection: budget.Incomes}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&transferCmd{update: true}, "transactions")
	c.Register(&deleteCmd{collection: budget.Transfers}, "transactions")

	c.Register(&addCategoryCmd{}, "reference data")
	c.Register(&addSubcategoryCmd{}, "reference data")
	c.Register(&addAccountCmd{}, "reference data")
	c.Register(&addPaymentMethodCmd{}, "reference data")
	c.Register(&currencyCmd{}, "reference data")

	c.Register(&accountsCmd{}, "reports")
	c.Register(&categoriesCmd{}, "reports")
	c.Register(&journalCmd{}, "reports")
	c.Register(&ledgerCmd{}, "reports")
	c.Register(&dashboardCmd{}, "reports")
	c.Register(&breakdownCmd{}, "reports")

	c.Register(&exportCmd{}, "backup")
	c.Register(&importCmd{}, "backup")

	c.Register(&suggestCmd{}, "assistant")
	c.Register(&patternsCmd{}, "assistant")
	c.Register(&assistCmd{}, "assistant")

	c.Register(&serveCmd{}, "server")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataFile     = flag.String("data", "budget.db", "Path to the sqlite file storing guest data")
	userID       = flag.String("user", "", "Signed in user id, guest when empty")
	postgresDSN  = flag.String("postgres", "", "Postgres connection string of the users document store")
	kafkaBrokers = flag.String("kafka", "", "Comma separated Kafka brokers receiving the change feed")
	model        = flag.String("model", agent.DefaultModel, "Gemini model used by the assistant")
	plain        = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")

	// Verbose enables logs on stderr.
	Verbose = flag.Bool("v", false, "Log to stderr")
)

// Env maps the global flags to the environment variable giving their default.
var Env = map[string]string{
	"data":     "PFT_DATA",
	"user":     "PFT_USER",
	"postgres": "PFT_POSTGRES_DSN",
	"kafka":    "PFT_KAFKA_BROKERS",
	"model":    "PFT_MODEL",
	"plain":    "PFT_PLAIN",
	"v":        "PFT_VERBOSE",
}

// SetFlagsFromEnv sets the global flags of fs from their environment
// variable, when it is set. Command line values parsed afterwards win.
func SetFlagsFromEnv(fs *flag.FlagSet) error {
	var errs []error
	for name, env := range Env {
		v, ok := os.LookupEnv(env)
		if !ok || fs.Lookup(name) == nil {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", env, err))
		}
	}
	return errors.Join(errs...)
}

// SetupLogging discards logs unless verbose.
func SetupLogging() {
	if !*Verbose {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

// stdout receives the output of commands.
var stdout io.Writer = os.Stdout

// errNoRemote is returned when a user signs in without a document store.
var errNoRemote = errors.New("no document store configured, set -postgres or PFT_POSTGRES_DSN")

// session is the budget of the invocation: the store, its coordinator and
// the ledger writing to it.
type session struct {
	store   *budget.Store
	ledger  *budget.Ledger
	coord   *budget.Coordinator
	closers []io.Closer
}

// openSession opens the guest database, the user document store and the
// change feed, and applies the identity given by -user.
func openSession(ctx context.Context) (*session, error) {
	guest, err := local.Open(*dataFile)
	if err != nil {
		return nil, err
	}
	s := &session{store: budget.NewStore(), closers: []io.Closer{guest}}
	if err := s.open(ctx, guest); err != nil {
		if cerr := s.close(); cerr != nil {
			log.Printf("session-close err=%q", cerr)
		}
		return nil, err
	}
	log.Printf("session-opened mode=%q data=%q", s.coord.Mode(), *dataFile)
	return s, nil
}

// open wires the ledger and the coordinator of s, then applies the identity.
func (s *session) open(ctx context.Context, guest budget.LocalBackend) error {
	open, err := s.opener(ctx)
	if err != nil {
		return err
	}
	var opts []budget.Option
	if *kafkaBrokers != "" {
		p := kafka.NewPublisher(strings.Split(*kafkaBrokers, ","), kafka.DefaultTopic)
		s.closers = append(s.closers, p)
		opts = append(opts, budget.WithNotifier(p))
	}
	s.ledger = budget.NewLedger(s.store, opts...)
	s.coord = budget.NewCoordinator(s.store, guest, open)

	state := budget.Guest
	if *userID != "" {
		state = budget.Authenticated(*userID)
	}
	return s.coord.Apply(ctx, state)
}

func (s *session) opener(ctx context.Context) (budget.RemoteOpener, error) {
	if *postgresDSN == "" {
		if *userID != "" {
			return nil, fmt.Errorf("cannot sign in %q: %w", *userID, errNoRemote)
		}
		return func(context.Context, string) (budget.RemoteBackend, error) { return nil, errNoRemote }, nil
	}
	docs, err := postgres.Open(ctx, *postgresDSN)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, docs)
	return remote.Opener(docs), nil
}

// close flushes pending writes, then closes the backends.
func (s *session) close() error {
	errs := []error{s.store.Close()}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// withSession runs fn on a new session and reports its error.
func withSession(ctx context.Context, fn func(*session) error) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	err = fn(s)
	if cerr := s.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
