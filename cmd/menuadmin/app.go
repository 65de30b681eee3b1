// cmd/menuadmin/app.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-menu-admin-client/auth"
	"github.com/deploymenttheory/go-menu-admin-client/blocks"
	"github.com/deploymenttheory/go-menu-admin-client/employees"
	"github.com/deploymenttheory/go-menu-admin-client/httpclient"
	"github.com/deploymenttheory/go-menu-admin-client/response"
	"github.com/deploymenttheory/go-menu-admin-client/searchstats"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/memstore"
	"github.com/joho/godotenv"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `Usage: menuadmin [-config file.json] [-env file] <command> [args]

Commands:
  login -u USER [-p PASS]     sign in (password also read from MENUADMIN_PASSWORD)
  logout                      end the session and erase stored tokens
  status [-refresh]           show the stored session
  users                       list bot users
  stats                       show top and worst search queries
  blocks list [flags]         list blocks (-search -parent -searchable -sort -asc -page -size)
  blocks tree                 show the block hierarchy
  blocks get ID               show one block
  blocks visibility ID BOOL   include or exclude a block from search
  blocks move SOURCE TARGET   move SOURCE to TARGET's position and save the order

Flags:
`

var errUsage = errors.New("invalid usage")

type app struct {
	client    *httpclient.Client
	tokens    *tokenstore.TokenStore
	auth      *auth.Service
	blocks    *blocks.Service
	employees *employees.Service
	stats     *searchstats.Service

	out        io.Writer
	closeStore func() error
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("menuadmin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "JSON client configuration file (default: environment)")
	envFile := fs.String("env", "", "dotenv file loaded before reading the environment (default: .env if present)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	if err := loadEnv(*envFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	a, err := newApp(ctx, *configPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() {
		if err := a.closeStore(); err != nil {
			fmt.Fprintf(stderr, "Warning: closing token store: %v\n", err)
		}
	}()

	if err := a.dispatch(ctx, fs.Args()); err != nil {
		return report(stderr, err, fs.Usage)
	}
	return exitOK
}

// loadEnv loads an explicit dotenv file, or .env when it exists. Variables already set in the
// environment win.
func loadEnv(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func newApp(ctx context.Context, configPath string, out io.Writer) (*app, error) {
	var (
		config *httpclient.ClientConfig
		err    error
	)
	if configPath != "" {
		config, err = httpclient.LoadConfigFromFile(configPath)
	} else {
		config, err = httpclient.LoadConfigFromEnv()
	}
	if err != nil {
		return nil, err
	}

	persistent, closeStore, err := openPersistentStore(ctx)
	if err != nil {
		return nil, err
	}

	// The access token only lives for this invocation; later runs recover one through the
	// stored refresh token.
	tokens := tokenstore.New(memstore.New(), persistent)

	client, err := httpclient.BuildClient(*config, tokens)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &app{
		client:     client,
		tokens:     tokens,
		auth:       auth.NewService(client, tokens),
		blocks:     blocks.NewService(client, client.Logger),
		employees:  employees.NewService(client),
		stats:      searchstats.NewService(client),
		out:        out,
		closeStore: closeStore,
	}, nil
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "status":
		return a.status(ctx, rest)
	case "users":
		return a.users(ctx)
	case "stats":
		return a.searchStats(ctx)
	case "blocks":
		return a.blocksCommand(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// report prints err and returns the exit code for it.
func report(stderr io.Writer, err error, usage func()) int {
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		usage()
		return exitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if needsLogin(err) {
		fmt.Fprintln(stderr, "Your session has expired or was never started. Run: menuadmin login -u USER")
	}
	return exitError
}

func needsLogin(err error) bool {
	var refreshErr *httpclient.RefreshError
	return response.IsUnauthorized(err) ||
		errors.As(err, &refreshErr) ||
		errors.Is(err, httpclient.ErrNoRefreshToken)
}
