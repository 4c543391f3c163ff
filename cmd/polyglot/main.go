// Command polyglot serves and inspects localized text trees.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrymomot/polyglot"
	"github.com/dmitrymomot/polyglot/internal/config"
	"github.com/dmitrymomot/polyglot/internal/db/migrations"
	"github.com/dmitrymomot/polyglot/internal/server"
	"github.com/dmitrymomot/polyglot/middlewares"
	"github.com/dmitrymomot/polyglot/pkg/cache"
	"github.com/dmitrymomot/polyglot/pkg/db"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
	"github.com/dmitrymomot/polyglot/pkg/logger"
	"github.com/dmitrymomot/polyglot/pkg/redis"
)

// Build-time variables (can be overridden with ldflags)
var version = "dev"

const usage = `Usage: polyglot <command> [flags] [args]

Commands:
  serve                       run the HTTP server
  resolve [-source LOC] [-path a.b] HEADER
                              print the text tree for a preference header
  chain HEADER                print the preference chain for a header
  publish -to LOC FILE        validate FILE and store it at LOC
  migrate                     create or update the Postgres source table
  version                     print the version

Configuration is read from the environment and an optional .env file.
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "serve":
		return runServe(ctx, rest, stderr)
	case "resolve":
		return runResolve(ctx, rest, stdout, stderr)
	case "chain":
		return runChain(rest, stdout, stderr)
	case "publish":
		return runPublish(ctx, rest, stdout, stderr)
	case "migrate":
		return runMigrate(ctx, rest, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "polyglot %s\n", version)
		return nil
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "listen address (default: POLYGLOT_ADDR)")
	source := fs.String("source", "", "source location (default: POLYGLOT_SOURCE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *source != "" {
		cfg.Source = *source
	}

	log := logger.New(cfg.Logger, middlewares.RequestIDExtractor(), middlewares.LanguageExtractor())

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}

	svcOpts := []polyglot.Option{
		polyglot.WithSourceLocation(cfg.Source),
		polyglot.WithLoader(polyglot.NewStorageLoader(b.mux)),
		polyglot.WithMaxCacheSize(cfg.CacheMax),
		polyglot.WithMinCacheSize(cfg.CacheMin),
		polyglot.WithPurgeWindow(cfg.PurgeWindow),
		polyglot.WithLoadTimeout(cfg.LoadTimeout),
		polyglot.WithLogger(log),
	}

	srvOpts := []server.Option{
		server.WithAddress(cfg.Addr),
		server.WithLogger(log),
		server.WithRequestTimeout(cfg.RequestTimeout),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
		server.WithReloadSchedule(cfg.ReloadSchedule),
	}
	for name, check := range b.checks {
		srvOpts = append(srvOpts, server.WithHealthCheck(name, check))
	}

	if cfg.RedisURL != "" {
		client, err := redis.Open(ctx, cfg.RedisURL, redis.WithLogger(log))
		if err != nil {
			b.close(ctx)
			return err
		}
		shared := cache.NewRedis[i18n.Tree](client, nil,
			cache.WithPrefix(cfg.SharedPrefix),
			cache.WithTTL(cfg.SharedCacheTTL),
		)
		svcOpts = append(svcOpts, polyglot.WithSharedCache(shared))
		srvOpts = append(srvOpts,
			server.WithHealthCheck("redis", redis.Healthcheck(client)),
			server.WithShutdownHook(redis.Shutdown(client)),
		)
	}

	svc, err := polyglot.New(svcOpts...)
	if err != nil {
		b.close(ctx)
		return err
	}

	srvOpts = append(srvOpts, server.WithShutdownHook(func(context.Context) error {
		return svc.Close()
	}))
	for _, hook := range b.hooks {
		srvOpts = append(srvOpts, server.WithShutdownHook(hook))
	}
	srvOpts = append(srvOpts, server.WithShutdownHook(func(context.Context) error {
		logger.Flush(2 * time.Second)
		return nil
	}))

	srv, err := server.New(svc, srvOpts...)
	if err != nil {
		_ = svc.Close()
		b.close(ctx)
		return err
	}

	return srv.Run(ctx)
}

func runResolve(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.String("source", "", "source location (default: POLYGLOT_SOURCE)")
	path := fs.String("path", "", "dotted path to print instead of the whole tree")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *source != "" {
		cfg.Source = *source
	}

	b, err := openBackends(ctx, cfg, logger.NewNope())
	if err != nil {
		return err
	}
	defer b.close(ctx)

	svc, err := polyglot.New(
		polyglot.WithSourceLocation(cfg.Source),
		polyglot.WithLoader(polyglot.NewStorageLoader(b.mux)),
	)
	if err != nil {
		return err
	}
	defer svc.Close()

	tree, err := svc.Text(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}

	var out any = tree
	if *path != "" {
		segments := strings.Split(*path, ".")
		if text, ok := tree.Lookup(segments...); ok {
			out = text
		} else if sub, ok := tree.Subtree(segments...); ok {
			out = sub
		} else {
			return fmt.Errorf("no text at path %q", *path)
		}
	}

	return writeJSON(stdout, out)
}

func runChain(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chain", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	header := polyglot.SanitizeHeader(strings.Join(fs.Args(), " "))
	return writeJSON(stdout, i18n.PreferenceChain(header))
}

func runPublish(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(stderr)
	to := fs.String("to", "", "destination location (file path, s3://bucket/key or pg://name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" || fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: publish needs -to and exactly one file", errUsage)
	}

	data, err := os.ReadFile(fs.Arg(0)) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	src, err := i18n.Decode(data)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg, logger.NewNope())
	if err != nil {
		return err
	}
	defer b.close(ctx)

	if err := b.mux.Put(ctx, *to, data); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "published %d items to %s (version %s)\n", src.Len(), *to, src.Version())
	return nil
}

func runMigrate(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("DATABASE_CONN_URL is not set")
	}

	log := logger.New(cfg.Logger)

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	return db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, log)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
