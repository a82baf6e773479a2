package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"
	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/host"
	"github.com/reglet-dev/wasm-core/internal/config"
	"github.com/reglet-dev/wasm-core/internal/natsservice"
	"github.com/spf13/cobra"
)

// app holds the flags and the state shared by every subcommand.
type app struct {
	flags struct {
		configFile    string
		wasm          string
		output        string
		logLevel      string
		natsURL       string
		subjectPrefix string
		remote        bool
	}
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "wasmcore",
		Short: "Integer addition, float summation and greetings, natively or through a wasm guest",
		Long: `wasmcore exposes three operations: add, sum_f32 and hello.

They run natively by default. With --wasm they run inside the Go wasm guest
under wazero; with --remote they are sent to a "wasmcore serve" instance over
NATS. The same operations are served to MCP clients by "wasmcore mcp".`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "Config file (default: ./wasmcore.yml if present)")
	pf.StringVar(&a.flags.wasm, "wasm", "", "Run operations in this wasm guest module")
	pf.StringVarP(&a.flags.output, "output", "o", "text", "Output format: text, json or yaml")
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&a.flags.natsURL, "nats-url", "", "NATS server URL")
	pf.StringVar(&a.flags.subjectPrefix, "subject-prefix", "", "NATS subject prefix")
	pf.BoolVar(&a.flags.remote, "remote", false, "Send operations to a wasmcore service over NATS")

	root.SetFlagErrorFunc(flagError)

	root.AddCommand(
		a.addCmd(),
		a.sumCmd(),
		a.helloCmd(),
		a.describeCmd(),
		a.schemaCmd(),
		a.configCmd(),
		a.mcpCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	pf := cmd.Root().PersistentFlags()
	cfg, err := config.Load(
		config.WithConfigFile(a.flags.configFile),
		config.WithFlag("wasm", pf.Lookup("wasm")),
		config.WithFlag("output", pf.Lookup("output")),
		config.WithFlag("log_level", pf.Lookup("log-level")),
		config.WithFlag("nats.url", pf.Lookup("nats-url")),
		config.WithFlag("nats.subject_prefix", pf.Lookup("subject-prefix")),
	)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

// operations resolves the implementation selected by the flags. The
// returned cleanup must always be called.
func (a *app) operations(ctx context.Context) (wasmcore.Operations, func(), error) {
	switch {
	case a.flags.remote && a.cfg.Wasm != "":
		return nil, func() {}, fmt.Errorf("--remote and --wasm are mutually exclusive")

	case a.flags.remote:
		nc, err := nats.Connect(a.cfg.NATS.URL, nats.Name("wasmcore-cli"))
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		return natsservice.NewClient(nc, a.cfg.NATS.SubjectPrefix), nc.Close, nil

	case a.cfg.Wasm != "":
		loader, cleanup, err := a.wasmLoader(ctx)
		if err != nil {
			return nil, func() {}, err
		}
		return loader, cleanup, nil

	default:
		return wasmcore.Native{}, func() {}, nil
	}
}

// wasmLoader creates an executor and a lazy loader for the --wasm module.
func (a *app) wasmLoader(ctx context.Context) (*host.Loader, func(), error) {
	executor, err := host.NewExecutor(ctx, host.WithConfig(a.cfg.Host), host.WithLogger(a.logger))
	if err != nil {
		return nil, nil, err
	}
	loader := host.NewLoader(executor, host.FileSource(a.cfg.Wasm))
	cleanup := func() {
		_ = loader.Close(ctx)
		if err := executor.Close(ctx); err != nil {
			a.logger.Warn("failed to close wasm runtime", "error", err)
		}
	}
	return loader, cleanup, nil
}
