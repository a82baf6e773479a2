package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/reglet-dev/wasm-core/internal/mcpserver"
	"github.com/reglet-dev/wasm-core/internal/natsservice"
	"github.com/spf13/cobra"
)

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the operations as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops, cleanup, err := a.operations(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return mcpserver.New(ops, mcpserver.WithLogger(a.logger)).ServeStdio()
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var embedded struct {
		enabled bool
		host    string
		port    int
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer operation requests over NATS",
		Long: `Subscribe <prefix>.add, <prefix>.sum_f32, <prefix>.hello and <prefix>.describe
in the configured queue group and answer until interrupted.

With --embedded an in-process NATS server is started instead of connecting to
--nats-url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.flags.remote {
				return fmt.Errorf("serve cannot forward to another service; drop --remote")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ops, cleanup, err := a.operations(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var (
				ns *server.Server
				nc *nats.Conn
			)
			if embedded.enabled {
				ns, err = natsservice.StartEmbedded(embedded.host, embedded.port, true)
				if err != nil {
					return fmt.Errorf("failed to start embedded NATS: %w", err)
				}
				nc, err = natsservice.ConnectInProcess(ns)
			} else {
				nc, err = nats.Connect(a.cfg.NATS.URL, nats.Name("wasmcore-serve"))
			}
			if err != nil {
				_ = natsservice.Shutdown(nil, ns)
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}
			defer func() {
				if err := natsservice.Shutdown(nc, ns); err != nil {
					a.logger.Warn("nats shutdown", "error", err)
				}
			}()

			svc := natsservice.NewService(nc, ops,
				natsservice.WithSubjectPrefix(a.cfg.NATS.SubjectPrefix),
				natsservice.WithQueueGroup(a.cfg.NATS.QueueGroup),
				natsservice.WithLogger(a.logger),
			)
			if err := svc.Start(); err != nil {
				return err
			}
			if ns != nil {
				a.logger.Info("embedded NATS listening", "url", ns.ClientURL())
			}

			<-ctx.Done()
			a.logger.Info("shutting down")
			return svc.Stop()
		},
	}

	cmd.Flags().BoolVar(&embedded.enabled, "embedded", false, "Run an embedded NATS server")
	cmd.Flags().StringVar(&embedded.host, "embedded-host", "127.0.0.1", "Embedded server listen host")
	cmd.Flags().IntVar(&embedded.port, "embedded-port", 4222, "Embedded server listen port")
	return cmd
}
