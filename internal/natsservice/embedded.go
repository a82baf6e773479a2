package natsservice

import (
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// StartEmbedded starts an in-process NATS server. With listen false the
// server opens no network ports and is reachable only through
// ConnectInProcess.
func StartEmbedded(host string, port int, listen bool) (*server.Server, error) {
	opts := &server.Options{
		Host:       host,
		Port:       port,
		DontListen: !listen,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	slog.Debug("nats: embedded server ready", "listen", listen, "url", ns.ClientURL())
	return ns, nil
}

// ConnectInProcess creates an in-process connection to an embedded server.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	return nats.Connect("", nats.InProcessServer(ns))
}

// Shutdown drains the connection and stops the embedded server, if any.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				slog.Warn("nats: drain failed, forcing close", "error", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			slog.Warn("nats: drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		shutdownDone := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
		case <-time.After(5 * time.Second):
			return errors.New("nats server shutdown timed out")
		}
	}
	return nil
}
