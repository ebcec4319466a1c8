package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelfsync/internal/server"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Expose /sync, /bind, /dedupe, and /export over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Bind host", Value: "127.0.0.1"},
			&cli.IntFlag{Name: "port", Usage: "Bind port", Value: 8080},
		},
		Action: r.Serve,
	}
}

// Serve starts the gin-backed HTTP surface over the orchestrator, binder,
// dedupe, and exporter engines. It blocks until ctx is cancelled or the
// listener fails.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	router := server.NewBasicRouter()
	server.RegisterRoutes(router, server.Deps{
		Orchestrator: r.orchestrator,
		Binder:       r.binder,
		Dedupe:       r.dedupe,
		Exporter:     r.exporter,
	})

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	httpServer := &http.Server{Addr: addr, Handler: router}

	r.logger.Infof("listening on %s", addr)

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
