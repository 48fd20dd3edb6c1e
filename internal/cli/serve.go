package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-codec/internal/common/ratelimit"
	"card-codec/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (a *App) newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the address book over HTTP",
		Long: `Serves the address book:

  GET    /cards            list cards (limit, offset)
  GET    /cards/{uid}      one card as text/vcard, application/vcard+xml,
                           application/vcard+json or text/html (Accept header
                           or ?format=)
  POST   /cards            import records in any of the four formats
  DELETE /cards/{uid}      remove a card
  GET    /health           store health`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Port = port
			}
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "override PORT")
	return cmd
}

func (a *App) runServe(ctx context.Context) error {
	book, closeBook, err := a.openBook()
	if err != nil {
		return err
	}
	defer closeBook()

	limiter, err := ratelimit.New(a.cfg.RateLimit)
	if err != nil {
		return err
	}
	handlers := server.NewHandlers(book, a.options(a.cfg.Card.TargetVersion()), a.log).
		WithRateLimit(limiter)
	srv := server.New(handlers.Router(), a.cfg.Port, a.log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := srv.Start()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
