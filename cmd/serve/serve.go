// Package serve handles the serve command
package serve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/divledger/cmd/root"
	"fjacquet/divledger/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Cmd represents the serve command
var Cmd = NewCommand()

// NewCommand builds the serve command.
func NewCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Long: `Serve the JSON API: public read endpoints, the expense submission form and,
when an admin secret is configured, the administrative endpoints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			cfg := c.GetConfig()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			srv := c.NewAPIServer().HTTPServer(addr, cfg.ReadTimeout())
			if la, ok := c.GetLogger().(*logging.LogrusAdapter); ok {
				w := la.Writer(logrus.WarnLevel)
				defer w.Close()
				srv.ErrorLog = log.New(w, "", 0)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Run(ctx, srv, cfg.ShutdownTimeout(), c.GetLogger())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// Run serves srv until ctx is cancelled, then shuts it down, waiting at most
// shutdownTimeout for in-flight requests.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", logging.F("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
