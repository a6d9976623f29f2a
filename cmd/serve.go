package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warera-analytics/market-history/internal/api"
	"github.com/warera-analytics/market-history/internal/schedule"
)

var (
	servePort    int
	serveCollect bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the history read API, optionally collecting on schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		if serveCollect {
			if err := cfg.Validate("schedule"); err != nil {
				return err
			}
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var sched *schedule.Scheduler
		if serveCollect {
			c, err := initCollector(cfg, st)
			if err != nil {
				return err
			}
			if sched, err = schedule.New(cfg.Schedule.Cron, c); err != nil {
				return err
			}
		}

		handler := api.NewHandler(st, api.WithCORSOrigins(cfg.Server.CORSOrigins))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return runServer(gctx, handler, cfg.Server.Port)
		})
		if sched != nil {
			g.Go(func() error {
				return sched.Run(gctx)
			})
		}
		return g.Wait()
	},
}

// runServer serves handler on port until ctx is done, then shuts down.
func runServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveCollect, "collect", false, "also run the collection schedule in this process")
	rootCmd.AddCommand(serveCmd)
}
