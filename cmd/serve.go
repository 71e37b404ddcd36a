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

	"github.com/sells-group/transcribe-cli/internal/config"
	"github.com/sells-group/transcribe-cli/internal/marc"
	"github.com/sells-group/transcribe-cli/internal/records"
	"github.com/sells-group/transcribe-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP upload service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           server.NewRouter(routerConfig(cfg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func routerConfig(c *config.Config) server.Config {
	return server.Config{
		MaxUploadBytes: int64(c.Server.MaxUploadMB) << 20,
		RatePerSec:     c.Server.RatePerSec,
		Burst:          c.Server.Burst,
		AllowedOrigins: c.Server.AllowedOrigins,
		Columns: records.Columns{
			Subject:    c.Columns.Subject,
			Annotation: c.Columns.Annotation,
		},
		Charset:        c.Columns.Charset,
		ExtraFragments: c.Clean.ExtraFragments,
		Seed:           uint64(c.Dedupe.Seed),
		PadWidth:       c.Split.PadWidth,
		MARC: marc.Options{
			Leader:              c.MARC.Leader,
			ControlNumberPrefix: c.MARC.ControlNumberPrefix,
		},
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
