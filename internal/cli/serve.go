package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"traceview/internal/monitor"
	"traceview/internal/server"
	"traceview/internal/session"
	"traceview/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trace API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := storage.NewRegistry(cfg)
		if cfg.ReloadIntervalSeconds > 0 {
			mon := monitor.New(time.Duration(cfg.ReloadIntervalSeconds)*time.Second, registry)
			mon.Start()
			defer mon.Stop()
		}

		srv := server.New(serveAddr, session.New(cfg, registry))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("Server shutdown")
			}
		}()

		log.Infof("traceview listening on %s", serveAddr)
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address for the web server")
}
