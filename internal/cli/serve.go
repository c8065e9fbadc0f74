package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// ErrNoOutput is returned when serve runs before any build.
var ErrNoOutput = errors.New("output directory does not exist, run build first")

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the output directory for local preview",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfg.Site.OutputDir); os.IsNotExist(err) {
			return ErrNoOutput
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:    serveAddr,
			Handler: http.FileServer(http.Dir(cfg.Site.OutputDir)),
		}

		go func() {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = srv.Shutdown(shutdownCtx)
		}()

		fmt.Printf("🌐 Serving %s on http://localhost%s\n", cfg.Site.OutputDir, serveAddr)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address for the preview server")

	rootCmd.AddCommand(serveCmd)
}
