package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/palimpseste/palimpseste/internal/bootstrap"
	"github.com/palimpseste/palimpseste/internal/config"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/server"
	"github.com/palimpseste/palimpseste/internal/track"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "palimpseste-server",
		Short:         "Palimpseste track service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	service, closeRepo, err := bootstrap.NewTrackService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.NewTrackService() > %w", err)
	}
	app.AddShutdownHook("track storage", func(context.Context) error {
		return closeRepo()
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsMiddleware(h2c.NewHandler(newMux(service), &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "address", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// newMux mounts the track service and the standalone text extraction endpoint.
// The endpoint always extracts locally so that it can itself serve as extraction.service_url.
func newMux(service *track.Service) *http.ServeMux {
	path, h := server.NewTrackServiceHandler(server.NewTrackHandler(service))

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.Handle(server.ExtractPath, server.NewExtractHandler(document.LocalExtractor{}))
	return mux
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
