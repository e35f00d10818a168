package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-ledpanel/internal/config"
	"github.com/coreman2200/funtimes-ledpanel/internal/loop"
	"github.com/coreman2200/funtimes-ledpanel/internal/metrics"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
	"github.com/coreman2200/funtimes-ledpanel/internal/preview"
	"github.com/coreman2200/funtimes-ledpanel/internal/wire"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scroll text, serving the preview and metrics when --addr is set",
		Args:  cobra.NoArgs,
		RunE:  runPanel,
	}
	cmd.Flags().String("text", "", "text to scroll")
	cmd.Flags().Int("fps", 0, "frames per second")
	cmd.Flags().String("addr", "", "HTTP listen address for /ws, /control, /health and /metrics")
	return cmd
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.PanelOpts()
	if err != nil {
		return err
	}

	drv, err := wire.Open(cfg.Wire())
	if err != nil {
		return err
	}
	srv, err := preview.NewServer(opts.Geometry, opts.Mapper)
	if err != nil {
		_ = drv.Close()
		return err
	}
	p, err := panel.New(srv.Tap(metrics.Instrument(drv)), opts)
	if err != nil {
		_ = drv.Close()
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("close panel")
		}
	}()

	lp := loop.New(p, cfg.FPS)
	lp.Apply(cfg)
	lp.OnTestDone(srv.TestDone)
	srv.Attach(lp)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if path != "" {
		w := config.NewWatcher(path, 0)
		w.OnReload(lp.Apply)
		if err := w.Start(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config hot reload disabled")
		} else {
			defer w.Stop()
		}
	}

	if cfg.Addr != "" {
		mux := http.NewServeMux()
		srv.Register(mux)
		mux.Handle("/metrics", metrics.Handler())
		hs := &http.Server{
			Addr:         cfg.Addr,
			Handler:      withCORS(mux),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Addr).Str("driver", drv.String()).Msg("HTTP server starting")
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server crashed")
				stop()
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = hs.Shutdown(sctx)
		}()
	}

	return lp.Run(ctx)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
