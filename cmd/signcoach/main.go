package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ensenando/signcoach/internal/app"
	"github.com/ensenando/signcoach/internal/capture"
	"github.com/ensenando/signcoach/internal/classifier"
	"github.com/ensenando/signcoach/internal/config"
	"github.com/ensenando/signcoach/internal/detector"
	"github.com/ensenando/signcoach/internal/server"
	"github.com/ensenando/signcoach/internal/session"
	"github.com/ensenando/signcoach/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default ~/.signcoach/config.toml)")
	flag.Parse()

	fmt.Println("signcoach - sign language practice")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	recognition, err := st.Settings().Recognition(cfg.ConfirmConfig())
	if err != nil {
		log.Fatalf("Failed to load recognition settings: %v", err)
	}

	sess := session.New(session.Config{Confirm: recognition}, newPose(cfg), newHands(cfg), newClassifier(cfg))

	a := app.New(app.Config{
		Store:           st,
		PluginDir:       cfg.Plugins.Dir,
		PluginTimeoutMs: cfg.Plugins.TimeoutMs,
	}, capture.NewCamera(cfg.CaptureConfig()), sess)
	defer a.Close()

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	webDir := findWebDir(cfg.Server.StaticDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.New(server.Config{
			StaticDir:   webDir,
			Store:       st,
			Session:     sess,
			Capture:     a,
			Recognition: recognition,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("Starting server on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		if err := a.Run(ctx); err != nil {
			// The web UI stays usable without a camera.
			log.Printf("Recognition stopped: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}

func newPose(cfg config.Config) detector.PoseDetector {
	d, err := detector.NewMediaPipePose(cfg.DetectorConfig())
	if err != nil {
		log.Printf("Pose detection disabled: %v", err)
		return nil
	}
	return d
}

func newHands(cfg config.Config) detector.HandDetector {
	d, err := detector.NewMediaPipeHands(cfg.DetectorConfig())
	if err != nil {
		log.Printf("Hand detection disabled: %v", err)
		return nil
	}
	return d
}

func newClassifier(cfg config.Config) classifier.Classifier {
	c, err := classifier.NewTFLiteService(cfg.Classifier.ModelPath)
	if err != nil {
		log.Printf("Classifier disabled: %v", err)
		return nil
	}
	return c
}

// findWebDir returns the configured static directory, or the first of
// "web", "../web", "../../web" and ~/.signcoach/web that exists.
func findWebDir(configured string) string {
	candidates := []string{configured, "web", "../web", "../../web", filepath.Join(config.Dir(), "web")}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
