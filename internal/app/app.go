// Package app drives a recognition session from a camera and reports its
// progress to plugins.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ensenando/signcoach/internal/capture"
	"github.com/ensenando/signcoach/internal/plugin"
	"github.com/ensenando/signcoach/internal/session"
	"github.com/ensenando/signcoach/internal/store"
)

// Reporter delivers progress events.
type Reporter interface {
	Dispatch(ctx context.Context, req *plugin.Request) error
}

// Config holds configuration options for the application.
type Config struct {
	Store           *store.Store
	PluginDir       string
	PluginTimeoutMs int
}

// App feeds camera frames into a session and reports what it confirms.
type App struct {
	config    Config
	camera    capture.Camera
	session   *session.Manager
	pluginMgr *plugin.Manager
	reporter  Reporter
	enabled   bool
	running   bool
	mu        sync.RWMutex
}

// New creates an App that reads from camera and feeds sess. Capture starts
// enabled.
func New(config Config, camera capture.Camera, sess *session.Manager) *App {
	mgr := plugin.NewManager(config.PluginDir)
	return &App{
		config:    config,
		camera:    camera,
		session:   sess,
		pluginMgr: mgr,
		reporter:  plugin.NewDispatcher(mgr, plugin.NewExecutor(config.PluginTimeoutMs)),
		enabled:   true,
	}
}

// SetEnabled pauses or resumes frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frames are being processed.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning returns whether Run is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// SetReporter replaces the plugin dispatcher.
func (a *App) SetReporter(r Reporter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reporter = r
}

func (a *App) getReporter() Reporter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reporter
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}
	log.Printf("discovered %d plugins in %s", len(a.pluginMgr.List()), a.pluginMgr.PluginDir())
	return nil
}

// Run opens the camera and processes frames until ctx is done or the camera
// runs out of frames. Progress changes are reported while it runs.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return errors.New("app already running")
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reporter subscribes before the first frame so no change is missed.
	r := a.newReportLoop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.runPipeline(ctx)
	})
	g.Go(func() error {
		r.run(ctx)
		return nil
	})

	log.Printf("recognition pipeline started for session %s", a.session.ID())
	err := g.Wait()
	log.Println("recognition pipeline stopped")
	return err
}

// Close releases the session.
func (a *App) Close() error {
	if err := a.session.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Session returns the recognition session.
func (a *App) Session() *session.Manager {
	return a.session
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Store returns the gesture catalog, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
