package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxParallel caps the number of plugins running at once.
const maxParallel = 4

// Dispatcher delivers events to every plugin subscribed to them.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
}

// NewDispatcher creates a Dispatcher over the plugins known to manager.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{manager: manager, executor: executor}
}

// Dispatch runs all plugins that handle req.Event concurrently and waits for
// them. Every plugin runs even if another fails; the failures are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(maxParallel)

	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, p := range d.manager.ForEvent(req.Event) {
		g.Go(func() error {
			resp, err := d.executor.Execute(ctx, p, req)
			if err != nil {
				fail(err)
				return nil
			}
			if !resp.Success {
				fail(fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error))
			}
			return nil
		})
	}

	g.Wait()
	return errors.Join(errs...)
}
