package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ensenando/signcoach/internal/classifier"
	"github.com/ensenando/signcoach/internal/plugin"
	"github.com/ensenando/signcoach/internal/session"
	"github.com/ensenando/signcoach/internal/store"
)

// flushTimeout bounds the events delivered after the pipeline stops.
const flushTimeout = 2 * time.Second

// reportLoop turns session changes into plugin events.
type reportLoop struct {
	app *App

	progress   <-chan int
	prediction <-chan *classifier.Prediction
	targets    <-chan int
	cancel     []func()

	lastPrediction *classifier.Prediction
}

func (a *App) newReportLoop() *reportLoop {
	r := &reportLoop{app: a}

	var cancel func()
	r.progress, cancel = a.session.Progress().Subscribe()
	r.cancel = append(r.cancel, cancel)
	r.prediction, cancel = a.session.Prediction().Subscribe()
	r.cancel = append(r.cancel, cancel)
	r.targets, cancel = a.session.Targets().Subscribe()
	r.cancel = append(r.cancel, cancel)

	// Subscriptions start with the current values; only changes are reported.
	<-r.progress
	r.lastPrediction = <-r.prediction
	<-r.targets

	return r
}

func (r *reportLoop) run(ctx context.Context) {
	defer func() {
		for _, cancel := range r.cancel {
			cancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.flush(context.WithoutCancel(ctx))
			return
		case p := <-r.progress:
			r.onProgress(ctx, p)
		case c := <-r.prediction:
			r.onPrediction(ctx, c)
		case t := <-r.targets:
			r.onTarget(ctx, t)
		}
	}
}

// flush delivers changes that arrived after the pipeline stopped.
func (r *reportLoop) flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	for {
		select {
		case t := <-r.targets:
			r.onTarget(ctx, t)
		case c := <-r.prediction:
			r.onPrediction(ctx, c)
		case p := <-r.progress:
			r.onProgress(ctx, p)
		default:
			return
		}
	}
}

func (r *reportLoop) onProgress(ctx context.Context, progress int) {
	req := r.request(plugin.EventProgress)
	req.Progress = progress
	r.deliver(ctx, req)
}

func (r *reportLoop) onPrediction(ctx context.Context, p *classifier.Prediction) {
	wasConfirmed := r.lastPrediction != nil
	r.lastPrediction = p
	if p == nil || wasConfirmed {
		return
	}

	req := r.request(plugin.EventConfirmed)
	req.Prediction = p
	r.deliver(ctx, req)
}

func (r *reportLoop) onTarget(ctx context.Context, target int) {
	req := r.request(plugin.EventTarget)
	req.Target = target
	req.Gesture = r.gestureName(target)
	r.deliver(ctx, req)
}

func (r *reportLoop) request(event string) *plugin.Request {
	s := r.app.session
	target := s.Target()
	return &plugin.Request{
		Event:      event,
		SessionID:  s.ID(),
		Target:     target,
		Gesture:    r.gestureName(target),
		Progress:   s.Progress().Get(),
		Prediction: s.Prediction().Get(),
		Timestamp:  time.Now(),
	}
}

func (r *reportLoop) deliver(ctx context.Context, req *plugin.Request) {
	reporter := r.app.getReporter()
	if reporter == nil {
		return
	}
	if err := reporter.Dispatch(ctx, req); err != nil {
		log.Printf("report %s: %v", req.Event, err)
	}
}

// gestureName looks up the catalog name for a target, if there is a catalog.
func (r *reportLoop) gestureName(target int) string {
	st := r.app.config.Store
	if st == nil || target == session.NoTarget {
		return ""
	}
	g, err := st.Gestures().GetByID(target)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("lookup gesture %d: %v", target, err)
		}
		return ""
	}
	return g.Name
}
