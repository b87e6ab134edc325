package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ensenando/signcoach/internal/capture"
	"github.com/ensenando/signcoach/internal/session"
)

// runPipeline reads frames at the camera's FPS and runs each through the
// session in capture order. It returns nil when ctx is done, the camera runs
// out of frames or the session is closed.
func (a *App) runPipeline(ctx context.Context) error {
	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		frame, err := a.camera.ReadFrame()
		if errors.Is(err, capture.ErrNoMoreFrames) {
			log.Println("camera has no more frames")
			return nil
		}
		if err != nil {
			log.Printf("error reading frame: %v", err)
			continue
		}

		err = a.session.ProcessFrame(frame)
		frame.Close()

		if errors.Is(err, session.ErrClosed) {
			return nil
		}
		if err != nil {
			log.Printf("error processing frame: %v", err)
		}
	}
}
