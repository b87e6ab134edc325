// Package classifier adapts an external sequence classifier to the
// recognition pipeline.
package classifier

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/ensenando/signcoach/internal/sequence"
)

// ErrEmptyScores is returned by Best when there is no usable score.
var ErrEmptyScores = errors.New("empty score vector")

// ErrInvalidPrediction is returned by Validate.
var ErrInvalidPrediction = errors.New("invalid prediction")

// Prediction is a classified gesture with its confidence in [0, 1].
type Prediction struct {
	Label      int     `json:"label"`
	Confidence float32 `json:"confidence"`
}

// Equal reports whether two optional predictions are the same.
func Equal(a, b *Prediction) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Classifier runs a sequence model over one window.
type Classifier interface {
	Run(w *sequence.Window) (Prediction, error)
	Close() error
}

// Validate checks that p has a positive label and a confidence in [0, 1].
func (p Prediction) Validate() error {
	if p.Label <= 0 {
		return fmt.Errorf("%w: label %d", ErrInvalidPrediction, p.Label)
	}
	c := float64(p.Confidence)
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("%w: confidence %v", ErrInvalidPrediction, p.Confidence)
	}
	return nil
}

// Best picks the highest score, ignoring NaN. Labels are 1-based: score
// index i is gesture id i+1.
func Best(scores []float32) (Prediction, error) {
	best := -1
	for i, s := range scores {
		if math.IsNaN(float64(s)) {
			continue
		}
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return Prediction{}, ErrEmptyScores
	}

	return Prediction{Label: best + 1, Confidence: scores[best]}, nil
}

// Adapter turns classifier failures into "no prediction".
type Adapter struct {
	classifier Classifier
}

// NewAdapter wraps c. A nil classifier is allowed and never predicts.
func NewAdapter(c Classifier) *Adapter {
	return &Adapter{classifier: c}
}

// Classify runs the classifier on w. It returns false when the classifier
// is unavailable, fails, panics or returns a prediction that does not
// Validate; callers treat that like a mismatch.
func (a *Adapter) Classify(w *sequence.Window) (p Prediction, ok bool) {
	if a.classifier == nil {
		return Prediction{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("classifier panic: %v", r)
			p, ok = Prediction{}, false
		}
	}()

	p, err := a.classifier.Run(w)
	if err != nil {
		log.Printf("classify: %v", err)
		return Prediction{}, false
	}
	if err := p.Validate(); err != nil {
		log.Printf("classify: %v", err)
		return Prediction{}, false
	}
	return p, true
}

// Close closes the wrapped classifier.
func (a *Adapter) Close() error {
	if a.classifier == nil {
		return nil
	}
	if err := a.classifier.Close(); err != nil {
		return fmt.Errorf("close classifier: %w", err)
	}
	return nil
}
