package classifier

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ensenando/signcoach/internal/feature"
	"github.com/ensenando/signcoach/internal/pyservice"
	"github.com/ensenando/signcoach/internal/sequence"
)

// TFLiteScript is the file name of the Python TensorFlow Lite service.
const TFLiteScript = "tflite_service.py"

// TFLiteService runs the sequence model in a Python TensorFlow Lite
// subprocess. Each request is the window as little-endian float32 values,
// row-major; the reply is one JSON line holding the score vector.
type TFLiteService struct {
	proc *pyservice.Process
}

// NewTFLiteService creates a classifier backed by modelPath.
// The Python process is started lazily on first use.
func NewTFLiteService(modelPath string) (*TFLiteService, error) {
	scriptPath := pyservice.FindScript(TFLiteScript)
	if scriptPath == "" {
		return nil, fmt.Errorf("%s not found", TFLiteScript)
	}
	return newTFLiteService(pyservice.Config{
		Script: scriptPath,
		Args:   []string{"--model", modelPath},
	})
}

func newTFLiteService(config pyservice.Config) (*TFLiteService, error) {
	proc, err := pyservice.New(config)
	if err != nil {
		return nil, err
	}
	return &TFLiteService{proc: proc}, nil
}

// Run classifies one window.
func (s *TFLiteService) Run(w *sequence.Window) (Prediction, error) {
	line, err := s.proc.Call(encodeWindow(w))
	if err != nil {
		return Prediction{}, err
	}

	var response struct {
		Scores []float32 `json:"scores"`
		Error  string    `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return Prediction{}, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return Prediction{}, fmt.Errorf("tflite: %s", response.Error)
	}

	return Best(response.Scores)
}

// Close shuts down the Python process.
func (s *TFLiteService) Close() error {
	return s.proc.Close()
}

func encodeWindow(w *sequence.Window) []byte {
	buf := make([]byte, 0, sequence.Capacity*feature.Size*4)
	for _, frame := range w {
		for _, v := range frame {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return buf
}
