package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/ensenando/signcoach/internal/pyservice"
)

// MediaPipeScript is the file name of the Python landmark service.
const MediaPipeScript = "mediapipe_service.py"

// mediapipeService is one Python MediaPipe subprocess running a single task.
type mediapipeService struct {
	proc *pyservice.Process
}

func newMediaPipeService(task string, config Config) (*mediapipeService, error) {
	scriptPath := pyservice.FindScript(MediaPipeScript)
	if scriptPath == "" {
		return nil, fmt.Errorf("%s not found", MediaPipeScript)
	}

	proc, err := pyservice.New(pyservice.Config{
		Script: scriptPath,
		Args: []string{
			"--task", task,
			"--max-hands", strconv.Itoa(config.MaxHands),
			"--min-confidence", strconv.FormatFloat(config.MinConfidence, 'f', -1, 64),
			"--min-tracking-confidence", strconv.FormatFloat(config.MinTrackingConf, 'f', -1, 64),
		},
	})
	if err != nil {
		return nil, err
	}
	return &mediapipeService{proc: proc}, nil
}

// detect JPEG-encodes the frame, sends it and decodes the JSON reply into v.
func (s *mediapipeService) detect(frame *gocv.Mat, v any) error {
	if frame == nil || frame.Empty() {
		return errors.New("empty frame")
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	line, err := s.proc.Call(buf.GetBytes())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (s *mediapipeService) close() error {
	return s.proc.Close()
}

// MediaPipeHands implements HandDetector using a Python MediaPipe subprocess.
type MediaPipeHands struct {
	svc *mediapipeService
}

// NewMediaPipeHands creates a hand detector.
// The Python process is started lazily on first detection.
func NewMediaPipeHands(config Config) (*MediaPipeHands, error) {
	svc, err := newMediaPipeService("hands", config)
	if err != nil {
		return nil, err
	}
	return &MediaPipeHands{svc: svc}, nil
}

// Detect analyzes a frame and returns the detected hands tagged by side.
func (d *MediaPipeHands) Detect(frame *gocv.Mat) ([]Hand, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := d.svc.detect(frame, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe: %s", response.Error)
	}

	result := make([]Hand, 0, len(response.Hands))
	for _, h := range response.Hands {
		hand, err := h.toHand()
		if err != nil {
			return nil, err
		}
		result = append(result, hand)
	}
	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeHands) Close() error {
	return d.svc.close()
}

// MediaPipePose implements PoseDetector using a Python MediaPipe subprocess.
type MediaPipePose struct {
	svc *mediapipeService
}

// NewMediaPipePose creates a pose detector.
// The Python process is started lazily on first detection.
func NewMediaPipePose(config Config) (*MediaPipePose, error) {
	svc, err := newMediaPipeService("pose", config)
	if err != nil {
		return nil, err
	}
	return &MediaPipePose{svc: svc}, nil
}

// Detect returns the 33 pose landmarks flattened to PoseVectorSize values,
// or a zero vector when no body is visible.
func (d *MediaPipePose) Detect(frame *gocv.Mat) ([]float32, error) {
	var response struct {
		Pose  []jsonPoint `json:"pose"`
		Error string      `json:"error"`
	}
	if err := d.svc.detect(frame, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe: %s", response.Error)
	}
	return poseVector(response.Pose)
}

// Close shuts down the Python process.
func (d *MediaPipePose) Close() error {
	return d.svc.close()
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toHand() (Hand, error) {
	if len(h.Points) != NumLandmarks {
		return Hand{}, fmt.Errorf("mediapipe: hand has %d landmarks, want %d", len(h.Points), NumLandmarks)
	}

	return Hand{
		Landmarks: flattenJSON(h.Points),
		Side:      ParseSide(h.Handedness),
		Score:     h.Score,
	}, nil
}

// poseVector returns PoseVectorSize values. No points means no body and
// gives a zero vector; any other count than NumPoseLandmarks is an error.
func poseVector(pose []jsonPoint) ([]float32, error) {
	switch len(pose) {
	case 0:
		return make([]float32, PoseVectorSize), nil
	case NumPoseLandmarks:
		return flattenJSON(pose), nil
	default:
		return nil, fmt.Errorf("mediapipe: pose has %d landmarks, want %d", len(pose), NumPoseLandmarks)
	}
}

func flattenJSON(points []jsonPoint) []float32 {
	converted := make([]Point3D, len(points))
	for i, p := range points {
		converted[i] = Point3D(p)
	}
	return Flatten(converted)
}
