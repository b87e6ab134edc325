// Package main provides a plugin that appends recognition events to a
// JSON lines file, one object per event.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event      string          `json:"event"`
	SessionID  string          `json:"session_id"`
	Target     int             `json:"target"`
	Gesture    string          `json:"gesture,omitempty"`
	Progress   int             `json:"progress"`
	Prediction json.RawMessage `json:"prediction"`
	Timestamp  time.Time       `json:"timestamp"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config selects the log file.
type Config struct {
	Path string `json:"path"`
}

const defaultPath = "~/.signcoach/progress.jsonl"

func main() {
	if err := run(os.Stdin); err != nil {
		writeErrorResponse(err.Error())
		return
	}
	writeSuccessResponse()
}

func run(in io.Reader) error {
	var req Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	path, err := logPath(req.Config)
	if err != nil {
		return err
	}

	return appendEntry(path, req)
}

// logPath resolves the configured file, expanding a leading ~.
func logPath(raw json.RawMessage) (string, error) {
	cfg := Config{Path: defaultPath}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}

	if rest, ok := strings.CutPrefix(cfg.Path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home: %w", err)
		}
		cfg.Path = filepath.Join(home, rest)
	}
	return cfg.Path, nil
}

func appendEntry(path string, req Request) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	req.Config = nil
	if err := json.NewEncoder(f).Encode(req); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
