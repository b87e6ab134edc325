package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ensenando/signcoach/internal/classifier"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string, events ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := filepath.Join(tmpDir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Events:     events,
		},
		Path:       tmpDir,
		Executable: scriptPath,
	}
}

func progressRequest() *Request {
	return &Request{
		Event:      EventProgress,
		SessionID:  "session-1",
		Target:     7,
		Progress:   92,
		Prediction: &classifier.Prediction{Label: 7, Confidence: 0.92},
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "ok-plugin", `cat > /dev/null
echo '{"success":true,"data":{"message":"logged"}}'
`, EventProgress)

	response, err := NewExecutor(5000).Execute(context.Background(), plugin, progressRequest())
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "logged" {
		t.Errorf("expected message 'logged', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo-plugin", `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`, EventProgress)
	plugin.Manifest.Config = json.RawMessage(`{"path":"progress.log"}`)

	req := progressRequest()
	response, err := NewExecutor(5000).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var received Request
	if err := json.Unmarshal(response.Data, &received); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}

	if received.Event != EventProgress || received.SessionID != "session-1" {
		t.Errorf("echoed event/session = %q/%q", received.Event, received.SessionID)
	}
	if received.Target != 7 || received.Progress != 92 {
		t.Errorf("echoed target/progress = %d/%d, want 7/92", received.Target, received.Progress)
	}
	if received.Prediction == nil || received.Prediction.Label != 7 {
		t.Errorf("echoed prediction = %+v", received.Prediction)
	}
	if string(received.Config) != `{"path":"progress.log"}` {
		t.Errorf("manifest config not attached, got %s", received.Config)
	}
	if req.Config != nil {
		t.Error("Execute() must not modify the caller's request")
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", `sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100).Execute(context.Background(), plugin, progressRequest())
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout-related error, got: %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := scriptPlugin(t, "error-plugin", `echo '{"success":false,"error":"something went wrong"}'
`)

	response, err := NewExecutor(5000).Execute(context.Background(), plugin, progressRequest())
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if response.Success {
		t.Errorf("expected success=false, got true")
	}
	if response.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", response.Error)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantMsg string
	}{
		{
			name:    "invalid json",
			script:  "echo 'not valid json'\n",
			wantMsg: "failed to parse plugin response",
		},
		{
			name:    "non-zero exit",
			script:  "echo 'Error: something failed' >&2\nexit 1\n",
			wantMsg: "something failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := scriptPlugin(t, "bad-plugin", tt.script)

			_, err := NewExecutor(5000).Execute(context.Background(), plugin, progressRequest())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 3000, want: 3000},
		{in: 0, want: DefaultTimeoutMs},
		{in: -1, want: DefaultTimeoutMs},
	}

	for _, tt := range tests {
		if got := NewExecutor(tt.in).timeoutMs; got != tt.want {
			t.Errorf("NewExecutor(%d).timeoutMs = %d, want %d", tt.in, got, tt.want)
		}
	}
}
