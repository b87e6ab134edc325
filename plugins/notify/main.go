// Package main provides a desktop notification plugin. It uses AppleScript
// on macOS and notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event    string `json:"event"`
	Target   int    `json:"target"`
	Gesture  string `json:"gesture,omitempty"`
	Progress int    `json:"progress"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Event != "confirmed" {
		writeErrorResponse(fmt.Sprintf("unsupported event: %s", req.Event))
		return
	}

	if err := notify("signcoach", message(req)); err != nil {
		writeErrorResponse(fmt.Sprintf("notify failed: %v", err))
		return
	}

	writeSuccessResponse()
}

// message formats the notification body.
func message(req Request) string {
	name := req.Gesture
	if name == "" {
		name = "gesture " + strconv.Itoa(req.Target)
	}
	return fmt.Sprintf("%s recognized (%d%%)", name, req.Progress)
}

func notify(title, body string) error {
	if runtime.GOOS == "darwin" {
		return runCommand("osascript", "-e", appleScript(title, body))
	}
	return runCommand("notify-send", title, body)
}

// appleScript builds a display notification command with quotes escaped.
func appleScript(title, body string) string {
	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return fmt.Sprintf(`display notification "%s" with title "%s"`, quote.Replace(body), quote.Replace(title))
}

// runCommand executes a command and returns any error with its output.
func runCommand(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
