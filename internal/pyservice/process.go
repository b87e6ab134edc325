// Package pyservice runs long-lived Python inference helpers as subprocesses.
//
// Requests are written to the child's stdin as a 4-byte big-endian length
// followed by the payload; the child answers each request with one line of
// JSON on stdout. The process is started lazily on the first call and shut
// down after a period of inactivity.
package pyservice

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an unused process is kept alive.
const DefaultIdleTimeout = 30 * time.Second

// ErrScriptNotFound is returned when the service script cannot be located.
var ErrScriptNotFound = errors.New("service script not found")

// Config describes how to launch a service.
type Config struct {
	// Script is the path of the service script.
	Script string
	// Interpreter runs the script. Empty means a virtualenv python if one
	// is found, otherwise python3.
	Interpreter string
	// Args are passed after the script path.
	Args []string
	// IdleTimeout stops the process after this long without a call.
	// Zero uses DefaultIdleTimeout; negative disables the idle shutdown.
	IdleTimeout time.Duration
}

// Process is a lazily started request/response subprocess.
type Process struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// New creates a Process. The script must exist; the process itself is not
// started until the first Call.
func New(config Config) (*Process, error) {
	if config.Script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(config.Script); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, config.Script)
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	return &Process{config: config}, nil
}

// Call sends one payload and returns the response line without its newline.
func (p *Process) Call(payload []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(payload)))

	if _, err := p.stdin.Write(length); err != nil {
		p.shutdown()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := p.stdin.Write(payload); err != nil {
		p.shutdown()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		p.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	p.lastUsed = time.Now()
	p.resetIdleTimer()

	return line[:len(line)-1], nil
}

// Running reports whether the subprocess is currently alive.
func (p *Process) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Close shuts down the subprocess. It is safe to call more than once.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *Process) ensureStarted() error {
	if p.started {
		return nil
	}

	interpreter := p.config.Interpreter
	if interpreter == "" {
		interpreter = findVenvPython()
	}
	if interpreter == "" {
		interpreter = "python3"
	}

	args := append([]string{p.config.Script}, p.config.Args...)
	p.cmd = exec.Command(interpreter, args...)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(p.config.Script), err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true
	p.lastUsed = time.Now()

	return nil
}

func (p *Process) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	return err
}

func (p *Process) resetIdleTimer() {
	if p.config.IdleTimeout < 0 {
		return
	}
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.config.IdleTimeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.shutdown()
	})
}

// FindScript looks for scripts/<name> next to the working directory, the
// executable and ~/.signcoach. Returns an empty string if nothing exists.
func FindScript(name string) string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
		filepath.Join(os.Getenv("HOME"), ".signcoach", "scripts", name),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".signcoach/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
