package plugin

import (
	"encoding/json"
	"os"
	"errors"
	"path/filepath"
	"testing"
)

// writeManifest creates dir/name/plugin.json and returns the plugin dir.
func writeManifest(t *testing.T, dir string, manifest Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(dir, manifest.Name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}

	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), manifestBytes, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()

	pluginDir := writeManifest(t, tmpDir, Manifest{
		Name:        "test-plugin",
		Version:     "1.0.0",
		Description: "A test plugin",
		Executable:  "test-plugin",
		Events:      []string{EventProgress, EventConfirmed},
		Config:      json.RawMessage(`{"path":"out.log"}`),
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "test-plugin" {
		t.Errorf("expected plugin name 'test-plugin', got %q", plugin.Manifest.Name)
	}
	if plugin.Manifest.Description != "A test plugin" {
		t.Errorf("expected description 'A test plugin', got %q", plugin.Manifest.Description)
	}
	if len(plugin.Manifest.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(plugin.Manifest.Events))
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "test-plugin") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
	if string(plugin.Manifest.Config) != `{"path":"out.log"}` {
		t.Errorf("config = %s", plugin.Manifest.Config)
	}
}

func TestManager_ListSortedAndForEvent(t *testing.T) {
	tmpDir := t.TempDir()

	writeManifest(t, tmpDir, Manifest{Name: "zeta", Executable: "zeta", Events: []string{EventProgress}})
	writeManifest(t, tmpDir, Manifest{Name: "alpha", Executable: "alpha", Events: []string{EventProgress, EventTarget}})
	writeManifest(t, tmpDir, Manifest{Name: "mid", Executable: "mid", Events: []string{EventConfirmed}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	names := func(plugins []*Plugin) []string {
		var out []string
		for _, p := range plugins {
			out = append(out, p.Manifest.Name)
		}
		return out
	}

	tests := []struct {
		name string
		got  []*Plugin
		want []string
	}{
		{name: "list", got: manager.List(), want: []string{"alpha", "mid", "zeta"}},
		{name: "progress", got: manager.ForEvent(EventProgress), want: []string{"alpha", "zeta"}},
		{name: "confirmed", got: manager.ForEvent(EventConfirmed), want: []string{"mid"}},
		{name: "unknown", got: manager.ForEvent("other"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(tt.got)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestManager_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, Manifest{Name: "my-plugin", Version: "2.0.0", Executable: "my-plugin-bin", Events: []string{EventTarget}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.Get("my-plugin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %q", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent-plugin"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	pluginDir := "/path/to/plugins"
	manager := NewManager(pluginDir)

	if manager.PluginDir() != pluginDir {
		t.Errorf("expected plugin dir %q, got %q", pluginDir, manager.PluginDir())
	}
}

func TestManager_Discover_SkipsBadManifests(t *testing.T) {
	tmpDir := t.TempDir()

	badDir := filepath.Join(tmpDir, "bad-plugin")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "plugin.json"), []byte("not valid json"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	writeManifest(t, tmpDir, Manifest{Name: "no-exec", Events: []string{EventProgress}})
	writeManifest(t, tmpDir, Manifest{Name: "typo-event", Executable: "run", Events: []string{"progres"}})
	writeManifest(t, tmpDir, Manifest{Name: "escapes", Executable: "../run", Events: []string{EventProgress}})
	if err := os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}

	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected 0 plugins, got %d", len(plugins))
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected 0 plugins, got %d", len(plugins))
	}
}

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		valid    bool
	}{
		{name: "valid", manifest: Manifest{Name: "a", Executable: "a", Events: []string{EventProgress, EventTarget}}, valid: true},
		{name: "nested executable", manifest: Manifest{Name: "a", Executable: "bin/a", Events: []string{EventConfirmed}}, valid: true},
		{name: "no name", manifest: Manifest{Executable: "a", Events: []string{EventProgress}}},
		{name: "no executable", manifest: Manifest{Name: "a", Events: []string{EventProgress}}},
		{name: "absolute executable", manifest: Manifest{Name: "a", Executable: "/bin/sh", Events: []string{EventProgress}}},
		{name: "parent executable", manifest: Manifest{Name: "a", Executable: "../a", Events: []string{EventProgress}}},
		{name: "no events", manifest: Manifest{Name: "a", Executable: "a"}},
		{name: "unknown event", manifest: Manifest{Name: "a", Executable: "a", Events: []string{EventProgress, "gesture"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("Validate() error = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestManager_Discover_ReplacesPlugins(t *testing.T) {
	tmpDir := t.TempDir()
	dir := writeManifest(t, tmpDir, Manifest{Name: "gone", Executable: "run", Events: []string{EventProgress}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("failed to remove plugin: %v", err)
	}
	if err := manager.Discover(); err != nil {
		t.Fatalf("second Discover() failed: %v", err)
	}

	if _, err := manager.Get("gone"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() after removal error = %v, want ErrPluginNotFound", err)
	}
}
