package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsFor verifies behavior for the covered scenario.
func TestPathsFor(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		configBase string
		dataBase   string
		wantConfig string
		wantData   string
		wantLog    string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			configBase: "/fallback/config",
			dataBase:   "/fallback/data",
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux xdg state holds logs",
			goos:       "linux",
			env:        map[string]string{"XDG_STATE_HOME": "/xdg/state", "XDG_DATA_HOME": " "},
			configBase: "/home/me/.config",
			dataBase:   "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
			wantLog:    "/xdg/state/zukai/log",
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			configBase: "/home/me/.config",
			dataBase:   "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`, "LOCALAPPDATA": `C:\Users\me\AppData\Local`, "XDG_STATE_HOME": "/ignored"},
			configBase: `C:\fallback\config`,
			dataBase:   `C:\fallback\data`,
			wantConfig: `C:\Users\me\AppData\Roaming`,
			wantData:   `C:\Users\me\AppData\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored", "XDG_STATE_HOME": "/ignored"},
			configBase: "/Users/me/Library/Application Support",
			dataBase:   "/Users/me/Library/Application Support",
			wantConfig: "/Users/me/Library/Application Support",
			wantData:   "/Users/me/Library/Application Support",
		},
		{
			name:       "unknown platform",
			goos:       "freebsd",
			configBase: "/cfg",
			dataBase:   "/data",
			wantConfig: "/cfg",
			wantData:   "/data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.configBase, tc.dataBase, "zukai")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			dataDir := filepath.Join(tc.wantData, "zukai")
			logDir := filepath.Join(dataDir, "log")
			if tc.wantLog != "" {
				logDir = filepath.FromSlash(tc.wantLog)
			}
			want := Paths{
				ConfigPath: filepath.Join(tc.wantConfig, "zukai", "config.toml"),
				DataDir:    dataDir,
				DBPath:     filepath.Join(dataDir, "zukai.db"),
				ExportDir:  filepath.Join(dataDir, "exports"),
				LogDir:     logDir,
			}
			if p != want {
				t.Fatalf("PathsFor() = %#v, want %#v", p, want)
			}
		})
	}
}

// TestPathsForRejectsEmptyInput verifies behavior for the covered scenario.
func TestPathsForRejectsEmptyInput(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "zukai"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/cfg", "/tmp/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestDefaultPathsSmoke verifies behavior for the covered scenario.
func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" || p.ExportDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
	if filepath.Base(p.DBPath) != DefaultAppName+".db" {
		t.Fatalf("unexpected db name %q", p.DBPath)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies behavior for the covered scenario.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "zukai", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "zukai-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "zukai-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
