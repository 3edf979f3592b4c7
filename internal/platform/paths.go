package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "zukai"

// Paths holds the resolved on-disk locations for one app name.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	ExportDir  string
	LogDir     string
}

// Options defines optional settings for configuration.
type Options struct {
	AppName string
	DevMode bool
}

// baseVars names the environment variables that relocate each base
// directory on a platform. An empty name means the platform has none.
type baseVars struct {
	config string
	data   string
	state  string
}

var platformVars = map[string]baseVars{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME", state: "XDG_STATE_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths returns the paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the running platform. Dev mode
// suffixes the app name so dev and release data never mix.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return PathsFor(runtime.GOOS, environ(platformVars[runtime.GOOS]), configDir, dataDir, appName)
}

// environ snapshots the variables in vars.
func environ(vars baseVars) map[string]string {
	env := map[string]string{}
	for _, name := range []string{vars.config, vars.data, vars.state} {
		if name != "" {
			env[name] = os.Getenv(name)
		}
	}
	return env
}

// PathsFor resolves paths for goos from explicit base dirs and env
// overrides. Logs go under the state base when the platform defines one and
// it is set, otherwise next to the database.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	vars := platformVars[goos]
	configBase := override(env, vars.config, userConfigDir)
	dataDir := filepath.Join(override(env, vars.data, userDataDir), appName)
	logDir := filepath.Join(dataDir, "log")
	if stateBase := override(env, vars.state, ""); stateBase != "" {
		logDir = filepath.Join(stateBase, appName, "log")
	}
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		ExportDir:  filepath.Join(dataDir, "exports"),
		LogDir:     logDir,
	}, nil
}

func override(env map[string]string, name, fallback string) string {
	if name == "" {
		return fallback
	}
	if v := strings.TrimSpace(env[name]); v != "" {
		return v
	}
	return fallback
}
