package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type ImageFormat string

const (
	ImageFormatPNG ImageFormat = "png"
	ImageFormatSVG ImageFormat = "svg"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Layout   LayoutConfig   `toml:"layout"`
	Export   ExportConfig   `toml:"export"`
	Server   ServerConfig   `toml:"server"`
	TUI      TUIConfig      `toml:"tui"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type LayoutConfig struct {
	LogicWidth    float64 `toml:"logic_width"`
	PurposeWidth  float64 `toml:"purpose_width"`
	PurposeHeight float64 `toml:"purpose_height"`
}

type ExportConfig struct {
	DefaultFormat    ImageFormat `toml:"default_format"`
	LogicSettle      Duration    `toml:"logic_settle"`
	PurposeSettle    Duration    `toml:"purpose_settle"`
	PurposeWidth     float64     `toml:"purpose_width"`
	PurposeHeight    float64     `toml:"purpose_height"`
	LogicColumnWidth float64     `toml:"logic_column_width"`
	LogicPadding     float64     `toml:"logic_padding"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type TUIConfig struct {
	ConfirmDelete bool `toml:"confirm_delete"`
	ShowHelp      bool `toml:"show_help"`
}

// Duration decodes TOML strings such as "300ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = v
	return nil
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: false,
				Dir:     ".zukai/log",
			},
		},
		Layout: LayoutConfig{
			LogicWidth:    1200,
			PurposeWidth:  900,
			PurposeHeight: 700,
		},
		Export: ExportConfig{
			DefaultFormat:    ImageFormatPNG,
			LogicSettle:      Duration{300 * time.Millisecond},
			PurposeSettle:    Duration{100 * time.Millisecond},
			PurposeWidth:     1000,
			PurposeHeight:    800,
			LogicColumnWidth: 180,
			LogicPadding:     40,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		TUI: TUIConfig{
			ConfirmDelete: true,
			ShowHelp:      true,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if _, err := charmLog.ParseLevel(strings.TrimSpace(strings.ToLower(c.Logging.Level))); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when enabled")
	}

	for name, v := range map[string]float64{
		"layout.logic_width":        c.Layout.LogicWidth,
		"layout.purpose_width":      c.Layout.PurposeWidth,
		"layout.purpose_height":     c.Layout.PurposeHeight,
		"export.purpose_width":      c.Export.PurposeWidth,
		"export.purpose_height":     c.Export.PurposeHeight,
		"export.logic_column_width": c.Export.LogicColumnWidth,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	if c.Export.LogicPadding < 0 {
		return errors.New("export.logic_padding must be >= 0")
	}

	switch ImageFormat(strings.ToLower(string(c.Export.DefaultFormat))) {
	case ImageFormatPNG, ImageFormatSVG:
	default:
		return fmt.Errorf("invalid export.default_format: %q", c.Export.DefaultFormat)
	}
	if c.Export.LogicSettle.Duration < 0 || c.Export.PurposeSettle.Duration < 0 {
		return errors.New("export settle durations must be >= 0")
	}

	if _, _, err := net.SplitHostPort(strings.TrimSpace(c.Server.HTTPBind)); err != nil {
		return fmt.Errorf("invalid server.http_bind: %q", c.Server.HTTPBind)
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
