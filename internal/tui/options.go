package tui

import (
	"strings"

	"github.com/hylla/zukai/internal/domain"
)

// ClipboardFunc copies text to the system clipboard.
type ClipboardFunc func(string) error

type Option func(*Model)

// WithConfirmDelete toggles the y/n prompt before destructive actions.
func WithConfirmDelete(enabled bool) Option {
	return func(m *Model) {
		m.confirmDelete = enabled
	}
}

// WithShowHelp toggles the footer help line.
func WithShowHelp(enabled bool) Option {
	return func(m *Model) {
		m.showHelp = enabled
	}
}

// WithExportDir sets where image and JSON exports are written.
func WithExportDir(dir string) Option {
	return func(m *Model) {
		if dir = strings.TrimSpace(dir); dir != "" {
			m.exportDir = dir
		}
	}
}

// WithImageFormat sets the format used by the save-image key.
func WithImageFormat(format domain.ImageFormat) Option {
	return func(m *Model) {
		switch format {
		case domain.ImagePNG, domain.ImageSVG:
			m.imageFormat = format
		}
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.clipboard = fn
		}
	}
}

// WithStartTab opens the TUI on the purpose view instead of the logic board.
func WithStartTab(purpose bool) Option {
	return func(m *Model) {
		if purpose {
			m.tab = tabPurpose
		}
	}
}
