package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/zukai/internal/app"
)

// activeExport renders the active diagram. It runs on the update goroutine
// since the services are not safe for concurrent use.
func (m Model) activeExport() (app.ImageExport, error) {
	if m.tab == tabLogic {
		return m.logic.ExportImage(context.Background(), m.imageFormat)
	}
	return m.purpose.ExportImage(context.Background(), m.imageFormat)
}

// saveImageCmd renders the image now and writes it to disk in the background.
func (m Model) saveImageCmd() tea.Cmd {
	export, err := m.activeExport()
	if err != nil {
		return func() tea.Msg { return exportedMsg{err: err} }
	}
	dir := m.exportDir
	return func() tea.Msg {
		path := filepath.Join(dir, export.FileName)
		if err := writeExportFile(path, export.Data); err != nil {
			return exportedMsg{err: err}
		}
		status := "saved " + path
		if export.FellBack {
			status += " (png failed, saved svg: " + export.FallbackReason + ")"
		}
		return exportedMsg{status: status}
	}
}

// activeJSON serialises the active diagram.
func (m Model) activeJSON() ([]byte, string, error) {
	if m.tab == tabLogic {
		data, err := m.logic.ExportJSON()
		return data, m.logic.FileName("json"), err
	}
	data, err := m.purpose.ExportJSON()
	return data, m.purpose.FileName("json"), err
}

// writeJSON writes the active diagram document to the export directory.
func (m Model) writeJSON() string {
	data, name, err := m.activeJSON()
	if err != nil {
		return "export failed: " + err.Error()
	}
	path := filepath.Join(m.exportDir, name)
	if err := writeExportFile(path, data); err != nil {
		return "export failed: " + err.Error()
	}
	return "saved " + path
}

// yankJSON copies the active diagram document to the clipboard.
func (m Model) yankJSON() string {
	data, _, err := m.activeJSON()
	if err != nil {
		return "copy failed: " + err.Error()
	}
	if err := m.clipboard(string(data)); err != nil {
		return "copy failed: " + err.Error()
	}
	return fmt.Sprintf("copied %s json (%d bytes)", m.tabName(), len(data))
}

// writeExportFile writes data, creating the directory when needed.
func writeExportFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
