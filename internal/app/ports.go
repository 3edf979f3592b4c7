package app

import (
	"context"
	"time"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

// DocumentStore persists whole diagram documents by key and keeps a change ledger.
// LoadDocument returns ErrNotFound when the key has never been written.
type DocumentStore interface {
	LoadDocument(context.Context, string) ([]byte, error)
	SaveDocument(context.Context, string, []byte, time.Time) error
	DeleteDocument(context.Context, string) error
	DocumentUpdatedAt(context.Context, string) (time.Time, error)
	AppendChangeEvent(context.Context, domain.ChangeEvent) error
	ListChangeEvents(context.Context, domain.DiagramKind, int) ([]domain.ChangeEvent, error)
}

// ImageRenderer turns placed diagrams into encoded images.
type ImageRenderer interface {
	RenderLogic(context.Context, layout.Logic, layout.ExportFrame, domain.ImageFormat) ([]byte, error)
	RenderPurpose(context.Context, layout.PurposeDiagram, domain.ImageFormat) ([]byte, error)
}

// Logger receives structured runtime diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// RenderNotifier is told when a diagram needs redrawing.
type RenderNotifier interface {
	NotifyRender(domain.DiagramKind)
}

// RenderNotifierFunc adapts a function to RenderNotifier.
type RenderNotifierFunc func(domain.DiagramKind)

// NotifyRender calls f.
func (f RenderNotifierFunc) NotifyRender(kind domain.DiagramKind) {
	f(kind)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type nopNotifier struct{}

func (nopNotifier) NotifyRender(domain.DiagramKind) {}
