package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

type fakeStore struct {
	docs    map[string][]byte
	saved   map[string]time.Time
	events  []domain.ChangeEvent
	saveErr error
	loadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string][]byte{}, saved: map[string]time.Time{}}
}

func (f *fakeStore) LoadDocument(_ context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	data, ok := f.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) SaveDocument(_ context.Context, key string, data []byte, at time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.docs[key] = append([]byte(nil), data...)
	f.saved[key] = at
	return nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, key string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.docs[key]; !ok {
		return ErrNotFound
	}
	delete(f.docs, key)
	delete(f.saved, key)
	return nil
}

func (f *fakeStore) DocumentUpdatedAt(_ context.Context, key string) (time.Time, error) {
	if f.loadErr != nil {
		return time.Time{}, f.loadErr
	}
	at, ok := f.saved[key]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return at, nil
}

func (f *fakeStore) AppendChangeEvent(_ context.Context, event domain.ChangeEvent) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) ListChangeEvents(_ context.Context, kind domain.DiagramKind, limit int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0)
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].Diagram == kind {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

type stubRenderer struct {
	failPNG     bool
	failSVG     bool
	logicWidth  float64
	purposeSize [2]float64
	formats     []domain.ImageFormat
}

func (r *stubRenderer) RenderLogic(_ context.Context, placed layout.Logic, _ layout.ExportFrame, format domain.ImageFormat) ([]byte, error) {
	r.logicWidth = placed.Width
	return r.render(format)
}

func (r *stubRenderer) RenderPurpose(_ context.Context, placed layout.PurposeDiagram, format domain.ImageFormat) ([]byte, error) {
	r.purposeSize = [2]float64{placed.Width, placed.Height}
	return r.render(format)
}

func (r *stubRenderer) render(format domain.ImageFormat) ([]byte, error) {
	r.formats = append(r.formats, format)
	switch {
	case format == domain.ImagePNG && r.failPNG:
		return nil, errors.New("rasterizer unavailable")
	case format == domain.ImageSVG && r.failSVG:
		return nil, errors.New("svg writer broken")
	}
	return []byte(string(format)), nil
}

func fixedClock() time.Time {
	return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
}

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
