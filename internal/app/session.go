package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hylla/zukai/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Viewport is the canvas size used for on-screen layout.
type Viewport struct {
	Width  float64
	Height float64
}

// ExportConfig holds image export sizing and timing.
type ExportConfig struct {
	Settle      time.Duration
	Width       float64
	Height      float64
	ColumnWidth float64
	Padding     float64
}

// ServiceConfig holds configuration for a diagram session.
type ServiceConfig struct {
	Logger   Logger
	Notifier RenderNotifier
	Renderer ImageRenderer
	Viewport Viewport
	Export   ExportConfig
}

// session carries the collaborators shared by both diagram services.
type session struct {
	kind     domain.DiagramKind
	key      string
	store    DocumentStore
	idGen    IDGenerator
	clock    Clock
	logger   Logger
	notifier RenderNotifier
	renderer ImageRenderer
}

func newSession(kind domain.DiagramKind, key string, store DocumentStore, idGen IDGenerator, clock Clock, cfg ServiceConfig) session {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	return session{
		kind:     kind,
		key:      key,
		store:    store,
		idGen:    idGen,
		clock:    clock,
		logger:   cfg.Logger,
		notifier: cfg.Notifier,
		renderer: cfg.Renderer,
	}
}

// readStored returns the stored document. Missing keys and store failures
// both report false; failures are logged.
func (s *session) readStored(ctx context.Context) ([]byte, bool) {
	if s.store == nil {
		return nil, false
	}
	data, err := s.store.LoadDocument(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("no stored document, using defaults", "diagram", s.kind, "key", s.key)
		return nil, false
	case err != nil:
		s.logger.Warn("load stored document failed, using defaults", "diagram", s.kind, "key", s.key, "err", err)
		return nil, false
	}
	return data, true
}

// commit persists doc, records a change event and requests a redraw.
// Persistence failures are logged and never surface to the caller.
func (s *session) commit(ctx context.Context, doc any, op domain.ChangeOperation, subjectID string, metadata map[string]string) {
	now := s.clock().UTC()
	if s.store != nil {
		data, err := json.Marshal(doc)
		if err != nil {
			s.logger.Warn("encode document failed", "diagram", s.kind, "err", err)
		} else if err := s.store.SaveDocument(ctx, s.key, data, now); err != nil {
			s.logger.Warn("persist document failed", "diagram", s.kind, "key", s.key, "err", err)
		}
	}
	s.record(ctx, now, op, subjectID, metadata)
}

// discard removes the stored document so the next load starts from defaults.
func (s *session) discard(ctx context.Context, op domain.ChangeOperation) {
	now := s.clock().UTC()
	if s.store != nil {
		if err := s.store.DeleteDocument(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("delete stored document failed", "diagram", s.kind, "key", s.key, "err", err)
		}
	}
	s.record(ctx, now, op, "", nil)
}

// record appends the change event and requests a redraw.
func (s *session) record(ctx context.Context, now time.Time, op domain.ChangeOperation, subjectID string, metadata map[string]string) {
	if s.store != nil {
		actor := MutationActorFromContext(ctx)
		event := domain.ChangeEvent{
			Diagram:    s.kind,
			SubjectID:  subjectID,
			Operation:  op,
			ActorID:    actor.ActorID,
			ActorType:  actor.ActorType,
			Metadata:   metadata,
			OccurredAt: now,
		}
		if err := s.store.AppendChangeEvent(ctx, event); err != nil {
			s.logger.Warn("record change event failed", "diagram", s.kind, "operation", op, "err", err)
		}
	}
	s.logger.Debug("diagram mutated", "diagram", s.kind, "operation", op, "subject", subjectID)
	s.notifier.NotifyRender(s.kind)
}

// SavedAt reports when the stored document was last written. False means
// nothing is stored or the store could not answer.
func (s *session) SavedAt(ctx context.Context) (time.Time, bool) {
	if s.store == nil {
		return time.Time{}, false
	}
	at, err := s.store.DocumentUpdatedAt(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		return time.Time{}, false
	case err != nil:
		s.logger.Warn("read document timestamp failed", "diagram", s.kind, "key", s.key, "err", err)
		return time.Time{}, false
	}
	return at, true
}

// History lists recent change events for this diagram, newest first.
func (s *session) History(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListChangeEvents(ctx, s.kind, limit)
}
