package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

// DefaultLogicWidth is the layout width used when none is configured.
const DefaultLogicWidth = 1200.0

// LogicService owns one logic-model session: the aggregate, the draw gesture
// and the viewport used for layout.
type LogicService struct {
	session
	model    domain.LogicModel
	gesture  ConnectGesture
	viewport Viewport
	export   ExportConfig
}

// NewLogicService constructs a new value for this package.
func NewLogicService(store DocumentStore, idGen IDGenerator, clock Clock, cfg ServiceConfig) *LogicService {
	if cfg.Viewport.Width <= 0 {
		cfg.Viewport.Width = DefaultLogicWidth
	}
	if cfg.Export.ColumnWidth <= 0 {
		cfg.Export.ColumnWidth = layout.ExportColumnWidth
	}
	if cfg.Export.Padding <= 0 {
		cfg.Export.Padding = layout.ExportPadding
	}
	if cfg.Export.Settle < 0 {
		cfg.Export.Settle = 0
	}
	return &LogicService{
		session:  newSession(domain.DiagramLogic, LogicStorageKey, store, idGen, clock, cfg),
		model:    domain.NewLogicModel(),
		viewport: cfg.Viewport,
		export:   cfg.Export,
	}
}

// Load reads the stored model once. Missing or undecodable documents leave the
// session on an empty model.
func (s *LogicService) Load(ctx context.Context) {
	s.model = domain.NewLogicModel()
	s.gesture.Cancel()
	data, ok := s.readStored(ctx)
	if !ok {
		return
	}
	m, err := DecodeLogicDocument(data)
	if err != nil {
		s.logger.Warn("stored logic document invalid, using defaults", "key", s.key, "err", err)
		return
	}
	s.model = m
	s.logger.Info("logic model loaded", "items", len(m.Items), "connections", len(m.Connections))
}

// Model returns a copy of the current aggregate.
func (s *LogicService) Model() domain.LogicModel {
	return s.model.Clone()
}

// Viewport returns the current layout viewport.
func (s *LogicService) Viewport() Viewport {
	return s.viewport
}

// Layout places the model in the current viewport.
func (s *LogicService) Layout() layout.Logic {
	return layout.LogicLayout(s.model, s.viewport.Width)
}

// AddItemInput holds input values for add item operations.
type AddItemInput struct {
	Text     string
	Category domain.Category
}

// AddItem creates a card in the given category.
func (s *LogicService) AddItem(ctx context.Context, in AddItemInput) (domain.Item, error) {
	item, err := domain.NewItem(s.idGen(), in.Text, in.Category)
	if err != nil {
		return domain.Item{}, err
	}
	if err := s.model.AddItem(item); err != nil {
		return domain.Item{}, err
	}
	s.commitLogic(ctx, domain.ChangeOperationCreate, item.ID, map[string]string{"category": string(item.Category)})
	return item, nil
}

// UpdateItemInput holds input values for update item operations.
type UpdateItemInput struct {
	ID       string
	Text     string
	Category domain.Category
}

// UpdateItemResult reports an edit and any connections it removed.
type UpdateItemResult struct {
	Item               domain.Item
	RemovedConnections int
}

// UpdateItem edits a card. Moving it to another category drops its connections.
func (s *LogicService) UpdateItem(ctx context.Context, in UpdateItemInput) (UpdateItemResult, error) {
	s.gesture.Cancel()
	before, ok := s.model.Item(in.ID)
	if !ok {
		return UpdateItemResult{}, domain.ErrItemNotFound
	}
	category := in.Category
	if category == "" {
		category = before.Category
	}
	removed, err := s.model.UpdateItem(in.ID, in.Text, category)
	if err != nil {
		return UpdateItemResult{}, err
	}
	item, _ := s.model.Item(in.ID)
	s.commitLogic(ctx, domain.ChangeOperationUpdate, item.ID, map[string]string{
		"category":            string(item.Category),
		"previous_category":   string(before.Category),
		"removed_connections": strconv.Itoa(len(removed)),
	})
	return UpdateItemResult{Item: item, RemovedConnections: len(removed)}, nil
}

// RemoveItemResult reports a deleted card and its cascaded connections.
type RemoveItemResult struct {
	Item               domain.Item
	RemovedConnections int
}

// RemoveItem deletes a card and every connection touching it.
func (s *LogicService) RemoveItem(ctx context.Context, id string) (RemoveItemResult, error) {
	item, removed, err := s.model.RemoveItem(id)
	if err != nil {
		return RemoveItemResult{}, err
	}
	if src, armed := s.gesture.Armed(); armed && src == item.ID {
		s.gesture.Cancel()
	}
	s.commitLogic(ctx, domain.ChangeOperationDelete, item.ID, map[string]string{"removed_connections": strconv.Itoa(len(removed))})
	return RemoveItemResult{Item: item, RemovedConnections: len(removed)}, nil
}

// Connect joins source to target after validating the adjacency rule.
func (s *LogicService) Connect(ctx context.Context, source, target string) (domain.Connection, error) {
	if err := s.model.ValidateConnection(source, target); err != nil {
		return domain.Connection{}, err
	}
	conn, err := domain.NewConnection(s.idGen(), source, target)
	if err != nil {
		return domain.Connection{}, err
	}
	if err := s.model.AddConnection(conn); err != nil {
		return domain.Connection{}, err
	}
	s.commitLogic(ctx, domain.ChangeOperationCreate, conn.ID, map[string]string{"source": conn.Source, "target": conn.Target})
	return conn, nil
}

// Disconnect deletes a connection by id.
func (s *LogicService) Disconnect(ctx context.Context, id string) (domain.Connection, error) {
	conn, err := s.model.RemoveConnection(id)
	if err != nil {
		return domain.Connection{}, err
	}
	s.commitLogic(ctx, domain.ChangeOperationDelete, conn.ID, map[string]string{"source": conn.Source, "target": conn.Target})
	return conn, nil
}

// Reset clears the board.
func (s *LogicService) Reset(ctx context.Context) {
	s.gesture.Cancel()
	s.model.Reset()
	s.discard(ctx, domain.ChangeOperationReset)
}

// ClickCard drives the connection-draw gesture. A completed gesture creates
// the connection; rejections leave the model unchanged and return the reason.
func (s *LogicService) ClickCard(ctx context.Context, id string) (GestureOutcome, error) {
	out := s.gesture.Click(s.model, id)
	if out.Result != GestureConnected {
		return out, out.Err
	}
	conn, err := s.Connect(ctx, out.Source, out.Target)
	if err != nil {
		out.Result = GestureRejected
		out.Err = err
		out.Message = gestureRejectionMessage(s.model, out.Source, out.Target, err)
		return out, err
	}
	out.Connection = conn
	return out, nil
}

// CancelGesture returns the gesture to Idle and reports whether it was armed.
func (s *LogicService) CancelGesture() bool {
	return s.gesture.Cancel()
}

// GestureSource returns the armed source and the category it may connect to.
func (s *LogicService) GestureSource() (string, domain.Category, bool) {
	src, armed := s.gesture.Armed()
	if !armed {
		return "", "", false
	}
	item, ok := s.model.Item(src)
	if !ok {
		return src, "", true
	}
	next, _ := item.Category.Next()
	return src, next, true
}

// ExportDocument builds the versioned export envelope.
func (s *LogicService) ExportDocument() LogicEnvelope {
	return LogicEnvelope{
		Version:   LogicSnapshotVersion,
		Timestamp: s.clock().UTC(),
		Data:      logicDocumentFromDomain(s.model, s.Layout()),
	}
}

// ExportJSON encodes the export envelope with indentation.
func (s *LogicService) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.ExportDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode logic export: %w", err)
	}
	return data, nil
}

// ImportResult reports what an import replaced the session with.
type ImportResult struct {
	Items       int
	Connections int
	// DroppedConnections counts arrows discarded by the category fallback.
	DroppedConnections int
}

// ImportJSON replaces the model with a decoded document. Invalid documents
// are rejected as a whole and leave the session untouched.
func (s *LogicService) ImportJSON(ctx context.Context, data []byte) (ImportResult, error) {
	m, dropped, err := decodeLogicDocument(data)
	if err != nil {
		return ImportResult{}, err
	}
	s.gesture.Cancel()
	s.model = m
	if dropped > 0 {
		s.logger.Warn("import dropped connections broken by category fallback", "dropped", dropped)
	}
	s.commitLogic(ctx, domain.ChangeOperationImport, "", map[string]string{
		"items":       strconv.Itoa(len(m.Items)),
		"connections": strconv.Itoa(len(m.Connections)),
		"dropped":     strconv.Itoa(dropped),
	})
	return ImportResult{Items: len(m.Items), Connections: len(m.Connections), DroppedConnections: dropped}, nil
}

// FileName returns the dated export file name for ext.
func (s *LogicService) FileName(ext string) string {
	return "logic-model-" + s.clock().Format("2006-01-02") + "." + ext
}

// ExportImage renders the board at the fixed export width. The viewport is
// overridden while rendering and always restored.
func (s *LogicService) ExportImage(ctx context.Context, format domain.ImageFormat) (ImageExport, error) {
	frame := layout.LogicExportFrame(s.model, s.export.ColumnWidth, s.export.Padding)
	previous := s.viewport
	s.viewport.Width = frame.ContentWidth
	defer func() { s.viewport = previous }()

	if err := settle(ctx, s.export.Settle); err != nil {
		return ImageExport{}, err
	}
	placed := s.Layout()
	base := "logic-model-" + s.clock().Format("2006-01-02")
	out, err := s.renderImage(format, base, func(f domain.ImageFormat) ([]byte, error) {
		return s.renderer.RenderLogic(ctx, placed, frame, f)
	})
	if err != nil {
		return ImageExport{}, err
	}
	s.logger.Info("logic image exported", "format", out.Format, "bytes", len(out.Data), "fell_back", out.FellBack)
	return out, nil
}

func (s *LogicService) commitLogic(ctx context.Context, op domain.ChangeOperation, subjectID string, metadata map[string]string) {
	s.commit(ctx, logicDocumentFromDomain(s.model, s.Layout()), op, subjectID, metadata)
}
