package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

// PurposeFileBase is the base name for purpose exports.
const PurposeFileBase = "purpose-model"

// PurposeService owns one purpose-model session and its partition manager.
type PurposeService struct {
	session
	model    domain.PurposeModel
	viewport Viewport
	export   ExportConfig
}

// NewPurposeService constructs a new value for this package.
func NewPurposeService(store DocumentStore, idGen IDGenerator, clock Clock, cfg ServiceConfig) *PurposeService {
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = Viewport{Width: layout.DefaultPurposeWidth, Height: layout.DefaultPurposeHeight}
	}
	if cfg.Export.Width <= 0 || cfg.Export.Height <= 0 {
		cfg.Export.Width, cfg.Export.Height = layout.ExportPurposeWidth, layout.ExportPurposeHeight
	}
	if cfg.Export.Settle < 0 {
		cfg.Export.Settle = 0
	}
	return &PurposeService{
		session:  newSession(domain.DiagramPurpose, PurposeStorageKey, store, idGen, clock, cfg),
		model:    domain.NewPurposeModel(),
		viewport: cfg.Viewport,
		export:   cfg.Export,
	}
}

// Load reads the stored model once. Missing or undecodable documents leave the
// session on defaults.
func (s *PurposeService) Load(ctx context.Context) {
	s.model = domain.NewPurposeModel()
	data, ok := s.readStored(ctx)
	if !ok {
		return
	}
	m, err := DecodePurposeDocument(data, domain.NewPurposeModel())
	if err != nil {
		s.logger.Warn("stored purpose document invalid, using defaults", "key", s.key, "err", err)
		return
	}
	s.model = m
	s.logger.Info("purpose model loaded", "mode", m.Mode, "comparisons", len(m.ComparisonNames))
}

// Model returns a copy of the current aggregate.
func (s *PurposeService) Model() domain.PurposeModel {
	return s.model.Clone()
}

// View returns the active partition, or the placeholder when none is writable.
func (s *PurposeService) View() domain.Partition {
	return s.model.ActiveView()
}

// Viewport returns the current layout viewport.
func (s *PurposeService) Viewport() Viewport {
	return s.viewport
}

// Layout places the active partition in the current viewport.
func (s *PurposeService) Layout() layout.PurposeDiagram {
	return layout.PurposeLayout(s.model.ActiveView(), s.model.Caption(), s.viewport.Width, s.viewport.Height)
}

// SetMode switches between single, timeline and comparison modes.
func (s *PurposeService) SetMode(ctx context.Context, mode domain.Mode) error {
	if err := s.model.SetMode(mode); err != nil {
		return err
	}
	s.commitPurpose(ctx, domain.ChangeOperationSelect, "", map[string]string{"mode": string(mode)})
	return nil
}

// SelectTimeline moves to a timeline slot.
func (s *PurposeService) SelectTimeline(ctx context.Context, slot domain.TimelineSlot) error {
	if err := s.model.SelectTimeline(slot); err != nil {
		return err
	}
	s.commitPurpose(ctx, domain.ChangeOperationSelect, "", map[string]string{"timeline": string(slot)})
	return nil
}

// AddComparison creates and selects a named comparison partition.
func (s *PurposeService) AddComparison(ctx context.Context, name string) (string, error) {
	name, err := s.model.AddComparison(name)
	if err != nil {
		return "", err
	}
	s.commitPurpose(ctx, domain.ChangeOperationCreate, name, map[string]string{"kind": "comparison"})
	return name, nil
}

// RemoveComparison deletes a comparison and its data.
func (s *PurposeService) RemoveComparison(ctx context.Context, name string) error {
	if err := s.model.RemoveComparison(name); err != nil {
		return err
	}
	s.commitPurpose(ctx, domain.ChangeOperationDelete, name, map[string]string{"kind": "comparison", "selected": s.model.SelectedComparison})
	return nil
}

// SelectComparison moves to a named comparison.
func (s *PurposeService) SelectComparison(ctx context.Context, name string) error {
	if err := s.model.SelectComparison(name); err != nil {
		return err
	}
	s.commitPurpose(ctx, domain.ChangeOperationSelect, name, map[string]string{"comparison": name})
	return nil
}

// AddStakeholderInput holds input values for add stakeholder operations.
type AddStakeholderInput struct {
	Name     string
	Role     string
	Goal     string
	Category domain.StakeholderCategory
	Layer    domain.Layer
}

// AddStakeholder appends a stakeholder to the active partition.
func (s *PurposeService) AddStakeholder(ctx context.Context, in AddStakeholderInput) (domain.Stakeholder, error) {
	if !s.model.Writable() {
		return domain.Stakeholder{}, domain.ErrNoComparisonSelected
	}
	stakeholder, err := domain.NewStakeholder(s.idGen(), in.Name, in.Role, in.Goal, in.Category, in.Layer)
	if err != nil {
		return domain.Stakeholder{}, err
	}
	if err := s.model.AddStakeholder(stakeholder); err != nil {
		return domain.Stakeholder{}, err
	}
	s.commitPurpose(ctx, domain.ChangeOperationCreate, stakeholder.ID, map[string]string{
		"category": string(stakeholder.Category),
		"layer":    string(stakeholder.Layer),
	})
	return stakeholder, nil
}

// UpdateStakeholder edits a stakeholder of the active partition.
func (s *PurposeService) UpdateStakeholder(ctx context.Context, id string, patch domain.StakeholderPatch) (domain.Stakeholder, error) {
	stakeholder, err := s.model.UpdateStakeholder(id, patch)
	if err != nil {
		return domain.Stakeholder{}, err
	}
	s.commitPurpose(ctx, domain.ChangeOperationUpdate, stakeholder.ID, nil)
	return stakeholder, nil
}

// RemoveStakeholder deletes a stakeholder of the active partition.
func (s *PurposeService) RemoveStakeholder(ctx context.Context, id string) (domain.Stakeholder, error) {
	stakeholder, err := s.model.RemoveStakeholder(id)
	if err != nil {
		return domain.Stakeholder{}, err
	}
	s.commitPurpose(ctx, domain.ChangeOperationDelete, stakeholder.ID, nil)
	return stakeholder, nil
}

// UpdatePurposeInput holds optional purpose edits; nil fields are left alone.
type UpdatePurposeInput struct {
	Title       *string
	Description *string
}

// UpdatePurpose edits the active partition's purpose.
func (s *PurposeService) UpdatePurpose(ctx context.Context, in UpdatePurposeInput) (domain.Purpose, error) {
	purpose, err := s.model.UpdatePurpose(in.Title, in.Description)
	if err != nil {
		return domain.Purpose{}, err
	}
	s.commitPurpose(ctx, domain.ChangeOperationUpdate, "purpose", nil)
	return purpose, nil
}

// Reset restores the default timeline and clears comparisons.
func (s *PurposeService) Reset(ctx context.Context) {
	s.model.Reset()
	s.discard(ctx, domain.ChangeOperationReset)
}

// ExportDocument returns the full serialized model.
func (s *PurposeService) ExportDocument() PurposeDocument {
	return purposeDocumentFromDomain(s.model)
}

// ExportJSON encodes the full model with indentation.
func (s *PurposeService) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.ExportDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode purpose export: %w", err)
	}
	return data, nil
}

// ImportJSON replaces the model from the full or legacy form. Invalid
// documents are rejected as a whole and leave the session untouched.
func (s *PurposeService) ImportJSON(ctx context.Context, data []byte) (domain.PurposeModel, error) {
	m, err := DecodePurposeDocument(data, s.model)
	if err != nil {
		return domain.PurposeModel{}, err
	}
	s.model = m
	s.commitPurpose(ctx, domain.ChangeOperationImport, "", map[string]string{
		"mode":        string(m.Mode),
		"comparisons": strconv.Itoa(len(m.ComparisonNames)),
	})
	return m.Clone(), nil
}

// FileName returns the export file name for ext.
func (s *PurposeService) FileName(ext string) string {
	return PurposeFileBase + "." + ext
}

// ExportImage renders the active partition on the fixed export canvas. The
// viewport is overridden while rendering and always restored.
func (s *PurposeService) ExportImage(ctx context.Context, format domain.ImageFormat) (ImageExport, error) {
	previous := s.viewport
	s.viewport = Viewport{Width: s.export.Width, Height: s.export.Height}
	defer func() { s.viewport = previous }()

	if err := settle(ctx, s.export.Settle); err != nil {
		return ImageExport{}, err
	}
	placed := s.Layout()
	out, err := s.renderImage(format, PurposeFileBase, func(f domain.ImageFormat) ([]byte, error) {
		return s.renderer.RenderPurpose(ctx, placed, f)
	})
	if err != nil {
		return ImageExport{}, err
	}
	s.logger.Info("purpose image exported", "format", out.Format, "bytes", len(out.Data), "fell_back", out.FellBack)
	return out, nil
}

func (s *PurposeService) commitPurpose(ctx context.Context, op domain.ChangeOperation, subjectID string, metadata map[string]string) {
	s.commit(ctx, purposeDocumentFromDomain(s.model), op, subjectID, metadata)
}
