package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
)

// defaultHistoryLimit caps history when callers pass no limit.
const defaultHistoryLimit = 50

// AppServiceAdapter maps transport contracts onto the two diagram sessions.
// Calls are serialized so both transports share one writer.
type AppServiceAdapter struct {
	mu      sync.Mutex
	logic   *app.LogicService
	purpose *app.PurposeService
}

var _ Service = (*AppServiceAdapter)(nil)

// NewAppServiceAdapter builds one common adapter over loaded diagram sessions.
func NewAppServiceAdapter(logic *app.LogicService, purpose *app.PurposeService) *AppServiceAdapter {
	return &AppServiceAdapter{logic: logic, purpose: purpose}
}

// WithDefaultActor attaches the transport's default actor to ctx.
func WithDefaultActor(ctx context.Context, actorID string, actorType domain.ActorType) context.Context {
	return app.WithMutationActor(ctx, app.MutationActor{ActorID: actorID, ActorType: actorType})
}

// withActor overlays request actor fields on the context actor.
func withActor(ctx context.Context, in Actor) (context.Context, error) {
	actor := app.MutationActorFromContext(ctx)
	if id := strings.TrimSpace(in.ActorID); id != "" {
		actor.ActorID = id
	}
	if raw := strings.TrimSpace(in.ActorType); raw != "" {
		actorType, err := domain.NormalizeActorType(domain.ActorType(raw))
		if err != nil {
			return nil, fmt.Errorf("actor_type %q is unsupported: %w", in.ActorType, ErrInvalidRequest)
		}
		actor.ActorType = actorType
	}
	return app.WithMutationActor(ctx, actor), nil
}

func (a *AppServiceAdapter) requireLogic() error {
	if a == nil || a.logic == nil {
		return fmt.Errorf("logic service is not configured: %w", ErrUnavailable)
	}
	return nil
}

func (a *AppServiceAdapter) requirePurpose() error {
	if a == nil || a.purpose == nil {
		return fmt.Errorf("purpose service is not configured: %w", ErrUnavailable)
	}
	return nil
}

// LogicState returns the current logic model.
func (a *AppServiceAdapter) LogicState(_ context.Context) (LogicState, error) {
	if err := a.requireLogic(); err != nil {
		return LogicState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return logicStateFrom(a.logic.Model()), nil
}

// AddItem creates one card.
func (a *AppServiceAdapter) AddItem(ctx context.Context, in AddItemRequest) (ItemView, error) {
	if err := a.requireLogic(); err != nil {
		return ItemView{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return ItemView{}, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return ItemView{}, mapAppError("add item", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	item, err := a.logic.AddItem(ctx, app.AddItemInput{Text: in.Text, Category: category})
	if err != nil {
		return ItemView{}, mapAppError("add item", err)
	}
	return itemViewFrom(item), nil
}

// UpdateItem edits one card.
func (a *AppServiceAdapter) UpdateItem(ctx context.Context, in UpdateItemRequest) (ItemChangeResult, error) {
	if err := a.requireLogic(); err != nil {
		return ItemChangeResult{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return ItemChangeResult{}, err
	}
	var category domain.Category
	if strings.TrimSpace(in.Category) != "" {
		if category, err = domain.ParseCategory(in.Category); err != nil {
			return ItemChangeResult{}, mapAppError("update item", err)
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := a.logic.UpdateItem(ctx, app.UpdateItemInput{ID: in.ID, Text: in.Text, Category: category})
	if err != nil {
		return ItemChangeResult{}, mapAppError("update item", err)
	}
	return ItemChangeResult{Item: itemViewFrom(out.Item), RemovedConnections: out.RemovedConnections}, nil
}

// RemoveItem deletes one card and its connections.
func (a *AppServiceAdapter) RemoveItem(ctx context.Context, in DeleteRequest) (ItemChangeResult, error) {
	if err := a.requireLogic(); err != nil {
		return ItemChangeResult{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return ItemChangeResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := a.logic.RemoveItem(ctx, in.ID)
	if err != nil {
		return ItemChangeResult{}, mapAppError("remove item", err)
	}
	return ItemChangeResult{Item: itemViewFrom(out.Item), RemovedConnections: out.RemovedConnections}, nil
}

// Connect draws one arrow.
func (a *AppServiceAdapter) Connect(ctx context.Context, in ConnectRequest) (ConnectionView, error) {
	if err := a.requireLogic(); err != nil {
		return ConnectionView{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return ConnectionView{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	conn, err := a.logic.Connect(ctx, in.Source, in.Target)
	if err != nil {
		return ConnectionView{}, mapAppError("connect", err)
	}
	return connectionViewFrom(conn), nil
}

// Disconnect removes one arrow.
func (a *AppServiceAdapter) Disconnect(ctx context.Context, in DeleteRequest) (ConnectionView, error) {
	if err := a.requireLogic(); err != nil {
		return ConnectionView{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return ConnectionView{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	conn, err := a.logic.Disconnect(ctx, in.ID)
	if err != nil {
		return ConnectionView{}, mapAppError("disconnect", err)
	}
	return connectionViewFrom(conn), nil
}

// ResetLogic clears the logic model.
func (a *AppServiceAdapter) ResetLogic(ctx context.Context, in ResetRequest) (LogicState, error) {
	if err := a.requireLogic(); err != nil {
		return LogicState{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return LogicState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logic.Reset(ctx)
	return logicStateFrom(a.logic.Model()), nil
}

// ImportLogic replaces the logic model from an exported document.
func (a *AppServiceAdapter) ImportLogic(ctx context.Context, in ImportRequest) (LogicState, error) {
	if err := a.requireLogic(); err != nil {
		return LogicState{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return LogicState{}, err
	}
	if len(in.Document) == 0 {
		return LogicState{}, fmt.Errorf("document is required: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.logic.ImportJSON(ctx, in.Document); err != nil {
		return LogicState{}, mapAppError("import logic", err)
	}
	return logicStateFrom(a.logic.Model()), nil
}

// ExportLogic returns the enveloped logic document.
func (a *AppServiceAdapter) ExportLogic(_ context.Context) (json.RawMessage, error) {
	if err := a.requireLogic(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	data, err := a.logic.ExportJSON()
	if err != nil {
		return nil, mapAppError("export logic", err)
	}
	return data, nil
}

// ExportLogicImage renders the logic board.
func (a *AppServiceAdapter) ExportLogicImage(ctx context.Context, in ExportImageRequest) (ImageResult, error) {
	if err := a.requireLogic(); err != nil {
		return ImageResult{}, err
	}
	format, err := parseImageFormat(in.Format)
	if err != nil {
		return ImageResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := a.logic.ExportImage(ctx, format)
	if err != nil {
		return ImageResult{}, mapAppError("export logic image", err)
	}
	return imageResultFrom(out), nil
}

// PurposeState returns navigation state and the active partition.
func (a *AppServiceAdapter) PurposeState(_ context.Context) (PurposeState, error) {
	if err := a.requirePurpose(); err != nil {
		return PurposeState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return purposeStateFrom(a.purpose.Model()), nil
}

// SetMode switches the purpose mode.
func (a *AppServiceAdapter) SetMode(ctx context.Context, in SelectRequest) (PurposeState, error) {
	return a.purposeSelect(ctx, in, "set mode", func(ctx context.Context, value string) error {
		mode, err := domain.ParseMode(value)
		if err != nil {
			return err
		}
		return a.purpose.SetMode(ctx, mode)
	})
}

// SelectTimeline moves the timeline pointer.
func (a *AppServiceAdapter) SelectTimeline(ctx context.Context, in SelectRequest) (PurposeState, error) {
	return a.purposeSelect(ctx, in, "select timeline", func(ctx context.Context, value string) error {
		slot, err := domain.ParseTimelineSlot(value)
		if err != nil {
			return err
		}
		return a.purpose.SelectTimeline(ctx, slot)
	})
}

// AddComparison registers and selects a comparison.
func (a *AppServiceAdapter) AddComparison(ctx context.Context, in SelectRequest) (PurposeState, error) {
	return a.purposeSelect(ctx, in, "add comparison", func(ctx context.Context, value string) error {
		_, err := a.purpose.AddComparison(ctx, value)
		return err
	})
}

// RemoveComparison deletes a comparison.
func (a *AppServiceAdapter) RemoveComparison(ctx context.Context, in SelectRequest) (PurposeState, error) {
	return a.purposeSelect(ctx, in, "remove comparison", func(ctx context.Context, value string) error {
		return a.purpose.RemoveComparison(ctx, value)
	})
}

// SelectComparison moves the comparison pointer.
func (a *AppServiceAdapter) SelectComparison(ctx context.Context, in SelectRequest) (PurposeState, error) {
	return a.purposeSelect(ctx, in, "select comparison", func(ctx context.Context, value string) error {
		return a.purpose.SelectComparison(ctx, value)
	})
}

func (a *AppServiceAdapter) purposeSelect(ctx context.Context, in SelectRequest, operation string, fn func(context.Context, string) error) (PurposeState, error) {
	if err := a.requirePurpose(); err != nil {
		return PurposeState{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return PurposeState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := fn(ctx, in.Value); err != nil {
		return PurposeState{}, mapAppError(operation, err)
	}
	return purposeStateFrom(a.purpose.Model()), nil
}

// AddStakeholder appends one stakeholder to the active partition.
func (a *AppServiceAdapter) AddStakeholder(ctx context.Context, in AddStakeholderRequest) (StakeholderView, error) {
	if err := a.requirePurpose(); err != nil {
		return StakeholderView{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return StakeholderView{}, err
	}
	category, err := domain.ParseStakeholderCategory(in.Category)
	if err != nil {
		return StakeholderView{}, mapAppError("add stakeholder", err)
	}
	layer, err := domain.ParseLayer(in.Layer)
	if err != nil {
		return StakeholderView{}, mapAppError("add stakeholder", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.purpose.AddStakeholder(ctx, app.AddStakeholderInput{
		Name:     in.Name,
		Role:     in.Role,
		Goal:     in.Goal,
		Category: category,
		Layer:    layer,
	})
	if err != nil {
		return StakeholderView{}, mapAppError("add stakeholder", err)
	}
	return stakeholderViewFrom(s), nil
}

// UpdateStakeholder patches one stakeholder of the active partition.
func (a *AppServiceAdapter) UpdateStakeholder(ctx context.Context, in UpdateStakeholderRequest) (StakeholderView, error) {
	if err := a.requirePurpose(); err != nil {
		return StakeholderView{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return StakeholderView{}, err
	}
	patch := domain.StakeholderPatch{Name: in.Name, Role: in.Role, Goal: in.Goal}
	if in.Category != nil {
		category, err := domain.ParseStakeholderCategory(*in.Category)
		if err != nil {
			return StakeholderView{}, mapAppError("update stakeholder", err)
		}
		patch.Category = &category
	}
	if in.Layer != nil {
		layer, err := domain.ParseLayer(*in.Layer)
		if err != nil {
			return StakeholderView{}, mapAppError("update stakeholder", err)
		}
		patch.Layer = &layer
	}
	if patch.Empty() {
		return StakeholderView{}, fmt.Errorf("update stakeholder: no fields to change: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.purpose.UpdateStakeholder(ctx, in.ID, patch)
	if err != nil {
		return StakeholderView{}, mapAppError("update stakeholder", err)
	}
	return stakeholderViewFrom(s), nil
}

// RemoveStakeholder deletes one stakeholder of the active partition.
func (a *AppServiceAdapter) RemoveStakeholder(ctx context.Context, in DeleteRequest) (StakeholderView, error) {
	if err := a.requirePurpose(); err != nil {
		return StakeholderView{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return StakeholderView{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.purpose.RemoveStakeholder(ctx, in.ID)
	if err != nil {
		return StakeholderView{}, mapAppError("remove stakeholder", err)
	}
	return stakeholderViewFrom(s), nil
}

// UpdatePurpose edits the active purpose text.
func (a *AppServiceAdapter) UpdatePurpose(ctx context.Context, in UpdatePurposeRequest) (PurposeText, error) {
	if err := a.requirePurpose(); err != nil {
		return PurposeText{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return PurposeText{}, err
	}
	if in.Title == nil && in.Description == nil {
		return PurposeText{}, fmt.Errorf("update purpose: title or description is required: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.purpose.UpdatePurpose(ctx, app.UpdatePurposeInput{Title: in.Title, Description: in.Description})
	if err != nil {
		return PurposeText{}, mapAppError("update purpose", err)
	}
	return PurposeText{Title: p.Title, Description: p.Description}, nil
}

// ResetPurpose restores the default purpose model.
func (a *AppServiceAdapter) ResetPurpose(ctx context.Context, in ResetRequest) (PurposeState, error) {
	if err := a.requirePurpose(); err != nil {
		return PurposeState{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return PurposeState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.purpose.Reset(ctx)
	return purposeStateFrom(a.purpose.Model()), nil
}

// ImportPurpose replaces the purpose model from a full or legacy document.
func (a *AppServiceAdapter) ImportPurpose(ctx context.Context, in ImportRequest) (PurposeState, error) {
	if err := a.requirePurpose(); err != nil {
		return PurposeState{}, err
	}
	ctx, err := withActor(ctx, in.Actor)
	if err != nil {
		return PurposeState{}, err
	}
	if len(in.Document) == 0 {
		return PurposeState{}, fmt.Errorf("document is required: %w", ErrInvalidRequest)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	m, err := a.purpose.ImportJSON(ctx, in.Document)
	if err != nil {
		return PurposeState{}, mapAppError("import purpose", err)
	}
	return purposeStateFrom(m), nil
}

// ExportPurpose returns the full purpose document.
func (a *AppServiceAdapter) ExportPurpose(_ context.Context) (json.RawMessage, error) {
	if err := a.requirePurpose(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	data, err := a.purpose.ExportJSON()
	if err != nil {
		return nil, mapAppError("export purpose", err)
	}
	return data, nil
}

// ExportPurposeImage renders the active purpose ring.
func (a *AppServiceAdapter) ExportPurposeImage(ctx context.Context, in ExportImageRequest) (ImageResult, error) {
	if err := a.requirePurpose(); err != nil {
		return ImageResult{}, err
	}
	format, err := parseImageFormat(in.Format)
	if err != nil {
		return ImageResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := a.purpose.ExportImage(ctx, format)
	if err != nil {
		return ImageResult{}, mapAppError("export purpose image", err)
	}
	return imageResultFrom(out), nil
}

// History lists recent changes for "logic" or "purpose".
func (a *AppServiceAdapter) History(ctx context.Context, diagram string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	var (
		events []domain.ChangeEvent
		err    error
	)
	switch domain.DiagramKind(strings.ToLower(strings.TrimSpace(diagram))) {
	case domain.DiagramLogic:
		if err := a.requireLogic(); err != nil {
			return nil, err
		}
		events, err = a.logic.History(ctx, limit)
	case domain.DiagramPurpose:
		if err := a.requirePurpose(); err != nil {
			return nil, err
		}
		events, err = a.purpose.History(ctx, limit)
	default:
		return nil, fmt.Errorf("diagram %q must be logic or purpose: %w", diagram, ErrInvalidRequest)
	}
	if err != nil {
		return nil, mapAppError("history", err)
	}
	out := make([]HistoryEntry, 0, len(events))
	for _, e := range events {
		out = append(out, HistoryEntry{
			ID:         e.ID,
			Diagram:    string(e.Diagram),
			Operation:  string(e.Operation),
			SubjectID:  e.SubjectID,
			ActorID:    e.ActorID,
			ActorType:  string(e.ActorType),
			Metadata:   e.Metadata,
			OccurredAt: e.OccurredAt,
		})
	}
	return out, nil
}

func parseImageFormat(raw string) (domain.ImageFormat, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.ImagePNG, nil
	}
	format, err := domain.ParseImageFormat(raw)
	if err != nil {
		return "", mapAppError("parse image format", err)
	}
	return format, nil
}

func itemViewFrom(item domain.Item) ItemView {
	return ItemView{ID: item.ID, Text: item.Text, Category: string(item.Category), CategoryLabel: item.Category.Label()}
}

func connectionViewFrom(c domain.Connection) ConnectionView {
	return ConnectionView{ID: c.ID, Source: c.Source, Target: c.Target}
}

func logicStateFrom(m domain.LogicModel) LogicState {
	out := LogicState{
		Items:       make([]ItemView, 0, len(m.Items)),
		Connections: make([]ConnectionView, 0, len(m.Connections)),
	}
	for _, item := range m.Items {
		out.Items = append(out.Items, itemViewFrom(item))
	}
	for _, c := range m.Connections {
		out.Connections = append(out.Connections, connectionViewFrom(c))
	}
	return out
}

func stakeholderViewFrom(s domain.Stakeholder) StakeholderView {
	return StakeholderView{
		ID:       s.ID,
		Name:     s.Name,
		Role:     s.Role,
		Goal:     s.Goal,
		Category: string(s.Category),
		Layer:    string(s.Layer),
	}
}

func purposeStateFrom(m domain.PurposeModel) PurposeState {
	view := m.ActiveView()
	out := PurposeState{
		Mode:               string(m.Mode),
		CurrentTimeline:    string(m.CurrentSlot),
		Comparisons:        append([]string{}, m.ComparisonNames...),
		SelectedComparison: m.SelectedComparison,
		Writable:           m.Writable(),
		Caption:            m.Caption(),
		Purpose:            PurposeText{Title: view.Purpose.Title, Description: view.Purpose.Description},
		Stakeholders:       make([]StakeholderView, 0, len(view.Stakeholders)),
	}
	for _, s := range view.Stakeholders {
		out.Stakeholders = append(out.Stakeholders, stakeholderViewFrom(s))
	}
	return out
}

func imageResultFrom(out app.ImageExport) ImageResult {
	return ImageResult{
		Format:         string(out.Format),
		ContentType:    out.Format.ContentType(),
		FileName:       out.FileName,
		Data:           out.Data,
		FellBack:       out.FellBack,
		FallbackReason: out.FallbackReason,
	}
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrConnectionNotFound),
		errors.Is(err, domain.ErrStakeholderNotFound),
		errors.Is(err, domain.ErrComparisonNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrDuplicateConnection),
		errors.Is(err, domain.ErrDuplicateComparison),
		errors.Is(err, domain.ErrNoComparisonSelected):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, app.ErrRendererUnavailable):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUnavailable, err))
	case errors.Is(err, app.ErrInvalidDocument),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidText),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidGoal),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidDescription),
		errors.Is(err, domain.ErrInvalidStakeholderCategory),
		errors.Is(err, domain.ErrInvalidLayer),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidTimelineSlot),
		errors.Is(err, domain.ErrInvalidComparisonName),
		errors.Is(err, domain.ErrInvalidActorType),
		errors.Is(err, domain.ErrInvalidImageFormat),
		errors.Is(err, domain.ErrTooLong),
		errors.Is(err, domain.ErrSelfConnection),
		errors.Is(err, domain.ErrWrongDirection),
		errors.Is(err, domain.ErrNotAdjacent),
		errors.Is(err, domain.ErrLastStage):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
