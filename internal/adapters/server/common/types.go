// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed or rejected input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConflict reports requests that clash with the current diagram state.
var ErrConflict = errors.New("conflict")

// ErrUnavailable reports a surface that is not configured.
var ErrUnavailable = errors.New("unavailable")

// Actor identifies the caller of a mutating request. Empty fields fall back to
// the transport default.
type Actor struct {
	ActorID   string `json:"actor_id,omitempty"`
	ActorType string `json:"actor_type,omitempty"`
}

// ItemView is one logic card.
type ItemView struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
}

// ConnectionView is one arrow between cards.
type ConnectionView struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// LogicState is the full logic model as seen by clients.
type LogicState struct {
	Items       []ItemView       `json:"items"`
	Connections []ConnectionView `json:"connections"`
}

// AddItemRequest creates one card.
type AddItemRequest struct {
	Actor
	Text     string `json:"text"`
	Category string `json:"category"`
}

// UpdateItemRequest edits one card. An empty category keeps the current one.
type UpdateItemRequest struct {
	Actor
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

// ItemChangeResult reports one card mutation and its cascade.
type ItemChangeResult struct {
	Item               ItemView `json:"item"`
	RemovedConnections int      `json:"removed_connections"`
}

// ConnectRequest draws one arrow.
type ConnectRequest struct {
	Actor
	Source string `json:"source"`
	Target string `json:"target"`
}

// DeleteRequest removes one entity by id.
type DeleteRequest struct {
	Actor
	ID string `json:"id"`
}

// ResetRequest restores a diagram to its defaults.
type ResetRequest struct {
	Actor
}

// ImportRequest replaces a diagram from an exported document.
type ImportRequest struct {
	Actor
	Document json.RawMessage `json:"document"`
}

// ExportImageRequest renders a diagram image.
type ExportImageRequest struct {
	Format string `json:"format"`
}

// ImageResult is a rendered image, base64 encoded by encoding/json.
type ImageResult struct {
	Format         string `json:"format"`
	ContentType    string `json:"content_type"`
	FileName       string `json:"file_name"`
	Data           []byte `json:"data"`
	FellBack       bool   `json:"fell_back"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// PurposeText is a title and description pair.
type PurposeText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StakeholderView is one stakeholder of the active partition.
type StakeholderView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Goal     string `json:"goal"`
	Category string `json:"category"`
	Layer    string `json:"layer"`
}

// PurposeState is the navigation state plus the active partition.
type PurposeState struct {
	Mode               string            `json:"mode"`
	CurrentTimeline    string            `json:"current_timeline"`
	Comparisons        []string          `json:"comparisons"`
	SelectedComparison string            `json:"selected_comparison,omitempty"`
	Writable           bool              `json:"writable"`
	Caption            string            `json:"caption,omitempty"`
	Purpose            PurposeText       `json:"purpose"`
	Stakeholders       []StakeholderView `json:"stakeholders"`
}

// SelectRequest sets a mode, timeline slot or comparison by value.
type SelectRequest struct {
	Actor
	Value string `json:"value"`
}

// AddStakeholderRequest appends one stakeholder to the active partition.
type AddStakeholderRequest struct {
	Actor
	Name     string `json:"name"`
	Role     string `json:"role"`
	Goal     string `json:"goal"`
	Category string `json:"category"`
	Layer    string `json:"layer"`
}

// UpdateStakeholderRequest patches one stakeholder. Nil fields are left alone.
type UpdateStakeholderRequest struct {
	Actor
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Goal     *string `json:"goal,omitempty"`
	Category *string `json:"category,omitempty"`
	Layer    *string `json:"layer,omitempty"`
}

// UpdatePurposeRequest edits the active purpose. Nil fields are left alone.
type UpdatePurposeRequest struct {
	Actor
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HistoryEntry is one change ledger row.
type HistoryEntry struct {
	ID         int64             `json:"id"`
	Diagram    string            `json:"diagram"`
	Operation  string            `json:"operation"`
	SubjectID  string            `json:"subject_id,omitempty"`
	ActorID    string            `json:"actor_id"`
	ActorType  string            `json:"actor_type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// LogicService exposes the logic diagram commands.
type LogicService interface {
	LogicState(context.Context) (LogicState, error)
	AddItem(context.Context, AddItemRequest) (ItemView, error)
	UpdateItem(context.Context, UpdateItemRequest) (ItemChangeResult, error)
	RemoveItem(context.Context, DeleteRequest) (ItemChangeResult, error)
	Connect(context.Context, ConnectRequest) (ConnectionView, error)
	Disconnect(context.Context, DeleteRequest) (ConnectionView, error)
	ResetLogic(context.Context, ResetRequest) (LogicState, error)
	ImportLogic(context.Context, ImportRequest) (LogicState, error)
	ExportLogic(context.Context) (json.RawMessage, error)
	ExportLogicImage(context.Context, ExportImageRequest) (ImageResult, error)
}

// PurposeService exposes the purpose diagram commands.
type PurposeService interface {
	PurposeState(context.Context) (PurposeState, error)
	SetMode(context.Context, SelectRequest) (PurposeState, error)
	SelectTimeline(context.Context, SelectRequest) (PurposeState, error)
	AddComparison(context.Context, SelectRequest) (PurposeState, error)
	RemoveComparison(context.Context, SelectRequest) (PurposeState, error)
	SelectComparison(context.Context, SelectRequest) (PurposeState, error)
	AddStakeholder(context.Context, AddStakeholderRequest) (StakeholderView, error)
	UpdateStakeholder(context.Context, UpdateStakeholderRequest) (StakeholderView, error)
	RemoveStakeholder(context.Context, DeleteRequest) (StakeholderView, error)
	UpdatePurpose(context.Context, UpdatePurposeRequest) (PurposeText, error)
	ResetPurpose(context.Context, ResetRequest) (PurposeState, error)
	ImportPurpose(context.Context, ImportRequest) (PurposeState, error)
	ExportPurpose(context.Context) (json.RawMessage, error)
	ExportPurposeImage(context.Context, ExportImageRequest) (ImageResult, error)
}

// HistoryService lists recorded changes for one diagram.
type HistoryService interface {
	History(ctx context.Context, diagram string, limit int) ([]HistoryEntry, error)
}

// Service is the full command surface shared by both transports.
type Service interface {
	LogicService
	PurposeService
	HistoryService
}
