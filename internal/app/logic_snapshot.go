package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

// LogicSnapshotVersion is written into every logic export envelope.
const LogicSnapshotVersion = "1.0"

// LogicStorageKey is the document key for the logic model.
const LogicStorageKey = "logic-model-data"

// LogicEnvelope is the exported logic document.
type LogicEnvelope struct {
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Data      LogicDocument `json:"data"`
}

// LogicDocument is the bare logic form used for storage and legacy import.
type LogicDocument struct {
	Items       []LogicItemDocument       `json:"items"`
	Connections []LogicConnectionDocument `json:"connections"`
}

// LogicItemDocument is one serialized card. X and Y are informational.
type LogicItemDocument struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// LogicConnectionDocument is one serialized arrow.
type LogicConnectionDocument struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// logicDocumentFromDomain serializes a model with positions from placed.
func logicDocumentFromDomain(m domain.LogicModel, placed layout.Logic) LogicDocument {
	doc := LogicDocument{
		Items:       make([]LogicItemDocument, 0, len(m.Items)),
		Connections: make([]LogicConnectionDocument, 0, len(m.Connections)),
	}
	for _, item := range m.Items {
		entry := LogicItemDocument{ID: item.ID, Text: item.Text, Category: string(item.Category)}
		if card, ok := placed.Card(item.ID); ok {
			entry.X, entry.Y = card.X, card.Y
		}
		doc.Items = append(doc.Items, entry)
	}
	for _, c := range m.Connections {
		doc.Connections = append(doc.Connections, LogicConnectionDocument{ID: c.ID, Source: c.Source, Target: c.Target})
	}
	return doc
}

// DecodeLogicDocument parses either the envelope form or the bare legacy form.
// Any structural or domain violation rejects the whole document.
func DecodeLogicDocument(data []byte) (domain.LogicModel, error) {
	m, _, err := decodeLogicDocument(data)
	return m, err
}

// decodeLogicDocument also reports how many connections were dropped because
// a category fallback broke their adjacency.
func decodeLogicDocument(data []byte) (domain.LogicModel, int, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return domain.LogicModel{}, 0, fmt.Errorf("%w: decode json: %v", ErrInvalidDocument, err)
	}
	body, fields := data, top
	if raw, ok := top["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil || inner == nil {
			return domain.LogicModel{}, 0, fmt.Errorf("%w: data must be an object", ErrInvalidDocument)
		}
		body, fields = raw, inner
	}
	for _, key := range []string{"items", "connections"} {
		raw, ok := fields[key]
		if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			return domain.LogicModel{}, 0, fmt.Errorf("%w: %s array is required", ErrInvalidDocument, key)
		}
	}
	var doc LogicDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.LogicModel{}, 0, fmt.Errorf("%w: decode json: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return domain.LogicModel{}, 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc.toDomain()
}

// Validate checks required fields.
func (d LogicDocument) Validate() error {
	for i, item := range d.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("items[%d].id is required", i)
		}
		if strings.TrimSpace(item.Text) == "" {
			return fmt.Errorf("items[%d].text is required", i)
		}
		if strings.TrimSpace(item.Category) == "" {
			return fmt.Errorf("items[%d].category is required", i)
		}
	}
	for i, c := range d.Connections {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("connections[%d].id is required", i)
		}
		if strings.TrimSpace(c.Source) == "" {
			return fmt.Errorf("connections[%d].source is required", i)
		}
		if strings.TrimSpace(c.Target) == "" {
			return fmt.Errorf("connections[%d].target is required", i)
		}
	}
	return nil
}

// toDomain builds a model from a validated document. Unknown categories fall
// back to inputs, and a connection touching a fallback card is dropped when
// the new category breaks its direction or adjacency, matching the cascade of
// a category edit. The dropped count is returned.
func (d LogicDocument) toDomain() (domain.LogicModel, int, error) {
	m := domain.NewLogicModel()
	coerced := map[string]bool{}
	for i, entry := range d.Items {
		category, err := domain.ParseCategory(entry.Category)
		if err != nil {
			category = domain.CategoryInputs
			coerced[strings.TrimSpace(entry.ID)] = true
		}
		item, err := domain.NewItem(entry.ID, entry.Text, category)
		if err != nil {
			return domain.LogicModel{}, 0, fmt.Errorf("%w: items[%d]: %w", ErrInvalidDocument, i, err)
		}
		if err := m.AddItem(item); err != nil {
			return domain.LogicModel{}, 0, fmt.Errorf("%w: items[%d]: %w", ErrInvalidDocument, i, err)
		}
	}
	dropped := 0
	for i, entry := range d.Connections {
		err := m.AddConnection(domain.Connection{ID: entry.ID, Source: entry.Source, Target: entry.Target})
		if err == nil {
			continue
		}
		touched := coerced[strings.TrimSpace(entry.Source)] || coerced[strings.TrimSpace(entry.Target)]
		if touched && (errors.Is(err, domain.ErrWrongDirection) || errors.Is(err, domain.ErrNotAdjacent)) {
			dropped++
			continue
		}
		return domain.LogicModel{}, 0, fmt.Errorf("%w: connections[%d]: %w", ErrInvalidDocument, i, err)
	}
	return m, dropped, nil
}
