package domain

import (
	"fmt"
	"slices"
	"strings"
)

// LogicModel is the root aggregate for the staged logic diagram.
type LogicModel struct {
	Items       []Item
	Connections []Connection
}

// NewLogicModel returns an empty model.
func NewLogicModel() LogicModel {
	return LogicModel{Items: []Item{}, Connections: []Connection{}}
}

// Clone returns a deep copy so callers can stage edits without touching m.
func (m LogicModel) Clone() LogicModel {
	out := LogicModel{
		Items:       make([]Item, len(m.Items)),
		Connections: make([]Connection, len(m.Connections)),
	}
	copy(out.Items, m.Items)
	copy(out.Connections, m.Connections)
	return out
}

// Reset clears every item and connection.
func (m *LogicModel) Reset() {
	m.Items = []Item{}
	m.Connections = []Connection{}
}

// Item returns the item with the given id.
func (m LogicModel) Item(id string) (Item, bool) {
	idx := m.itemIndex(id)
	if idx < 0 {
		return Item{}, false
	}
	return m.Items[idx], true
}

// ItemsInCategory returns items of one category in insertion order.
func (m LogicModel) ItemsInCategory(category Category) []Item {
	out := make([]Item, 0)
	for _, item := range m.Items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// HasConnection reports whether an arrow already joins source to target.
func (m LogicModel) HasConnection(source, target string) bool {
	return slices.ContainsFunc(m.Connections, func(c Connection) bool {
		return c.Source == source && c.Target == target
	})
}

// AddItem appends a validated item.
func (m *LogicModel) AddItem(item Item) error {
	if _, err := NewItem(item.ID, item.Text, item.Category); err != nil {
		return err
	}
	if m.itemIndex(item.ID) >= 0 {
		return fmt.Errorf("item %q: %w", item.ID, ErrDuplicateID)
	}
	m.Items = append(m.Items, Item{ID: strings.TrimSpace(item.ID), Text: strings.TrimSpace(item.Text), Category: item.Category})
	return nil
}

// UpdateItem changes an item's text and category. A category change removes
// every connection touching the item; the removed connections are returned.
func (m *LogicModel) UpdateItem(id, text string, category Category) ([]Connection, error) {
	idx := m.itemIndex(id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	updated, err := NewItem(m.Items[idx].ID, text, category)
	if err != nil {
		return nil, err
	}
	var removed []Connection
	if updated.Category != m.Items[idx].Category {
		removed = m.dropConnectionsTouching(updated.ID)
	}
	m.Items[idx] = updated
	return removed, nil
}

// RemoveItem deletes an item and every connection that references it.
func (m *LogicModel) RemoveItem(id string) (Item, []Connection, error) {
	idx := m.itemIndex(id)
	if idx < 0 {
		return Item{}, nil, ErrItemNotFound
	}
	item := m.Items[idx]
	m.Items = slices.Delete(m.Items, idx, idx+1)
	return item, m.dropConnectionsTouching(item.ID), nil
}

// ValidateConnection checks whether source may be joined to target.
func (m LogicModel) ValidateConnection(sourceID, targetID string) error {
	src, ok := m.Item(sourceID)
	if !ok {
		return fmt.Errorf("source %q: %w", sourceID, ErrItemNotFound)
	}
	dst, ok := m.Item(targetID)
	if !ok {
		return fmt.Errorf("target %q: %w", targetID, ErrItemNotFound)
	}
	if src.ID == dst.ID {
		return ErrSelfConnection
	}
	if err := CheckAdjacency(src.Category, dst.Category); err != nil {
		return err
	}
	if m.HasConnection(src.ID, dst.ID) {
		return ErrDuplicateConnection
	}
	return nil
}

// AddConnection appends a connection after validating it.
func (m *LogicModel) AddConnection(conn Connection) error {
	conn, err := NewConnection(conn.ID, conn.Source, conn.Target)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(m.Connections, func(c Connection) bool { return c.ID == conn.ID }) {
		return fmt.Errorf("connection %q: %w", conn.ID, ErrDuplicateID)
	}
	if err := m.ValidateConnection(conn.Source, conn.Target); err != nil {
		return err
	}
	m.Connections = append(m.Connections, conn)
	return nil
}

// RemoveConnection deletes a connection by id.
func (m *LogicModel) RemoveConnection(id string) (Connection, error) {
	id = strings.TrimSpace(id)
	idx := slices.IndexFunc(m.Connections, func(c Connection) bool { return c.ID == id })
	if idx < 0 {
		return Connection{}, ErrConnectionNotFound
	}
	conn := m.Connections[idx]
	m.Connections = slices.Delete(m.Connections, idx, idx+1)
	return conn, nil
}

func (m LogicModel) itemIndex(id string) int {
	id = strings.TrimSpace(id)
	return slices.IndexFunc(m.Items, func(item Item) bool { return item.ID == id })
}

func (m *LogicModel) dropConnectionsTouching(itemID string) []Connection {
	kept := make([]Connection, 0, len(m.Connections))
	var removed []Connection
	for _, c := range m.Connections {
		if c.Touches(itemID) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	m.Connections = kept
	return removed
}
