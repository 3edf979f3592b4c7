package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hylla/zukai/internal/domain"
)

// PurposeStorageKey is the document key for the purpose model.
const PurposeStorageKey = "purpose-model-data-clean"

// PurposeDocument is the full serialized purpose model.
type PurposeDocument struct {
	CurrentTimeline    string                       `json:"currentTimeline"`
	CurrentMode        string                       `json:"currentMode"`
	ComparisonList     []string                     `json:"comparisonList"`
	SelectedComparison string                       `json:"selectedComparison"`
	TimelineData       map[string]PartitionDocument `json:"timelineData"`
	ComparisonData     map[string]PartitionDocument `json:"comparisonData"`
}

// PartitionDocument is one serialized partition, also the legacy import form.
type PartitionDocument struct {
	Purpose      *PurposeTextDocument  `json:"purpose"`
	Stakeholders []StakeholderDocument `json:"stakeholders"`
}

// PurposeTextDocument is the serialized central purpose.
type PurposeTextDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StakeholderDocument is one serialized stakeholder.
type StakeholderDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Goal     string `json:"goal"`
	Category string `json:"category"`
	Layer    string `json:"layer"`
}

// purposeDocumentFromDomain serializes the whole aggregate.
func purposeDocumentFromDomain(m domain.PurposeModel) PurposeDocument {
	doc := PurposeDocument{
		CurrentTimeline:    string(m.CurrentSlot),
		CurrentMode:        string(m.Mode),
		ComparisonList:     append([]string{}, m.ComparisonNames...),
		SelectedComparison: m.SelectedComparison,
		TimelineData:       make(map[string]PartitionDocument, len(m.Timeline)),
		ComparisonData:     make(map[string]PartitionDocument, len(m.Comparisons)),
	}
	for slot, p := range m.Timeline {
		doc.TimelineData[string(slot)] = partitionDocumentFromDomain(p)
	}
	for name, p := range m.Comparisons {
		doc.ComparisonData[name] = partitionDocumentFromDomain(p)
	}
	return doc
}

func partitionDocumentFromDomain(p domain.Partition) PartitionDocument {
	out := PartitionDocument{
		Purpose:      &PurposeTextDocument{Title: p.Purpose.Title, Description: p.Purpose.Description},
		Stakeholders: make([]StakeholderDocument, 0, len(p.Stakeholders)),
	}
	for _, s := range p.Stakeholders {
		out.Stakeholders = append(out.Stakeholders, StakeholderDocument{
			ID:       s.ID,
			Name:     s.Name,
			Role:     s.Role,
			Goal:     s.Goal,
			Category: string(s.Category),
			Layer:    string(s.Layer),
		})
	}
	return out
}

// DecodePurposeDocument parses the full form, or the legacy single-partition
// form which is merged into base's current slot with comparisons cleared.
// Any violation rejects the whole document and base is left untouched.
func DecodePurposeDocument(data []byte, base domain.PurposeModel) (domain.PurposeModel, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return domain.PurposeModel{}, fmt.Errorf("%w: decode json: %v", ErrInvalidDocument, err)
	}
	if _, ok := top["timelineData"]; ok {
		var doc PurposeDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.PurposeModel{}, fmt.Errorf("%w: decode json: %v", ErrInvalidDocument, err)
		}
		m, err := doc.toDomain()
		if err != nil {
			return domain.PurposeModel{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return m, nil
	}
	_, hasPurpose := top["purpose"]
	_, hasStakeholders := top["stakeholders"]
	if !hasPurpose || !hasStakeholders {
		return domain.PurposeModel{}, fmt.Errorf("%w: timelineData or purpose and stakeholders are required", ErrInvalidDocument)
	}
	var legacy PartitionDocument
	if err := json.Unmarshal(data, &legacy); err != nil {
		return domain.PurposeModel{}, fmt.Errorf("%w: decode json: %v", ErrInvalidDocument, err)
	}
	current, err := legacy.toDomain("")
	if err != nil {
		return domain.PurposeModel{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	m := base.Clone()
	if m.Timeline == nil {
		m = domain.NewPurposeModel()
	}
	m.Timeline[domain.SlotCurrent] = current
	m.Comparisons = map[string]domain.Partition{}
	m.ComparisonNames = []string{}
	m.SelectedComparison = ""
	m.CurrentSlot = domain.SlotCurrent
	m.Mode = domain.ModeTimeline
	return m, nil
}

// toDomain builds a model, filling absent fields with defaults.
func (d PurposeDocument) toDomain() (domain.PurposeModel, error) {
	m := domain.NewPurposeModel()
	for key, p := range d.TimelineData {
		slot, err := domain.ParseTimelineSlot(key)
		if err != nil {
			return domain.PurposeModel{}, fmt.Errorf("timelineData[%q]: %w", key, err)
		}
		partition, err := p.toDomain(fmt.Sprintf("timelineData[%q].", key))
		if err != nil {
			return domain.PurposeModel{}, err
		}
		m.Timeline[slot] = partition
	}
	if strings.TrimSpace(d.CurrentTimeline) != "" {
		slot, err := domain.ParseTimelineSlot(d.CurrentTimeline)
		if err != nil {
			return domain.PurposeModel{}, fmt.Errorf("currentTimeline: %w", err)
		}
		m.CurrentSlot = slot
	}
	if strings.TrimSpace(d.CurrentMode) != "" {
		mode, err := domain.ParseMode(d.CurrentMode)
		if err != nil {
			return domain.PurposeModel{}, fmt.Errorf("currentMode: %w", err)
		}
		m.Mode = mode
	}
	for i, raw := range d.ComparisonList {
		name, err := m.AddComparison(raw)
		if err != nil {
			return domain.PurposeModel{}, fmt.Errorf("comparisonList[%d]: %w", i, err)
		}
		if p, ok := d.ComparisonData[name]; ok {
			partition, err := p.toDomain(fmt.Sprintf("comparisonData[%q].", name))
			if err != nil {
				return domain.PurposeModel{}, err
			}
			m.Comparisons[name] = partition
		}
	}
	m.SelectedComparison = ""
	if selected := strings.TrimSpace(d.SelectedComparison); selected != "" {
		if err := m.SelectComparison(selected); err != nil {
			return domain.PurposeModel{}, fmt.Errorf("selectedComparison: %w", err)
		}
	}
	return m, nil
}

// toDomain builds one partition; prefix locates errors in the document.
func (p PartitionDocument) toDomain(prefix string) (domain.Partition, error) {
	if p.Purpose == nil {
		return domain.Partition{}, fmt.Errorf("%spurpose is required", prefix)
	}
	purpose, err := domain.NewPurpose(p.Purpose.Title, p.Purpose.Description)
	if err != nil {
		return domain.Partition{}, fmt.Errorf("%spurpose: %w", prefix, err)
	}
	out := domain.NewPartition(purpose)
	seen := map[string]struct{}{}
	for i, s := range p.Stakeholders {
		if err := s.validate(); err != nil {
			return domain.Partition{}, fmt.Errorf("%sstakeholders[%d].%v", prefix, i, err)
		}
		category, err := domain.ParseStakeholderCategory(s.Category)
		if err != nil {
			category = domain.StakeholderCompany
		}
		layer, err := domain.ParseLayer(s.Layer)
		if err != nil {
			layer = domain.LayerSupporting
		}
		stakeholder, err := domain.NewStakeholder(s.ID, s.Name, s.Role, s.Goal, category, layer)
		if err != nil {
			return domain.Partition{}, fmt.Errorf("%sstakeholders[%d]: %w", prefix, i, err)
		}
		if _, dup := seen[stakeholder.ID]; dup {
			return domain.Partition{}, fmt.Errorf("%sstakeholders[%d]: duplicate id %q", prefix, i, stakeholder.ID)
		}
		seen[stakeholder.ID] = struct{}{}
		out.Stakeholders = append(out.Stakeholders, stakeholder)
	}
	return out, nil
}

func (s StakeholderDocument) validate() error {
	for _, field := range []struct{ name, value string }{
		{"id", s.ID}, {"name", s.Name}, {"role", s.Role}, {"goal", s.Goal}, {"category", s.Category}, {"layer", s.Layer},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}
	return nil
}
