package domain

import (
	"strings"
	"time"
)

// DiagramKind identifies which diagram a change touched.
type DiagramKind string

// DiagramKind values.
const (
	DiagramLogic   DiagramKind = "logic"
	DiagramPurpose DiagramKind = "purpose"
)

// ChangeOperation describes a persisted activity operation for a diagram.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate ChangeOperation = "create"
	ChangeOperationUpdate ChangeOperation = "update"
	ChangeOperationDelete ChangeOperation = "delete"
	ChangeOperationSelect ChangeOperation = "select"
	ChangeOperationReset  ChangeOperation = "reset"
	ChangeOperationImport ChangeOperation = "import"
)

// ActorType identifies who performed a mutation.
type ActorType string

// ActorType values.
const (
	ActorTypeUser   ActorType = "user"
	ActorTypeAgent  ActorType = "agent"
	ActorTypeSystem ActorType = "system"
)

// NormalizeActorType lower-cases and validates an actor type; empty means user.
func NormalizeActorType(raw ActorType) (ActorType, error) {
	at := ActorType(strings.ToLower(strings.TrimSpace(string(raw))))
	switch at {
	case "":
		return ActorTypeUser, nil
	case ActorTypeUser, ActorTypeAgent, ActorTypeSystem:
		return at, nil
	default:
		return "", ErrInvalidActorType
	}
}

// ChangeEvent represents a single activity-log entry for a diagram.
type ChangeEvent struct {
	ID         int64
	Diagram    DiagramKind
	SubjectID  string
	Operation  ChangeOperation
	ActorID    string
	ActorType  ActorType
	Metadata   map[string]string
	OccurredAt time.Time
}
