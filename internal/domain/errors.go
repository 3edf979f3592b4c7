package domain

import "errors"

var (
	ErrInvalidID                  = errors.New("invalid id")
	ErrInvalidText                = errors.New("invalid text")
	ErrInvalidCategory            = errors.New("invalid category")
	ErrInvalidName                = errors.New("invalid name")
	ErrInvalidRole                = errors.New("invalid role")
	ErrInvalidGoal                = errors.New("invalid goal")
	ErrInvalidTitle               = errors.New("invalid title")
	ErrInvalidDescription         = errors.New("invalid description")
	ErrInvalidStakeholderCategory = errors.New("invalid stakeholder category")
	ErrInvalidLayer               = errors.New("invalid layer")
	ErrInvalidMode                = errors.New("invalid mode")
	ErrInvalidTimelineSlot        = errors.New("invalid timeline slot")
	ErrInvalidComparisonName      = errors.New("invalid comparison name")
	ErrInvalidActorType           = errors.New("invalid actor type")
	ErrInvalidImageFormat         = errors.New("invalid image format")
	ErrTooLong                    = errors.New("value too long")
	ErrDuplicateID                = errors.New("duplicate id")

	ErrSelfConnection      = errors.New("cannot connect a card to itself")
	ErrWrongDirection      = errors.New("connections must run left to right")
	ErrNotAdjacent         = errors.New("connections must join adjacent categories")
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrLastStage           = errors.New("cannot connect from the last stage")

	ErrItemNotFound        = errors.New("item not found")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrStakeholderNotFound = errors.New("stakeholder not found")
	ErrComparisonNotFound  = errors.New("comparison not found")

	ErrDuplicateComparison  = errors.New("comparison already exists")
	ErrNoComparisonSelected = errors.New("no comparison selected")
)
