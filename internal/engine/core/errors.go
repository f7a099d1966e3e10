package core

import "errors"

// Geometry errors.
var (
	ErrOutOfBounds  = errors.New("cell out of bounds")
	ErrInvalidCoord = errors.New("invalid coordinate")
)

// Occupancy errors.
var (
	ErrNoUnitAt         = errors.New("no unit at cell")
	ErrCellOccupied     = errors.New("cell already occupied")
	ErrCellImpassable   = errors.New("cell is impassable terrain")
	ErrCellOutOfBounds  = ErrOutOfBounds
)

// Ownership errors.
var (
	ErrNotYourUnit = errors.New("unit does not belong to the side to move")
)

// Movement errors.
var (
	ErrAlreadyMoved     = errors.New("unit already moved this turn")
	ErrOutOfMoveBudget  = errors.New("no moves remaining this turn")
	ErrOutOfRange       = errors.New("destination exceeds unit movement range")
	ErrMustRetreatFirst = errors.New("side has an unresolved pending retreat")
	ErrMovementBlocked  = errors.New("mounted unit's path is blocked before reaching destination")
	ErrIllegalTerrain   = errors.New("destination terrain cannot be entered")
	ErrOccupiedByFriendly = errors.New("destination occupied by a friendly unit")
)

// Combat errors.
var (
	ErrNoLineToTarget    = errors.New("no attacking line reaches target")
	ErrTargetOutOfRange  = errors.New("target is out of range of any attacker")
	ErrNoAttacksLeft     = errors.New("no attacks remaining this turn")
	ErrAlreadyAttacked   = ErrNoAttacksLeft
	ErrNoEnemyAtTarget   = errors.New("no enemy unit at target cell")
)

// Phase errors.
var (
	ErrWrongPhase      = errors.New("operation not allowed in current phase")
	ErrTurnNotEndable  = errors.New("turn cannot end: attack slot not yet resolved")
)

// Parse errors (KFEN codec is an external collaborator; these sentinels are
// exposed here so that collaborator can report failures uniformly).
var (
	ErrMalformedKFEN = errors.New("malformed KFEN string")
	ErrBadMoveToken  = errors.New("malformed move token")
)
