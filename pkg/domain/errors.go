package domain

import "errors"

// Build-time errors. They abort startup.
var (
	// ErrDuplicateAddress is returned when an address is registered twice.
	ErrDuplicateAddress = errors.New("duplicate intent address")

	// ErrDuplicateLiteral is returned when two nodes claim the same literal text.
	ErrDuplicateLiteral = errors.New("duplicate literal text")

	// ErrMissingParent is returned when a child references a parent that is not registered.
	ErrMissingParent = errors.New("parent address not registered")

	// ErrInvalidVersion is returned for definitions that are not in the classifier-capable format.
	ErrInvalidVersion = errors.New("unsupported intent schema version")

	// ErrInvalidDefinition is returned for malformed definitions (empty or dotted segments, unknown policies).
	ErrInvalidDefinition = errors.New("invalid intent definition")

	// ErrMissingUnknown is returned when the tree is frozen without the "unknown" node.
	ErrMissingUnknown = errors.New("the \"unknown\" intent must be registered")

	// ErrRegistryFrozen is returned when registering into a frozen registry.
	ErrRegistryFrozen = errors.New("intent registry is frozen")

	// ErrInvalidSchedule is returned for schedules without an action, with an unknown
	// type, or timers without a positive interval.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrDuplicateSchedule is returned when two schedules share a name.
	ErrDuplicateSchedule = errors.New("duplicate schedule name")

	// ErrAlreadyTrained is returned when training is finalized twice.
	ErrAlreadyTrained = errors.New("training already finalized")
)

// Runtime errors. They drop the triggering message but never stop the process.
var (
	// ErrUnknownAddress is returned when an address is not present in the registry.
	ErrUnknownAddress = errors.New("unknown intent address")

	// ErrAliasCycle is returned when following call targets revisits an address.
	ErrAliasCycle = errors.New("alias cycle detected")

	// ErrNotTrained is returned when classification is attempted before training.
	ErrNotTrained = errors.New("classifier not trained")

	// ErrMissingAction is returned by action lookups for unbound names.
	// The dispatcher treats it as a no-op.
	ErrMissingAction = errors.New("action not registered")
)
