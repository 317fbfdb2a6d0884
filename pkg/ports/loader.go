package ports

import "github.com/aretw0/switchboard/pkg/domain"

// IntentSource produces intent definitions.
// It decouples the router from where trees are declared (YAML files, Go DSL, tests).
type IntentSource interface {
	Definitions() ([]domain.Definition, error)
}

// ScheduleSource is implemented by intent sources that also declare scheduled actions.
type ScheduleSource interface {
	Schedules() ([]domain.Schedule, error)
}
