package domain

import (
	"fmt"
	"time"
)

// ScheduleType tells when a scheduled action runs.
type ScheduleType string

const (
	// ScheduleTimer runs the action every Interval.
	ScheduleTimer ScheduleType = "timer"
	// ScheduleOneShot runs the action once, when the schedules start.
	ScheduleOneShot ScheduleType = "one-shot"
)

// Schedule binds an action to time instead of to a message.
// Scheduled actions run as the sender "scheduler:<name>" on the "scheduler" channel.
type Schedule struct {
	Name     string        `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Type     ScheduleType  `json:"type" yaml:"type" mapstructure:"type"`
	Action   string        `json:"action" yaml:"action" mapstructure:"action"`
	Interval time.Duration `json:"interval,omitempty" yaml:"interval,omitempty" mapstructure:"interval"`
}

// Normalize fills the name from the action.
func (s Schedule) Normalize() Schedule {
	if s.Name == "" {
		s.Name = s.Action
	}
	return s
}

// Sender is the conversation the action runs in.
func (s Schedule) Sender() string {
	return "scheduler:" + s.Normalize().Name
}

// Validate checks the action, type and interval.
func (s Schedule) Validate() error {
	if s.Action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidSchedule)
	}
	switch s.Type {
	case ScheduleTimer:
		if s.Interval <= 0 {
			return fmt.Errorf("%w: timer %q needs a positive interval", ErrInvalidSchedule, s.Normalize().Name)
		}
	case ScheduleOneShot:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSchedule, s.Type)
	}
	return nil
}
