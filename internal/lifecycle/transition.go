package lifecycle

import (
	"fmt"

	"clinic-schedule-api/internal/model"
)

var activeTargets = []model.Status{
	model.StatusRescheduled,
	model.StatusCheckedIn,
	model.StatusCancelled,
	model.StatusCompleted,
}

// transitions lists every permitted status edge. Completed and Cancelled have
// no outgoing edges.
var transitions = map[model.Status][]model.Status{
	model.StatusScheduled:   activeTargets,
	model.StatusRescheduled: activeTargets,
	model.StatusCheckedIn:   {model.StatusCompleted, model.StatusCancelled},
	model.StatusCompleted:   nil,
	model.StatusCancelled:   nil,
}

func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s model.Status) bool {
	return s == model.StatusCompleted || s == model.StatusCancelled
}

// Targets returns the statuses reachable from s.
func Targets(s model.Status) []model.Status {
	return append([]model.Status(nil), transitions[s]...)
}

func checkTransition(from, to model.Status) error {
	if CanTransition(from, to) {
		return nil
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: appointment is %s and can no longer change status", model.ErrInvalidTransition, from)
	}
	return fmt.Errorf("%w: cannot move appointment from %s to %s", model.ErrInvalidTransition, from, to)
}
