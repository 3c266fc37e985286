// Package summary derives dashboard counts from a set of appointments.
package summary

import "clinic-schedule-api/internal/model"

// Compute counts the appointments by lifecycle bucket and risk level. Every
// risk level is present in the breakdown, zero-filled. Nothing is cached.
func Compute(appts []model.Appointment) model.Summary {
	s := model.Summary{RiskBreakdown: make(map[model.RiskLevel]int, len(model.RiskLevels))}
	for _, lvl := range model.RiskLevels {
		s.RiskBreakdown[lvl] = 0
	}
	for i := range appts {
		a := &appts[i]
		s.Total++
		switch a.Status {
		case model.StatusCancelled:
			s.Cancelled++
		case model.StatusCompleted:
			s.Completed++
		default:
			s.Active++
		}
		lvl := a.RiskLevel
		if _, ok := s.RiskBreakdown[lvl]; !ok {
			// unknown levels from legacy rows count as none so the breakdown still sums to total
			lvl = model.RiskNone
		}
		s.RiskBreakdown[lvl]++
	}
	return s
}
