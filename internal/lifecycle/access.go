package lifecycle

import (
	"fmt"

	"clinic-schedule-api/internal/model"
)

func validPrincipal(p model.Principal) error {
	if p.ID == "" || !p.Role.Valid() {
		return fmt.Errorf("%w: missing principal", model.ErrAuth)
	}
	return nil
}

// canWrite: patients own records through PatientUserID, providers through
// ProviderUserID, and any provider may edit an unassigned record.
func canWrite(p model.Principal, a *model.Appointment) bool {
	switch p.Role {
	case model.RolePatient:
		return a.PatientUserID != nil && *a.PatientUserID == p.ID
	case model.RoleProvider:
		return a.ProviderUserID == nil || *a.ProviderUserID == p.ID
	}
	return false
}

func authorizeWrite(p model.Principal, a *model.Appointment) error {
	if !canWrite(p, a) {
		return fmt.Errorf("%w: appointment %s belongs to someone else", model.ErrForbidden, a.ID)
	}
	return nil
}

func canRead(p model.Principal, a *model.Appointment) bool {
	if p.Role == model.RoleProvider {
		return true
	}
	return a.PatientUserID != nil && *a.PatientUserID == p.ID
}

// scope pins patient queries to the caller. Client supplied patient ids are
// ignored for patients.
func scope(p model.Principal, f model.Filter) model.Filter {
	if p.Role == model.RolePatient {
		f.PatientID = p.ID
	}
	return f
}
