package lifecycle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"clinic-schedule-api/internal/model"
)

const (
	minReasonLen = 3
	maxReasonLen = 180
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrValidation}, args...)...)
}

func checkReason(r string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(r))
	if n < minReasonLen || n > maxReasonLen {
		return invalid("reason must be %d-%d characters", minReasonLen, maxReasonLen)
	}
	return nil
}

func normalize(in model.NewAppointment) model.NewAppointment {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.ProviderName = strings.TrimSpace(in.ProviderName)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Location = strings.TrimSpace(in.Location)
	in.Channel = model.Channel(strings.ToLower(strings.TrimSpace(string(in.Channel))))
	in.PatientUserID = trimmedOrNil(in.PatientUserID)
	in.ProviderUserID = trimmedOrNil(in.ProviderUserID)
	in.Notes = trimmedOrNil(in.Notes)
	return in
}

func checkNew(in model.NewAppointment) error {
	switch {
	case in.PatientName == "":
		return invalid("patient name is required")
	case in.ProviderName == "":
		return invalid("provider name is required")
	case in.AppointmentTime.IsZero():
		return invalid("appointment time is required")
	case in.Location == "":
		return invalid("location is required")
	case in.Channel == "":
		return invalid("channel is required")
	case !in.Channel.Valid():
		return invalid("unknown channel %q", in.Channel)
	}
	return checkReason(in.Reason)
}

// checkPatch validates patch values once ownership is established.
func checkPatch(p model.Principal, patch model.Patch) error {
	if p.Role == model.RolePatient &&
		(patch.RiskLevel != nil || patch.PatientUserID != nil || patch.ProviderUserID != nil) {
		return fmt.Errorf("%w: patients cannot change risk level or assignment", model.ErrForbidden)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return invalid("unknown status %q", *patch.Status)
	}
	if patch.RiskLevel != nil && !patch.RiskLevel.Valid() {
		return invalid("unknown risk level %q", *patch.RiskLevel)
	}
	if patch.AppointmentTime != nil && patch.AppointmentTime.IsZero() {
		return invalid("appointment time is required")
	}
	if patch.Reason != nil {
		if err := checkReason(*patch.Reason); err != nil {
			return err
		}
	}
	if patch.PatientUserID != nil && strings.TrimSpace(*patch.PatientUserID) == "" {
		return invalid("patient id must not be blank")
	}
	if patch.ProviderUserID != nil && strings.TrimSpace(*patch.ProviderUserID) == "" {
		return invalid("provider id must not be blank")
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
