package schedulev1

// Timestamps are RFC 3339 strings. Responses are always rendered in UTC.

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type ListProvidersRequest struct{}

type ListProvidersResponse struct {
	Providers []*User `json:"providers"`
}

type Appointment struct {
	ID              string  `json:"id"`
	PatientName     string  `json:"patient_name"`
	ProviderName    string  `json:"provider_name"`
	PatientUserID   *string `json:"patient_user_id,omitempty"`
	ProviderUserID  *string `json:"provider_user_id,omitempty"`
	AppointmentTime string  `json:"appointment_time"`
	Reason          string  `json:"reason"`
	Location        string  `json:"location"`
	Channel         string  `json:"channel"`
	Status          string  `json:"status"`
	RiskLevel       string  `json:"risk_level"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type AppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type CreateAppointmentRequest struct {
	PatientName     string  `json:"patient_name"`
	ProviderName    string  `json:"provider_name"`
	PatientUserID   *string `json:"patient_user_id,omitempty"`
	ProviderUserID  *string `json:"provider_user_id,omitempty"`
	AppointmentTime string  `json:"appointment_time"`
	Reason          string  `json:"reason"`
	Location        string  `json:"location"`
	Channel         string  `json:"channel"`
	Notes           *string `json:"notes,omitempty"`
}

type GetAppointmentRequest struct {
	ID string `json:"id"`
}

// Filter fields are ANDed; empty fields match everything.
type Filter struct {
	Status     string `json:"status,omitempty"`
	RiskLevel  string `json:"risk_level,omitempty"`
	PatientID  string `json:"patient_id,omitempty"`
	ProviderID string `json:"provider_id,omitempty"`
}

type ListAppointmentsRequest struct {
	Filter
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

// UpdateAppointmentRequest is a partial update: absent (or null) fields are
// left untouched.
type UpdateAppointmentRequest struct {
	ID              string  `json:"id"`
	AppointmentTime *string `json:"appointment_time,omitempty"`
	Status          *string `json:"status,omitempty"`
	RiskLevel       *string `json:"risk_level,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	PatientUserID   *string `json:"patient_user_id,omitempty"`
	ProviderUserID  *string `json:"provider_user_id,omitempty"`
}

type RescheduleAppointmentRequest struct {
	ID              string `json:"id"`
	AppointmentTime string `json:"appointment_time"`
}

type AppendNoteRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type DeleteAppointmentRequest struct {
	ID string `json:"id"`
}

type DeleteAppointmentResponse struct{}

type SummaryRequest struct {
	Filter
}

type SummaryResponse struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	Cancelled     int            `json:"cancelled"`
	Completed     int            `json:"completed"`
	RiskBreakdown map[string]int `json:"risk_breakdown"`
}
