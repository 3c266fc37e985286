package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-schedule-api/api/schedule/v1"
	"clinic-schedule-api/internal/model"
)

func (h *Handler) CreateAppointment(ctx context.Context, req *pb.CreateAppointmentRequest) (*pb.AppointmentResponse, error) {
	const method = "CreateAppointment"
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	at, err := model.ParseInstant(req.AppointmentTime)
	if err != nil {
		return nil, h.toStatus(method, err)
	}

	a, err := h.engine.Create(ctx, p, model.NewAppointment{
		PatientName:     req.PatientName,
		ProviderName:    req.ProviderName,
		PatientUserID:   req.PatientUserID,
		ProviderUserID:  req.ProviderUserID,
		AppointmentTime: at,
		Reason:          req.Reason,
		Location:        req.Location,
		Channel:         model.Channel(req.Channel),
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(a)}, nil
}

func (h *Handler) GetAppointment(ctx context.Context, req *pb.GetAppointmentRequest) (*pb.AppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	a, err := h.engine.Get(ctx, p, req.ID)
	if err != nil {
		return nil, h.toStatus("GetAppointment", err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(a)}, nil
}

func (h *Handler) ListAppointments(ctx context.Context, req *pb.ListAppointmentsRequest) (*pb.ListAppointmentsResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	list, err := h.engine.List(ctx, p, toFilter(req.Filter))
	if err != nil {
		return nil, h.toStatus("ListAppointments", err)
	}
	out := make([]*pb.Appointment, len(list))
	for i := range list {
		out[i] = toProto(&list[i])
	}
	return &pb.ListAppointmentsResponse{Appointments: out}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *pb.UpdateAppointmentRequest) (*pb.AppointmentResponse, error) {
	const method = "UpdateAppointment"
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	patch := model.Patch{
		Notes:          req.Notes,
		Reason:         req.Reason,
		PatientUserID:  req.PatientUserID,
		ProviderUserID: req.ProviderUserID,
	}
	if req.Status != nil {
		patch.Status = model.Ptr(model.Status(strings.TrimSpace(*req.Status)))
	}
	if req.RiskLevel != nil {
		patch.RiskLevel = model.Ptr(model.RiskLevel(strings.ToLower(strings.TrimSpace(*req.RiskLevel))))
	}
	if req.AppointmentTime != nil {
		at, err := model.ParseInstant(*req.AppointmentTime)
		if err != nil {
			return nil, h.rejectPatch(ctx, method, p, req.ID, err)
		}
		patch.AppointmentTime = &at
	}

	a, err := h.engine.Update(ctx, p, req.ID, patch)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(a)}, nil
}

func (h *Handler) RescheduleAppointment(ctx context.Context, req *pb.RescheduleAppointmentRequest) (*pb.AppointmentResponse, error) {
	const method = "RescheduleAppointment"
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	at, err := model.ParseInstant(req.AppointmentTime)
	if err != nil {
		return nil, h.rejectPatch(ctx, method, p, req.ID, err)
	}
	a, err := h.engine.Reschedule(ctx, p, req.ID, at)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(a)}, nil
}

func (h *Handler) AppendNote(ctx context.Context, req *pb.AppendNoteRequest) (*pb.AppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	a, err := h.engine.AppendNote(ctx, p, req.ID, req.Text)
	if err != nil {
		return nil, h.toStatus("AppendNote", err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(a)}, nil
}

func (h *Handler) DeleteAppointment(ctx context.Context, req *pb.DeleteAppointmentRequest) (*pb.DeleteAppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := h.engine.Delete(ctx, p, req.ID); err != nil {
		return nil, h.toStatus("DeleteAppointment", err)
	}
	return &pb.DeleteAppointmentResponse{}, nil
}

func (h *Handler) Summary(ctx context.Context, req *pb.SummaryRequest) (*pb.SummaryResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	s, err := h.engine.Summarize(ctx, p, toFilter(req.Filter))
	if err != nil {
		return nil, h.toStatus("Summary", err)
	}
	risk := make(map[string]int, len(s.RiskBreakdown))
	for k, v := range s.RiskBreakdown {
		risk[string(k)] = v
	}
	return &pb.SummaryResponse{
		Total:         s.Total,
		Active:        s.Active,
		Cancelled:     s.Cancelled,
		Completed:     s.Completed,
		RiskBreakdown: risk,
	}, nil
}

// rejectPatch reports a malformed timestamp only to callers allowed to write
// the record; everyone else gets the ownership or lookup error.
func (h *Handler) rejectPatch(ctx context.Context, method string, p model.Principal, id string, parseErr error) error {
	if _, err := h.engine.Update(ctx, p, id, model.Patch{}); err != nil {
		return h.toStatus(method, err)
	}
	return h.toStatus(method, parseErr)
}

func toFilter(f pb.Filter) model.Filter {
	return model.Filter{
		Status:     model.Status(strings.TrimSpace(f.Status)),
		RiskLevel:  model.RiskLevel(strings.ToLower(strings.TrimSpace(f.RiskLevel))),
		PatientID:  strings.TrimSpace(f.PatientID),
		ProviderID: strings.TrimSpace(f.ProviderID),
	}
}

func toProto(a *model.Appointment) *pb.Appointment {
	return &pb.Appointment{
		ID:              a.ID,
		PatientName:     a.PatientName,
		ProviderName:    a.ProviderName,
		PatientUserID:   a.PatientUserID,
		ProviderUserID:  a.ProviderUserID,
		AppointmentTime: model.FormatInstant(a.AppointmentTime),
		Reason:          a.Reason,
		Location:        a.Location,
		Channel:         string(a.Channel),
		Status:          string(a.Status),
		RiskLevel:       string(a.RiskLevel),
		Notes:           a.Notes,
		CreatedAt:       model.FormatInstant(a.CreatedAt),
		UpdatedAt:       model.FormatInstant(a.UpdatedAt),
	}
}
