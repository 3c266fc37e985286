package handler_test

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "clinic-schedule-api/api/schedule/v1"
	"clinic-schedule-api/internal/events"
	"clinic-schedule-api/internal/handler"
	"clinic-schedule-api/internal/identity"
	"clinic-schedule-api/internal/lifecycle"
	"clinic-schedule-api/internal/middleware"
	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/store/sqlite"
)

const secret = "handler-test-secret"

type env struct {
	h   *handler.Handler
	st  *sqlite.Store
	rec *events.Recorder
}

func setup(t *testing.T) *env {
	t.Helper()
	st, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "handler.db"))
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(st.Close)

	rec := &events.Recorder{}
	dir := identity.New(st, nil)
	eng := lifecycle.New(st, dir, rec, nil)
	return &env{h: handler.New(eng, dir, st, secret, nil), st: st, rec: rec}
}

func register(t *testing.T, h *handler.Handler, name string, role model.Role) *pb.AuthResponse {
	t.Helper()
	email := fmt.Sprintf("%s-%s@clinic.test", strings.ReplaceAll(strings.ToLower(name), " ", "."), uuid.NewString()[:8])
	rr, err := h.Register(context.Background(), &pb.RegisterRequest{
		FullName: name, Email: email, Password: "testpass123", Role: string(role),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return rr
}

func as(u *pb.AuthResponse) context.Context {
	return middleware.WithPrincipal(context.Background(), model.Principal{ID: u.UserID, Role: model.Role(u.Role)})
}

func code(err error) codes.Code {
	s, _ := status.FromError(err)
	return s.Code()
}

func reason(err error) string {
	s, _ := status.FromError(err)
	for _, d := range s.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.Reason
		}
	}
	return ""
}

func book(t *testing.T, h *handler.Handler, ctx context.Context, patientID *string) *pb.Appointment {
	t.Helper()
	cr, err := h.CreateAppointment(ctx, &pb.CreateAppointmentRequest{
		PatientName:     "Walk In",
		ProviderName:    "Dr. Emilia Wong",
		PatientUserID:   patientID,
		AppointmentTime: "2030-05-01T10:30:00-04:00",
		Reason:          "Annual physical",
		Location:        "Clinic A",
		Channel:         "in-person",
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return cr.Appointment
}

// ----- auth -----

func TestRegister(t *testing.T) {
	e := setup(t)
	rr := register(t, e.h, "Jordan Carter", model.RolePatient)
	if rr.UserID == "" || rr.AccessToken == "" || rr.RefreshToken == "" {
		t.Fatalf("incomplete auth response: %+v", rr)
	}
	if rr.Role != "patient" || rr.FullName != "Jordan Carter" {
		t.Errorf("got role %q name %q", rr.Role, rr.FullName)
	}
	if _, err := time.Parse(time.RFC3339, rr.ExpiresAt); err != nil {
		t.Errorf("expires_at: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	e := setup(t)
	tests := []struct {
		name string
		req  *pb.RegisterRequest
	}{
		{"bad role", &pb.RegisterRequest{FullName: "Some One", Email: "a@b.com", Password: "testpass123", Role: "admin"}},
		{"short password", &pb.RegisterRequest{FullName: "Some One", Email: "a@b.com", Password: "short", Role: "patient"}},
		{"bad email", &pb.RegisterRequest{FullName: "Some One", Email: "not-an-email", Password: "testpass123", Role: "patient"}},
		{"short name", &pb.RegisterRequest{FullName: "X", Email: "a@b.com", Password: "testpass123", Role: "provider"}},
		{"password too long", &pb.RegisterRequest{FullName: "Some One", Email: "a@b.com", Password: strings.Repeat("p", 100), Role: "patient"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.h.Register(context.Background(), tt.req)
			if code(err) != codes.InvalidArgument {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	e := setup(t)
	_, err := e.h.Register(context.Background(), &pb.RegisterRequest{
		FullName: "First One", Email: "dup@clinic.test", Password: "testpass123", Role: "patient",
	})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err = e.h.Register(context.Background(), &pb.RegisterRequest{
		FullName: "Second One", Email: "DUP@Clinic.test", Password: "testpass123", Role: "provider",
	})
	if code(err) != codes.AlreadyExists {
		t.Errorf("expected AlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	e := setup(t)
	_, err := e.h.Register(context.Background(), &pb.RegisterRequest{
		FullName: "Dr. Emilia Wong", Email: "emilia@clinic.test", Password: "provider123", Role: "provider",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	lr, err := e.h.Login(context.Background(), &pb.LoginRequest{Email: "Emilia@clinic.test", Password: "provider123", Role: "provider"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if lr.FullName != "Dr. Emilia Wong" || lr.AccessToken == "" {
		t.Errorf("unexpected login response %+v", lr)
	}

	bad := []*pb.LoginRequest{
		{Email: "emilia@clinic.test", Password: "wrong-pass", Role: "provider"},
		{Email: "emilia@clinic.test", Password: "provider123", Role: "patient"},
		{Email: "nobody@clinic.test", Password: "provider123", Role: "provider"},
	}
	for _, req := range bad {
		if _, err := e.h.Login(context.Background(), req); code(err) != codes.Unauthenticated {
			t.Errorf("%+v: expected Unauthenticated, got %v", req, err)
		}
	}
	if _, err := e.h.Login(context.Background(), &pb.LoginRequest{Email: "emilia@clinic.test"}); code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	e := setup(t)
	rr := register(t, e.h, "Ava Mitchell", model.RolePatient)

	next, err := e.h.Refresh(context.Background(), &pb.RefreshRequest{RefreshToken: rr.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == rr.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if next.UserID != rr.UserID || next.Role != "patient" {
		t.Errorf("unexpected identity %+v", next)
	}

	// replaying the old token revokes the whole family
	if _, err := e.h.Refresh(context.Background(), &pb.RefreshRequest{RefreshToken: rr.RefreshToken}); code(err) != codes.Unauthenticated {
		t.Fatalf("expected reuse rejection, got %v", err)
	}
	if _, err := e.h.Refresh(context.Background(), &pb.RefreshRequest{RefreshToken: next.RefreshToken}); code(err) != codes.Unauthenticated {
		t.Errorf("expected rotated token to be revoked, got %v", err)
	}
	if _, err := e.h.Refresh(context.Background(), &pb.RefreshRequest{RefreshToken: "unknown"}); code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	e := setup(t)
	rr := register(t, e.h, "Ava Mitchell", model.RolePatient)

	if _, err := e.h.Logout(as(rr), &pb.LogoutRequest{}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := e.h.Refresh(context.Background(), &pb.RefreshRequest{RefreshToken: rr.RefreshToken}); code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated after logout, got %v", err)
	}
}

func TestListProviders(t *testing.T) {
	e := setup(t)
	pat := register(t, e.h, "Jordan Carter", model.RolePatient)
	register(t, e.h, "Dr. Rishi Patel", model.RoleProvider)
	register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)

	lr, err := e.h.ListProviders(as(pat), &pb.ListProvidersRequest{})
	if err != nil {
		t.Fatalf("list providers: %v", err)
	}
	if len(lr.Providers) != 2 || lr.Providers[0].FullName != "Dr. Emilia Wong" {
		t.Errorf("unexpected providers %+v", lr.Providers)
	}
}

// ----- appointments -----

func TestCreateAppointment(t *testing.T) {
	e := setup(t)
	pat := register(t, e.h, "Jordan Carter", model.RolePatient)
	prov := register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)

	a := book(t, e.h, as(pat), nil)
	if a.Status != "Scheduled" || a.RiskLevel != "none" {
		t.Errorf("status %s risk %s", a.Status, a.RiskLevel)
	}
	if a.AppointmentTime != "2030-05-01T14:30:00Z" {
		t.Errorf("time not normalised to UTC: %s", a.AppointmentTime)
	}
	if a.PatientUserID == nil || *a.PatientUserID != pat.UserID || a.PatientName != "Jordan Carter" {
		t.Errorf("patient not linked: %+v", a)
	}
	if a.ProviderUserID == nil || *a.ProviderUserID != prov.UserID {
		t.Errorf("provider not resolved by name: %+v", a)
	}
	if got := e.rec.Types(); len(got) != 1 || got[0] != events.AppointmentCreated {
		t.Errorf("events %v", got)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	e := setup(t)
	prov := register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)

	tests := []struct {
		name string
		req  *pb.CreateAppointmentRequest
	}{
		{"no offset", &pb.CreateAppointmentRequest{PatientName: "P Q", ProviderName: "Dr", AppointmentTime: "2030-05-01T10:30:00", Reason: "checkup", Location: "A", Channel: "virtual"}},
		{"garbage time", &pb.CreateAppointmentRequest{PatientName: "P Q", ProviderName: "Dr", AppointmentTime: "tomorrow", Reason: "checkup", Location: "A", Channel: "virtual"}},
		{"empty reason", &pb.CreateAppointmentRequest{PatientName: "P Q", ProviderName: "Dr", AppointmentTime: "2030-05-01T10:30:00Z", Location: "A", Channel: "virtual"}},
		{"bad channel", &pb.CreateAppointmentRequest{PatientName: "P Q", ProviderName: "Dr", AppointmentTime: "2030-05-01T10:30:00Z", Reason: "checkup", Location: "A", Channel: "fax"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.h.CreateAppointment(as(prov), tt.req)
			if code(err) != codes.InvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
			s, _ := status.FromError(err)
			found := false
			for _, d := range s.Details() {
				_, found = d.(*errdetails.BadRequest)
			}
			if !found {
				t.Error("missing BadRequest detail")
			}
		})
	}
}

func TestStatusTransitionsOverRPC(t *testing.T) {
	e := setup(t)
	prov := register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)
	ctx := as(prov)
	a := book(t, e.h, ctx, nil)

	ur, err := e.h.UpdateAppointment(ctx, &pb.UpdateAppointmentRequest{ID: a.ID, Status: model.Ptr("CheckedIn")})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if ur.Appointment.Status != "CheckedIn" {
		t.Errorf("status %s", ur.Appointment.Status)
	}

	_, err = e.h.UpdateAppointment(ctx, &pb.UpdateAppointmentRequest{ID: a.ID, Status: model.Ptr("Scheduled")})
	if code(err) != codes.FailedPrecondition || reason(err) != handler.ReasonInvalidTransition {
		t.Errorf("expected INVALID_TRANSITION, got %v", err)
	}

	_, err = e.h.UpdateAppointment(ctx, &pb.UpdateAppointmentRequest{ID: a.ID, Status: model.Ptr("Lost")})
	if code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument for unknown status, got %v", err)
	}
}

func TestUpdateOtherPatientsAppointment(t *testing.T) {
	e := setup(t)
	owner := register(t, e.h, "Jordan Carter", model.RolePatient)
	other := register(t, e.h, "Ava Mitchell", model.RolePatient)
	a := book(t, e.h, as(owner), nil)

	reqs := []*pb.UpdateAppointmentRequest{
		{ID: a.ID},
		{ID: a.ID, Reason: model.Ptr("hijack")},
		{ID: a.ID, AppointmentTime: model.Ptr("not a time")},
		{ID: a.ID, Status: model.Ptr("Nope")},
	}
	for _, req := range reqs {
		if _, err := e.h.UpdateAppointment(as(other), req); code(err) != codes.PermissionDenied {
			t.Errorf("%+v: expected PermissionDenied, got %v", req, err)
		}
	}
	if _, err := e.h.RescheduleAppointment(as(other), &pb.RescheduleAppointmentRequest{ID: a.ID, AppointmentTime: "bad"}); code(err) != codes.PermissionDenied {
		t.Errorf("reschedule: expected PermissionDenied, got %v", err)
	}
	if _, err := e.h.GetAppointment(as(other), &pb.GetAppointmentRequest{ID: a.ID}); code(err) != codes.NotFound {
		t.Errorf("get: expected NotFound, got %v", err)
	}

	// the owner gets the parse error
	if _, err := e.h.UpdateAppointment(as(owner), reqs[2]); code(err) != codes.InvalidArgument {
		t.Errorf("owner: expected InvalidArgument, got %v", err)
	}
}

func TestDeleteAppointment(t *testing.T) {
	e := setup(t)
	prov := register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)
	ctx := as(prov)
	a := book(t, e.h, ctx, nil)

	_, err := e.h.DeleteAppointment(ctx, &pb.DeleteAppointmentRequest{ID: a.ID})
	if code(err) != codes.FailedPrecondition || reason(err) != handler.ReasonInvalidState {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}

	if _, err := e.h.UpdateAppointment(ctx, &pb.UpdateAppointmentRequest{ID: a.ID, Status: model.Ptr("Completed")}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := e.h.DeleteAppointment(ctx, &pb.DeleteAppointmentRequest{ID: a.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.h.GetAppointment(ctx, &pb.GetAppointmentRequest{ID: a.ID}); code(err) != codes.NotFound {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if _, err := e.h.DeleteAppointment(ctx, &pb.DeleteAppointmentRequest{ID: a.ID}); code(err) != codes.NotFound {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
	if _, err := e.h.DeleteAppointment(ctx, &pb.DeleteAppointmentRequest{}); code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument for empty id, got %v", err)
	}
}

func TestRescheduleAndNotes(t *testing.T) {
	e := setup(t)
	pat := register(t, e.h, "Jordan Carter", model.RolePatient)
	ctx := as(pat)
	a := book(t, e.h, ctx, nil)

	rr, err := e.h.RescheduleAppointment(ctx, &pb.RescheduleAppointmentRequest{ID: a.ID, AppointmentTime: "2030-06-02T09:00:00+02:00"})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if rr.Appointment.Status != "Rescheduled" || rr.Appointment.AppointmentTime != "2030-06-02T07:00:00Z" {
		t.Errorf("unexpected %+v", rr.Appointment)
	}

	nr, err := e.h.AppendNote(ctx, &pb.AppendNoteRequest{ID: a.ID, Text: "running late"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if nr.Appointment.Notes == nil || !strings.HasSuffix(*nr.Appointment.Notes, "] patient: running late") {
		t.Errorf("notes %v", nr.Appointment.Notes)
	}
	if _, err := e.h.AppendNote(ctx, &pb.AppendNoteRequest{ID: a.ID, Text: " "}); code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestListAndSummaryScopedToPatient(t *testing.T) {
	e := setup(t)
	pat := register(t, e.h, "Jordan Carter", model.RolePatient)
	other := register(t, e.h, "Ava Mitchell", model.RolePatient)
	prov := register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)

	mine := book(t, e.h, as(pat), nil)
	book(t, e.h, as(other), nil)
	book(t, e.h, as(prov), nil)

	lr, err := e.h.ListAppointments(as(pat), &pb.ListAppointmentsRequest{Filter: pb.Filter{PatientID: other.UserID}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lr.Appointments) != 1 || lr.Appointments[0].ID != mine.ID {
		t.Errorf("patient saw %d appointments", len(lr.Appointments))
	}

	all, err := e.h.ListAppointments(as(prov), &pb.ListAppointmentsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Appointments) != 3 {
		t.Errorf("provider saw %d appointments", len(all.Appointments))
	}

	if _, err := e.h.UpdateAppointment(as(prov), &pb.UpdateAppointmentRequest{ID: all.Appointments[2].ID, RiskLevel: model.Ptr("HIGH")}); err != nil {
		t.Fatalf("set risk: %v", err)
	}
	sr, err := e.h.Summary(as(prov), &pb.SummaryRequest{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sr.Total != 3 || sr.Active != 3 {
		t.Errorf("summary %+v", sr)
	}
	for _, k := range []string{"none", "low", "medium", "high"} {
		if _, ok := sr.RiskBreakdown[k]; !ok {
			t.Errorf("risk key %q missing", k)
		}
	}
	if sr.RiskBreakdown["high"] != 1 || sr.RiskBreakdown["none"] != 2 {
		t.Errorf("risk %v", sr.RiskBreakdown)
	}

	ps, err := e.h.Summary(as(pat), &pb.SummaryRequest{})
	if err != nil {
		t.Fatalf("patient summary: %v", err)
	}
	if ps.Total != 1 {
		t.Errorf("patient summary total %d", ps.Total)
	}
}

func TestMissingPrincipal(t *testing.T) {
	e := setup(t)
	if _, err := e.h.ListAppointments(context.Background(), &pb.ListAppointmentsRequest{}); code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	e := setup(t)
	prov := register(t, e.h, "Dr. Emilia Wong", model.RoleProvider)
	e.st.Close()

	_, err := e.h.ListAppointments(as(prov), &pb.ListAppointmentsRequest{})
	if code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
	if s, _ := status.FromError(err); s.Message() != "internal error" {
		t.Errorf("leaked message %q", s.Message())
	}
}

// ----- end to end over gRPC -----

func TestEndToEnd(t *testing.T) {
	e := setup(t)

	lis := bufconn.Listen(1 << 20)
	rl := middleware.NewRateLimiter(100, 100)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.NewMetrics(prometheus.NewRegistry()).Interceptor(),
		middleware.RateLimit(rl),
		middleware.Auth(secret),
	))
	pb.RegisterScheduleServiceServer(srv, e.h)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	client := pb.NewScheduleServiceClient(conn)
	ctx := context.Background()

	rr, err := client.Register(ctx, &pb.RegisterRequest{
		FullName: "Dr. Emilia Wong", Email: "emilia@clinic.test", Password: "provider123", Role: "provider",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := client.ListAppointments(ctx, &pb.ListAppointmentsRequest{}); code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without token, got %v", err)
	}

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+rr.AccessToken)
	cr, err := client.CreateAppointment(authed, &pb.CreateAppointmentRequest{
		PatientName: "Walk In", ProviderName: "Dr. Emilia Wong", AppointmentTime: "2030-05-01T14:30:00Z",
		Reason: "Blood work", Location: "Lab 2", Channel: "in-person",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cr.Appointment.ProviderUserID == nil || *cr.Appointment.ProviderUserID != rr.UserID {
		t.Errorf("provider not linked: %+v", cr.Appointment)
	}

	_, err = client.UpdateAppointment(authed, &pb.UpdateAppointmentRequest{ID: cr.Appointment.ID, Status: model.Ptr("Cancelled")})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = client.UpdateAppointment(authed, &pb.UpdateAppointmentRequest{ID: cr.Appointment.ID, Status: model.Ptr("Scheduled")})
	if code(err) != codes.FailedPrecondition || reason(err) != handler.ReasonInvalidTransition {
		t.Errorf("expected INVALID_TRANSITION over the wire, got %v", err)
	}

	sr, err := client.Summary(authed, &pb.SummaryRequest{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sr.Total != 1 || sr.Cancelled != 1 || len(sr.RiskBreakdown) != 4 {
		t.Errorf("summary %+v", sr)
	}
}
