package schedulev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "schedule.v1.ScheduleService"

const (
	ScheduleService_Register_FullMethodName              = "/" + ServiceName + "/Register"
	ScheduleService_Login_FullMethodName                 = "/" + ServiceName + "/Login"
	ScheduleService_Refresh_FullMethodName               = "/" + ServiceName + "/Refresh"
	ScheduleService_Logout_FullMethodName                = "/" + ServiceName + "/Logout"
	ScheduleService_ListProviders_FullMethodName         = "/" + ServiceName + "/ListProviders"
	ScheduleService_CreateAppointment_FullMethodName     = "/" + ServiceName + "/CreateAppointment"
	ScheduleService_GetAppointment_FullMethodName        = "/" + ServiceName + "/GetAppointment"
	ScheduleService_ListAppointments_FullMethodName      = "/" + ServiceName + "/ListAppointments"
	ScheduleService_UpdateAppointment_FullMethodName     = "/" + ServiceName + "/UpdateAppointment"
	ScheduleService_RescheduleAppointment_FullMethodName = "/" + ServiceName + "/RescheduleAppointment"
	ScheduleService_AppendNote_FullMethodName            = "/" + ServiceName + "/AppendNote"
	ScheduleService_DeleteAppointment_FullMethodName     = "/" + ServiceName + "/DeleteAppointment"
	ScheduleService_Summary_FullMethodName               = "/" + ServiceName + "/Summary"
)

type ScheduleServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Refresh(context.Context, *RefreshRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ListProviders(context.Context, *ListProvidersRequest) (*ListProvidersResponse, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*AppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error)
	RescheduleAppointment(context.Context, *RescheduleAppointmentRequest) (*AppointmentResponse, error)
	AppendNote(context.Context, *AppendNoteRequest) (*AppointmentResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error)
	Summary(context.Context, *SummaryRequest) (*SummaryResponse, error)
}

// UnimplementedScheduleServiceServer can be embedded to stay compatible when
// methods are added.
type UnimplementedScheduleServiceServer struct{}

func unimplemented(m string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", m)
}

func (UnimplementedScheduleServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedScheduleServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedScheduleServiceServer) Refresh(context.Context, *RefreshRequest) (*AuthResponse, error) {
	return nil, unimplemented("Refresh")
}
func (UnimplementedScheduleServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedScheduleServiceServer) ListProviders(context.Context, *ListProvidersRequest) (*ListProvidersResponse, error) {
	return nil, unimplemented("ListProviders")
}
func (UnimplementedScheduleServiceServer) CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("CreateAppointment")
}
func (UnimplementedScheduleServiceServer) GetAppointment(context.Context, *GetAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("GetAppointment")
}
func (UnimplementedScheduleServiceServer) ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	return nil, unimplemented("ListAppointments")
}
func (UnimplementedScheduleServiceServer) UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("UpdateAppointment")
}
func (UnimplementedScheduleServiceServer) RescheduleAppointment(context.Context, *RescheduleAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("RescheduleAppointment")
}
func (UnimplementedScheduleServiceServer) AppendNote(context.Context, *AppendNoteRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("AppendNote")
}
func (UnimplementedScheduleServiceServer) DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error) {
	return nil, unimplemented("DeleteAppointment")
}
func (UnimplementedScheduleServiceServer) Summary(context.Context, *SummaryRequest) (*SummaryResponse, error) {
	return nil, unimplemented("Summary")
}

// unary builds the method descriptor for one RPC. The interceptor chain sees
// the decoded request and the full method name.
func unary[Req, Resp any](name string, call func(ScheduleServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ScheduleServiceServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: full}, handler)
		},
	}
}

var ScheduleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScheduleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", ScheduleServiceServer.Register),
		unary("Login", ScheduleServiceServer.Login),
		unary("Refresh", ScheduleServiceServer.Refresh),
		unary("Logout", ScheduleServiceServer.Logout),
		unary("ListProviders", ScheduleServiceServer.ListProviders),
		unary("CreateAppointment", ScheduleServiceServer.CreateAppointment),
		unary("GetAppointment", ScheduleServiceServer.GetAppointment),
		unary("ListAppointments", ScheduleServiceServer.ListAppointments),
		unary("UpdateAppointment", ScheduleServiceServer.UpdateAppointment),
		unary("RescheduleAppointment", ScheduleServiceServer.RescheduleAppointment),
		unary("AppendNote", ScheduleServiceServer.AppendNote),
		unary("DeleteAppointment", ScheduleServiceServer.DeleteAppointment),
		unary("Summary", ScheduleServiceServer.Summary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "schedule/v1/schedule.json",
}

func RegisterScheduleServiceServer(s grpc.ServiceRegistrar, srv ScheduleServiceServer) {
	s.RegisterService(&ScheduleService_ServiceDesc, srv)
}

type ScheduleServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	ListProviders(ctx context.Context, in *ListProvidersRequest, opts ...grpc.CallOption) (*ListProvidersResponse, error)
	CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error)
	UpdateAppointment(ctx context.Context, in *UpdateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, in *RescheduleAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	AppendNote(ctx context.Context, in *AppendNoteRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*DeleteAppointmentResponse, error)
	Summary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error)
}

type scheduleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewScheduleServiceClient returns a client that always speaks the json
// content-subtype.
func NewScheduleServiceClient(cc grpc.ClientConnInterface) ScheduleServiceClient {
	return &scheduleServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *scheduleServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ScheduleService_Register_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ScheduleService_Login_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ScheduleService_Refresh_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, ScheduleService_Logout_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) ListProviders(ctx context.Context, in *ListProvidersRequest, opts ...grpc.CallOption) (*ListProvidersResponse, error) {
	return invoke[ListProvidersResponse](ctx, c.cc, ScheduleService_ListProviders_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, ScheduleService_CreateAppointment_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, ScheduleService_GetAppointment_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, ScheduleService_ListAppointments_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) UpdateAppointment(ctx context.Context, in *UpdateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, ScheduleService_UpdateAppointment_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) RescheduleAppointment(ctx context.Context, in *RescheduleAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, ScheduleService_RescheduleAppointment_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) AppendNote(ctx context.Context, in *AppendNoteRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, ScheduleService_AppendNote_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*DeleteAppointmentResponse, error) {
	return invoke[DeleteAppointmentResponse](ctx, c.cc, ScheduleService_DeleteAppointment_FullMethodName, in, opts)
}

func (c *scheduleServiceClient) Summary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error) {
	return invoke[SummaryResponse](ctx, c.cc, ScheduleService_Summary_FullMethodName, in, opts)
}
