package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "clinic-schedule-api/api/schedule/v1"
	"clinic-schedule-api/internal/auth"
	"clinic-schedule-api/internal/model"
)

type principalKey struct{}

// skip auth for these
var open = map[string]bool{
	pb.ScheduleService_Register_FullMethodName: true,
	pb.ScheduleService_Login_FullMethodName:    true,
	pb.ScheduleService_Refresh_FullMethodName:  true,
}

func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}

// Auth verifies the bearer token on every schedule RPC except the open ones
// and stores the caller's principal in the context. Other services (health)
// pass through.
func Auth(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] || !strings.HasPrefix(info.FullMethod, "/"+pb.ServiceName+"/") {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = strings.TrimSpace(strings.TrimPrefix(vals[0], "Bearer "))
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		p, err := claims.Principal()
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		return next(WithPrincipal(ctx, p), req)
	}
}
