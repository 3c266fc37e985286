package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-schedule-api/api/schedule/v1"
	"clinic-schedule-api/internal/auth"
	"clinic-schedule-api/internal/identity"
	"clinic-schedule-api/internal/lifecycle"
	"clinic-schedule-api/internal/middleware"
	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/store"
)

const DefaultRefreshTTL = 7 * 24 * time.Hour

type Handler struct {
	pb.UnimplementedScheduleServiceServer
	engine     *lifecycle.Engine
	directory  *identity.Directory
	tokens     store.RefreshTokens
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
}

func New(engine *lifecycle.Engine, dir *identity.Directory, tokens store.RefreshTokens, secret string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		engine:     engine,
		directory:  dir,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  auth.DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		log:        log,
	}
}

// WithTTL overrides token lifetimes; zero keeps the default.
func (h *Handler) WithTTL(access, refresh time.Duration) *Handler {
	if access > 0 {
		h.accessTTL = access
	}
	if refresh > 0 {
		h.refreshTTL = refresh
	}
	return h
}

func principal(ctx context.Context) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return model.Principal{}, status.Error(codes.Unauthenticated, "no principal")
	}
	return p, nil
}
