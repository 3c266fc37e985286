package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-schedule-api/api/schedule/v1"
	"clinic-schedule-api/internal/auth"
	"clinic-schedule-api/internal/model"
)

func (h *Handler) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error) {
	const method = "Register"
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	p, err := h.directory.Register(ctx, req.FullName, req.Email, req.Password, role)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	return h.issue(ctx, method, p, strings.TrimSpace(req.FullName))
}

func (h *Handler) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {
	const method = "Login"
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	p, err := h.directory.VerifyCredentials(ctx, req.Email, req.Password, role)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	u, err := h.directory.Lookup(ctx, p.ID)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	return h.issue(ctx, method, p, u.FullName)
}

// Refresh rotates a refresh token. Presenting a token that was already
// rotated revokes every session of its owner.
func (h *Handler) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.AuthResponse, error) {
	const method = "Refresh"
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token required")
	}

	rt, err := h.tokens.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if errors.Is(err, model.ErrNotFound) {
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	if rt.Revoked {
		return nil, h.reuse(ctx, rt.UserID)
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, status.Error(codes.Unauthenticated, "refresh token expired")
	}

	u, err := h.directory.Lookup(ctx, rt.UserID)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	p := model.Principal{ID: u.ID, Role: u.Role}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	expires := time.Now().Add(h.refreshTTL)
	err = h.tokens.RotateRefreshToken(ctx, rt.ID, uuid.NewString(), u.ID, hash, expires)
	if errors.Is(err, model.ErrConflict) {
		return nil, h.reuse(ctx, rt.UserID)
	}
	if err != nil {
		return nil, h.toStatus(method, err)
	}

	access, err := auth.MakeToken(p, h.secret, h.accessTTL)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	return &pb.AuthResponse{
		UserID:       u.ID,
		FullName:     u.FullName,
		Role:         string(u.Role),
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    model.FormatInstant(time.Now().Add(h.accessTTL)),
	}, nil
}

func (h *Handler) Logout(ctx context.Context, _ *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.tokens.RevokeAllRefreshTokens(ctx, p.ID); err != nil {
		return nil, h.toStatus("Logout", err)
	}
	return &pb.LogoutResponse{}, nil
}

func (h *Handler) ListProviders(ctx context.Context, _ *pb.ListProvidersRequest) (*pb.ListProvidersResponse, error) {
	if _, err := principal(ctx); err != nil {
		return nil, err
	}
	users, err := h.directory.ListByRole(ctx, model.RoleProvider)
	if err != nil {
		return nil, h.toStatus("ListProviders", err)
	}
	out := make([]*pb.User, len(users))
	for i, u := range users {
		out[i] = &pb.User{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: string(u.Role)}
	}
	return &pb.ListProvidersResponse{Providers: out}, nil
}

func (h *Handler) issue(ctx context.Context, method string, p model.Principal, fullName string) (*pb.AuthResponse, error) {
	access, err := auth.MakeToken(p, h.secret, h.accessTTL)
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, h.toStatus(method, err)
	}
	if _, err := h.tokens.CreateRefreshToken(ctx, p.ID, hash, time.Now().Add(h.refreshTTL)); err != nil {
		return nil, h.toStatus(method, err)
	}
	return &pb.AuthResponse{
		UserID:       p.ID,
		FullName:     fullName,
		Role:         string(p.Role),
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    model.FormatInstant(time.Now().Add(h.accessTTL)),
	}, nil
}

func (h *Handler) reuse(ctx context.Context, userID string) error {
	h.log.Warn("refresh token reuse, revoking sessions", zap.String("user_id", userID))
	if err := h.tokens.RevokeAllRefreshTokens(ctx, userID); err != nil {
		h.log.Error("revoke refresh tokens", zap.String("user_id", userID), zap.Error(err))
	}
	return status.Error(codes.Unauthenticated, "refresh token reuse detected")
}
