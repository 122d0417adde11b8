package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// RoleChecker enforces role membership.
type RoleChecker interface {
	RequireRole(identity model.Identity, allowed model.RoleSet) error
}

var _ GuardServer = (*Guard)(nil)

// Guard serves identity.v1.Guard. The identity is put into the context by the
// authentication interceptor.
type Guard struct {
	roles          RoleChecker
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewGuard creates a new Guard handler.
func NewGuard(roles RoleChecker, contextManager model.ContextManager, logger *logger.Logger) *Guard {
	return &Guard{roles: roles, contextManager: contextManager, logger: logger}
}

// Authenticate returns the caller's identity.
func (h *Guard) Authenticate(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	identity, ok := h.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Unauthorized - No Access Token Provided")
	}

	return identityStruct(identity)
}

// Authorize returns the caller's identity when its role is in req["roles"].
func (h *Guard) Authorize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	identity, ok := h.contextManager.GetIdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Unauthorized - No Access Token Provided")
	}

	allowed, err := parseRoles(req)
	if err != nil {
		return nil, err
	}

	if err := h.roles.RequireRole(identity, allowed); err != nil {
		h.logger.Debug("Guard handler: authorization denied",
			"identity_id", identity.ID,
			"error", err.Error())
		return nil, HandleError(err)
	}

	return identityStruct(identity)
}

func parseRoles(req *structpb.Struct) (model.RoleSet, error) {
	list := req.GetFields()["roles"].GetListValue()
	if list == nil || len(list.GetValues()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "roles are required")
	}

	roles := make(model.RoleSet, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		role := model.Role(v.GetStringValue())
		if !role.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", v.GetStringValue())
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func identityStruct(identity model.Identity) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":          identity.ID.String(),
		"name":        identity.Name,
		"email":       identity.Email,
		"phoneNumber": identity.Phone,
		"role":        string(identity.Role),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "Internal server error")
	}
	return s, nil
}
