package usecase

import (
	"context"
	"errors"

	"makerspace-booking/internal/delivery/http/middleware"
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("user not found in context")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrInvalidInput    = errors.New("invalid input")
)

// actor is the authenticated user a request acts on behalf of
type actor struct {
	UserID uuid.UUID
	RoleID int
}

func (a actor) IsAdmin() bool {
	return a.RoleID == entity.RoleIDAdmin
}

func (a actor) CanHost() bool {
	return a.RoleID == entity.RoleIDAdmin || a.RoleID == entity.RoleIDHost
}

// CanManage reports whether the actor may modify a session hosted by hostID
func (a actor) CanManage(hostID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == hostID
}

func actorFromContext(ctx context.Context) (actor, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return actor{}, ErrUnauthenticated
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return actor{}, ErrUnauthenticated
	}
	return actor{UserID: userID, RoleID: roleID}, nil
}
