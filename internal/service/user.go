package service

import (
	"context"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

// UserSyncRequest carries the identity-provider profile the front end
// pushes after sign-in.
type UserSyncRequest struct {
	SubjectID string `json:"subjectId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Name      string `json:"name,omitempty" validate:"omitempty"`
}

func ValidateUserSyncRequest(req *UserSyncRequest) error {
	return validate.Struct(req)
}

func SyncUser(ctx context.Context, users storage.UserRepository, req *UserSyncRequest) (*internal.User, error) {
	return users.CreateOrGetUser(ctx, req.SubjectID, req.Username, req.Name)
}
