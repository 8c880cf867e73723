package service

import (
	"context"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

type MenuRequest struct {
	Name        string  `json:"name" validate:"required"`
	ActivityIDs []int64 `json:"activities" validate:"omitempty,dive,gt=0"`
}

func ValidateMenuRequest(req *MenuRequest) error {
	return validate.Struct(req)
}

func CreateMenu(ctx context.Context, menus storage.MenuRepository, userID string, req *MenuRequest) (*internal.Menu, error) {
	m := &internal.Menu{
		Name:        req.Name,
		UserID:      userID,
		ActivityIDs: req.ActivityIDs,
	}
	if err := menus.CreateMenu(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func UpdateMenu(ctx context.Context, menus storage.MenuRepository, id int64, req *MenuRequest) (*internal.Menu, error) {
	m, err := menus.GetMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = req.Name
	m.ActivityIDs = req.ActivityIDs
	if err := menus.UpdateMenu(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
