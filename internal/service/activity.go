package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

var validate = validator.New()

type ActivityRequest struct {
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=appetizers entrees snacks desserts sides specials"`
	Description string `json:"description,omitempty" validate:"omitempty"`
	Duration    int    `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Emoji       string `json:"emoji,omitempty" validate:"omitempty"`
}

func ValidateActivityRequest(req *ActivityRequest) error {
	return validate.Struct(req)
}

func CreateActivity(ctx context.Context, activities storage.ActivityRepository, userID string, req *ActivityRequest) (*internal.Activity, error) {
	a := &internal.Activity{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Duration:    req.Duration,
		UserID:      userID,
		Emoji:       req.Emoji,
	}
	if err := activities.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateActivities validates the whole batch before writing anything, so a
// bad entry cannot leave a half-created batch behind.
func CreateActivities(ctx context.Context, activities storage.ActivityRepository, userID string, reqs []ActivityRequest) ([]internal.Activity, error) {
	rows := make([]*internal.Activity, 0, len(reqs))
	for i := range reqs {
		if err := ValidateActivityRequest(&reqs[i]); err != nil {
			return nil, err
		}
		rows = append(rows, &internal.Activity{
			Name:        reqs[i].Name,
			Category:    reqs[i].Category,
			Description: reqs[i].Description,
			Duration:    reqs[i].Duration,
			UserID:      userID,
			Emoji:       reqs[i].Emoji,
		})
	}
	if err := activities.CreateActivities(ctx, rows); err != nil {
		return nil, err
	}
	out := make([]internal.Activity, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out, nil
}

// UpdateActivity applies the editable fields onto the existing row.
// Completion bookkeeping (count, last completed) is never touched here.
func UpdateActivity(ctx context.Context, activities storage.ActivityRepository, existing *internal.Activity, req *ActivityRequest) (*internal.Activity, error) {
	existing.Name = req.Name
	existing.Category = req.Category
	existing.Description = req.Description
	existing.Duration = req.Duration
	existing.Emoji = req.Emoji
	if err := activities.UpdateActivity(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
