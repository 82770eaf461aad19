package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devboards/internal/apperror"
	"devboards/internal/model"
	"devboards/internal/repository"
)

// SaveService maintains the user↔pin bookmark relation. A save is
// idempotent-by-rejection: saving an already-saved pin fails with a conflict
// instead of duplicating, and the database's unique constraint settles
// concurrent attempts.
type SaveService struct {
	saves  repository.SavedPinRepository
	pins   repository.PinRepository
	logger *slog.Logger
}

func NewSaveService(saves repository.SavedPinRepository, pins repository.PinRepository, logger *slog.Logger) *SaveService {
	return &SaveService{
		saves:  saves,
		pins:   pins,
		logger: logger,
	}
}

// Save bookmarks pinID for the caller. The pin must exist, and the affected
// account is always the caller; there is no saving on behalf of others.
func (s *SaveService) Save(ctx context.Context, callerID, pinID string) (*model.SavedPin, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("you must be logged in to save pins")
	}
	pinID = strings.TrimSpace(pinID)
	if pinID == "" {
		return nil, apperror.ValidationFailed("id", "pin ID is required")
	}

	// Surface a clean not-found for a missing pin before attempting the
	// insert; the foreign key would reject it anyway but with a less useful
	// error.
	if _, err := s.pins.GetPinByID(ctx, pinID); err != nil {
		return nil, err
	}

	saved, err := s.saves.SavePin(ctx, callerID, pinID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("pin saved",
		slog.String("pinId", pinID),
		slog.String("userId", callerID),
	)

	return saved, nil
}

// Unsave removes the caller's bookmark for pinID. Unsaving a pin that was
// never saved reports not-found rather than silently succeeding.
func (s *SaveService) Unsave(ctx context.Context, callerID, pinID string) error {
	if callerID == "" {
		return apperror.Unauthenticated("you must be logged in to unsave pins")
	}
	pinID = strings.TrimSpace(pinID)
	if pinID == "" {
		return apperror.ValidationFailed("id", "pin ID is required")
	}

	if err := s.saves.UnsavePin(ctx, callerID, pinID); err != nil {
		return err
	}

	s.logger.Info("pin unsaved",
		slog.String("pinId", pinID),
		slog.String("userId", callerID),
	)
	return nil
}

// ListSaved returns the caller's bookmarked pins, most recently saved first.
func (s *SaveService) ListSaved(ctx context.Context, callerID string, limit int) ([]model.Pin, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("you must be logged in to view saved pins")
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	pins, err := s.saves.ListSavedPins(ctx, callerID, limit)
	if err != nil {
		s.logger.Error("failed to list saved pins",
			slog.String("userId", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing saved pins: %w", err)
	}
	return pins, nil
}
