// Package service contains the business logic layer: validation,
// authorization, and orchestration between handlers and repositories.
// Services know nothing about HTTP; handlers translate their domain errors
// to status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"devboards/internal/apperror"
	"devboards/internal/model"
	"devboards/internal/repository"
)

const (
	MaxTitleLength   = 100
	MaxCodeLength    = 100000 // ~100KB of snippet text
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// PinService handles the pin lifecycle and feed selection.
type PinService struct {
	pins   repository.PinRepository
	logger *slog.Logger
}

func NewPinService(pins repository.PinRepository, logger *slog.Logger) *PinService {
	return &PinService{
		pins:   pins,
		logger: logger,
	}
}

// CreatePinInput carries the fields a caller may set when creating a pin.
type CreatePinInput struct {
	Title       string
	Description string
	ImageURL    string
	CodeSnippet string
	Language    string
	Tags        string
}

// UpdatePinInput carries a partial update: nil fields keep their prior
// values, non-nil fields are applied. ImageURL and the author are immutable
// after creation.
type UpdatePinInput struct {
	Title       *string
	Description *string
	CodeSnippet *string
	Language    *string
	Tags        *string
}

// FeedOptions selects which pins a list call returns.
//
// Sampled mode picks a window start uniformly in [0, max(0, count-limit)],
// fetches one contiguous window, and shuffles it. That is a coarse
// approximation of a random sample, biased toward whichever window was
// drawn rather than uniform over the table, which is fine for a browse feed
// and cheap: one COUNT plus one page fetch.
type FeedOptions struct {
	Limit    int
	AuthorID string
	Sampled  bool
}

// authorizeMutation decides whether a caller may mutate a pin. It is a pure
// check, evaluated fresh on every mutating call: no caller identity at all
// is unauthenticated, any caller other than the author is forbidden.
func authorizeMutation(callerID, authorID string) error {
	if callerID == "" {
		return apperror.Unauthenticated("you must be logged in")
	}
	if callerID != authorID {
		return apperror.Forbidden("only the author may modify this pin")
	}
	return nil
}

// Create validates and saves a new pin authored by callerID.
func (s *PinService) Create(ctx context.Context, callerID string, in CreatePinInput) (*model.Pin, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("you must be logged in to create a pin")
	}

	title := strings.TrimSpace(in.Title)
	imageURL := strings.TrimSpace(in.ImageURL)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if imageURL == "" {
		return nil, apperror.ValidationFailed("imageUrl", "image URL is required")
	}
	if len(in.CodeSnippet) > MaxCodeLength {
		return nil, apperror.ValidationFailed("codeSnippet",
			fmt.Sprintf("code snippet must be %d characters or less", MaxCodeLength))
	}

	language := strings.ToLower(strings.TrimSpace(in.Language))
	// The language tag is free-form; the suggested set only feeds the editor
	// dropdown, so an off-list value is worth a log line and nothing more.
	if language != "" && !model.SuggestedLanguage(language) {
		s.logger.Debug("pin uses a language outside the suggested set",
			slog.String("language", language),
		)
	}

	pin := &model.Pin{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    imageURL,
		CodeSnippet: in.CodeSnippet,
		Language:    language,
		Tags:        strings.TrimSpace(in.Tags),
		AuthorID:    callerID,
	}

	if err := s.pins.CreatePin(ctx, pin); err != nil {
		s.logger.Error("failed to create pin",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating pin: %w", err)
	}

	s.logger.Info("pin created",
		slog.String("id", pin.ID),
		slog.String("authorId", pin.AuthorID),
	)

	return pin, nil
}

// GetByID retrieves a pin with its author summary and savedBy set.
func (s *PinService) GetByID(ctx context.Context, id string) (*model.Pin, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "pin ID is required")
	}
	return s.pins.GetPinByID(ctx, id)
}

// List returns the feed described by opts: an author's pins or the global
// feed, newest-first or sampled.
func (s *PinService) List(ctx context.Context, opts FeedOptions) ([]model.Pin, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	// Sampled mode only applies to the unfiltered feed; an author filter
	// always lists that author's pins by recency.
	if opts.Sampled && opts.AuthorID == "" {
		return s.sampled(ctx, limit)
	}

	pins, err := s.pins.ListPins(ctx, repository.ListOptions{
		Limit:    limit,
		AuthorID: opts.AuthorID,
	})
	if err != nil {
		s.logger.Error("failed to list pins", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing pins: %w", err)
	}
	return pins, nil
}

// sampled draws one contiguous window at a uniformly random offset and
// shuffles it. See FeedOptions for the bias caveat.
func (s *PinService) sampled(ctx context.Context, limit int) ([]model.Pin, error) {
	count, err := s.pins.CountPins(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting pins: %w", err)
	}

	maxStart := count - limit
	if maxStart < 0 {
		maxStart = 0
	}
	start := 0
	if maxStart > 0 {
		start = rand.IntN(maxStart + 1)
	}

	pins, err := s.pins.ListPins(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: start,
	})
	if err != nil {
		s.logger.Error("failed to list sampled pins", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing sampled pins: %w", err)
	}

	rand.Shuffle(len(pins), func(i, j int) {
		pins[i], pins[j] = pins[j], pins[i]
	})

	return pins, nil
}

// Update applies a partial update to a pin on behalf of callerID. Fields
// left nil in the input keep their prior values.
func (s *PinService) Update(ctx context.Context, id, callerID string, in UpdatePinInput) (*model.Pin, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "pin ID is required")
	}

	pin, err := s.pins.GetPinByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeMutation(callerID, pin.AuthorID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title cannot be empty")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		pin.Title = title
	}
	if in.Description != nil {
		pin.Description = strings.TrimSpace(*in.Description)
	}
	if in.CodeSnippet != nil {
		if len(*in.CodeSnippet) > MaxCodeLength {
			return nil, apperror.ValidationFailed("codeSnippet",
				fmt.Sprintf("code snippet must be %d characters or less", MaxCodeLength))
		}
		pin.CodeSnippet = *in.CodeSnippet
	}
	if in.Language != nil {
		pin.Language = strings.ToLower(strings.TrimSpace(*in.Language))
	}
	if in.Tags != nil {
		pin.Tags = strings.TrimSpace(*in.Tags)
	}

	if err := s.pins.UpdatePin(ctx, pin); err != nil {
		s.logger.Error("failed to update pin",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating pin: %w", err)
	}

	s.logger.Info("pin updated", slog.String("id", pin.ID))

	return pin, nil
}

// Delete removes a pin on behalf of callerID. The repository cascades the
// pin's saved rows away with it.
func (s *PinService) Delete(ctx context.Context, id, callerID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "pin ID is required")
	}

	pin, err := s.pins.GetPinByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authorizeMutation(callerID, pin.AuthorID); err != nil {
		return err
	}

	if err := s.pins.DeletePin(ctx, id); err != nil {
		return err
	}

	s.logger.Info("pin deleted",
		slog.String("id", id),
		slog.String("authorId", pin.AuthorID),
	)
	return nil
}
