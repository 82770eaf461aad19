package model

import "time"

// SuggestedLanguages is the advisory set offered by the pin editor.
// The language field itself is free-form; anything outside this list is
// accepted and stored as-is.
var SuggestedLanguages = []string{"html", "css", "javascript", "typescript", "react"}

// SuggestedLanguage reports whether lang is in the advisory set.
func SuggestedLanguage(lang string) bool {
	for _, l := range SuggestedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Pin is a user-submitted record combining an image, an optional code
// snippet, and metadata. Title and ImageURL are required at creation;
// everything else may be empty. A pin is owned by exactly one author and
// only the author may mutate it.
//
// Author and SavedBy are read-side decorations: the repository attaches the
// author summary and the full set of saves so API callers can answer
// "is this pin saved by me" without a second round trip.
type Pin struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl"    db:"image_url"`
	CodeSnippet string    `json:"codeSnippet" db:"code_snippet"`
	Language    string    `json:"language"    db:"language"`
	Tags        string    `json:"tags"        db:"tags"` // comma-separated, free-form
	AuthorID    string    `json:"authorId"    db:"author_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	Author  *AuthorSummary `json:"author,omitempty"`
	SavedBy []SavedPin     `json:"savedBy,omitempty"`
}
