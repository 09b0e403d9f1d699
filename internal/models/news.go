package models

import (
	"strings"
	"time"
)

// NewsStatus enumerates the externally visible lifecycle states of an item.
type NewsStatus string

const (
	StatusDraft     NewsStatus = "draft"
	StatusPublished NewsStatus = "published"
	StatusArchived  NewsStatus = "archived"
)

// TransitionAction enumerates the workflow operations on a news item.
type TransitionAction string

const (
	ActionSubmit  TransitionAction = "submit"
	ActionApprove TransitionAction = "approve"
	ActionReject  TransitionAction = "reject"
	ActionPublish TransitionAction = "publish"
	ActionArchive TransitionAction = "archive"
)

// ParseAction normalises an action path segment.
func ParseAction(raw string) (TransitionAction, bool) {
	a := TransitionAction(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionPublish, ActionArchive:
		return a, true
	}
	return "", false
}

// NewsItem mirrors the backend's article record. The backend is the sole
// authority over status and needs_approval; the gateway never mutates a
// local copy optimistically.
type NewsItem struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Image         string     `json:"image,omitempty"`
	CategoryID    string     `json:"category_id,omitempty"`
	Category      string     `json:"category,omitempty"`
	Status        NewsStatus `json:"status"`
	NeedsApproval bool       `json:"needs_approval"`
	AuthorID      string     `json:"author_id,omitempty"`
	AuthorName    string     `json:"author_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}

// Consistent reports whether the needs_approval flag respects its invariant:
// an item pending approval must still be a draft.
func (n NewsItem) Consistent() bool {
	return !n.NeedsApproval || n.Status == StatusDraft
}

// NewsList is the canonical list shape every backend list response is
// normalised into, regardless of the upstream payload layout.
type NewsList struct {
	Items []NewsItem `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// NewsDraft carries the author-editable fields for create and update.
type NewsDraft struct {
	CategoryID string `json:"category_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	Image      string `json:"image,omitempty"`
}

// RejectRequest carries the mandatory reviewer reason for a rejection.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Category is read-only reference data owned by the backend.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
