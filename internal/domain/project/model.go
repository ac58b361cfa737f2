package project

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the locale-independent form used for every exchanged date.
const DateLayout = "2006-01-02"

// Status is the lifecycle stage of a project.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

// Label returns the human readable form, e.g. "In Progress".
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus accepts either the code ("in_progress") or the label ("In Progress").
func ParseStatus(v string) (Status, error) {
	key := normalizeKey(v)
	for _, s := range Statuses {
		if key == string(s) || key == normalizeKey(s.Label()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q: %w", v, ErrInvalidInput)
}

// Priority is the relative importance of a project.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority accepts the code or the label, case-insensitively.
func ParsePriority(v string) (Priority, error) {
	key := normalizeKey(v)
	for _, p := range Priorities {
		if key == string(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q: %w", v, ErrInvalidInput)
}

func normalizeKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, "-", "_")
	return strings.ReplaceAll(v, " ", "_")
}

// Variant selects which iteration of the tracker a registry models.
type Variant string

const (
	// VariantBasic tracks name, description, schedule and status.
	VariantBasic Variant = "basic"
	// VariantPriority adds priority.
	VariantPriority Variant = "priority"
	// VariantFull adds assignee, estimate, attachment name and sorting.
	VariantFull Variant = "full"
)

// ParseVariant validates a variant name. Empty means VariantFull.
func ParseVariant(v string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(v))) {
	case "", VariantFull:
		return VariantFull, nil
	case VariantPriority:
		return VariantPriority, nil
	case VariantBasic:
		return VariantBasic, nil
	}
	return "", fmt.Errorf("unknown variant %q: %w", v, ErrInvalidInput)
}

// HasPriority reports whether projects in this variant carry a priority.
func (v Variant) HasPriority() bool {
	return v == VariantPriority || v == VariantFull
}

// HasDetails reports whether projects carry assignee, estimate and attachment.
func (v Variant) HasDetails() bool {
	return v == VariantFull
}

// CanSort reports whether the variant offers date sorting.
func (v Variant) CanSort() bool {
	return v == VariantFull
}

// Project is a tracked work item.
type Project struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         Status    `json:"status"`
	Priority       Priority  `json:"priority,omitempty"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	EstimatedHours float64   `json:"estimated_hours,omitempty"`
	AttachmentName string    `json:"attachment_name,omitempty"`
}

// CreateRequest defines project creation inputs. Zero values take defaults.
type CreateRequest struct {
	Name           string
	Description    string
	StartDate      time.Time
	EndDate        time.Time
	Status         Status
	Priority       Priority
	AssignedTo     string
	EstimatedHours float64
	AttachmentName string
}

// Patch describes an id-keyed edit. Nil fields are left untouched.
type Patch struct {
	Name           *string
	Description    *string
	StartDate      *time.Time
	EndDate        *time.Time
	Status         *Status
	Priority       *Priority
	AssignedTo     *string
	EstimatedHours *float64
	AttachmentName *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.StartDate == nil && p.EndDate == nil &&
		p.Status == nil && p.Priority == nil && p.AssignedTo == nil && p.EstimatedHours == nil &&
		p.AttachmentName == nil
}

// ParseDate parses a YYYY-MM-DD date. Blank input yields the zero time.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", v, ErrInvalidInput)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD, or "" when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
