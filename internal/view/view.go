// Package view holds the wire representation of projects shared by the MCP
// and REST adapters. Dates travel as YYYY-MM-DD strings and enums accept
// either their code or their label.
package view

import (
	"fmt"
	"strings"

	"github.com/rpggio/projtrack/internal/domain/project"
)

// Project is the rendered form of a project.
type Project struct {
	ID             int64   `json:"id" jsonschema:"Project id"`
	Name           string  `json:"name" jsonschema:"Project name"`
	Description    string  `json:"description" jsonschema:"Free text description"`
	StartDate      string  `json:"start_date" jsonschema:"Start date (YYYY-MM-DD), empty when unset"`
	EndDate        string  `json:"end_date" jsonschema:"End date (YYYY-MM-DD), empty when unset"`
	Status         string  `json:"status" jsonschema:"Status code: not_started, in_progress or completed"`
	StatusLabel    string  `json:"status_label" jsonschema:"Human readable status"`
	Priority       string  `json:"priority,omitempty" jsonschema:"Priority code: low, medium or high"`
	AssignedTo     string  `json:"assigned_to,omitempty" jsonschema:"Assignee"`
	EstimatedHours float64 `json:"estimated_hours,omitempty" jsonschema:"Estimated effort in hours"`
	AttachmentName string  `json:"attachment_name,omitempty" jsonschema:"Name of the attached file"`
}

// ProjectOf renders p.
func ProjectOf(p project.Project) Project {
	return Project{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		StartDate:      project.FormatDate(p.StartDate),
		EndDate:        project.FormatDate(p.EndDate),
		Status:         string(p.Status),
		StatusLabel:    p.Status.Label(),
		Priority:       string(p.Priority),
		AssignedTo:     p.AssignedTo,
		EstimatedHours: p.EstimatedHours,
		AttachmentName: p.AttachmentName,
	}
}

// Projects renders a slice, never returning nil.
func Projects(list []project.Project) []Project {
	out := make([]Project, 0, len(list))
	for _, p := range list {
		out = append(out, ProjectOf(p))
	}
	return out
}

// CreateInput is the payload of a create call.
type CreateInput struct {
	Name           string  `json:"name" jsonschema:"Project name, must not be blank"`
	Description    string  `json:"description,omitempty" jsonschema:"Free text description"`
	StartDate      string  `json:"start_date,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	EndDate        string  `json:"end_date,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
	Status         string  `json:"status,omitempty" jsonschema:"Initial status, defaults to not_started"`
	Priority       string  `json:"priority,omitempty" jsonschema:"Priority, defaults to low"`
	AssignedTo     string  `json:"assigned_to,omitempty" jsonschema:"Assignee"`
	EstimatedHours float64 `json:"estimated_hours,omitempty" jsonschema:"Estimated effort in hours, not negative"`
	AttachmentName string  `json:"attachment_name,omitempty" jsonschema:"Name of an attached file"`
}

// Request converts the input into a domain request.
func (in CreateInput) Request() (project.CreateRequest, error) {
	req := project.CreateRequest{
		Name:           in.Name,
		Description:    in.Description,
		AssignedTo:     in.AssignedTo,
		EstimatedHours: in.EstimatedHours,
		AttachmentName: in.AttachmentName,
	}
	var err error
	if req.StartDate, err = project.ParseDate(in.StartDate); err != nil {
		return req, fmt.Errorf("start_date: %w", err)
	}
	if req.EndDate, err = project.ParseDate(in.EndDate); err != nil {
		return req, fmt.Errorf("end_date: %w", err)
	}
	if strings.TrimSpace(in.Status) != "" {
		if req.Status, err = project.ParseStatus(in.Status); err != nil {
			return req, err
		}
	}
	if strings.TrimSpace(in.Priority) != "" {
		if req.Priority, err = project.ParsePriority(in.Priority); err != nil {
			return req, err
		}
	}
	return req, nil
}

// PatchInput is the payload of an id-keyed edit. Absent fields stay unchanged.
type PatchInput struct {
	Name           *string  `json:"name,omitempty" jsonschema:"New name"`
	Description    *string  `json:"description,omitempty" jsonschema:"New description"`
	StartDate      *string  `json:"start_date,omitempty" jsonschema:"New start date (YYYY-MM-DD), empty clears it"`
	EndDate        *string  `json:"end_date,omitempty" jsonschema:"New end date (YYYY-MM-DD), empty clears it"`
	Status         *string  `json:"status,omitempty" jsonschema:"New status"`
	Priority       *string  `json:"priority,omitempty" jsonschema:"New priority"`
	AssignedTo     *string  `json:"assigned_to,omitempty" jsonschema:"New assignee"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty" jsonschema:"New estimate in hours"`
	AttachmentName *string  `json:"attachment_name,omitempty" jsonschema:"New attachment name"`
}

// Patch converts the input into a domain patch.
func (in PatchInput) Patch() (project.Patch, error) {
	patch := project.Patch{
		Name:           in.Name,
		Description:    in.Description,
		AssignedTo:     in.AssignedTo,
		EstimatedHours: in.EstimatedHours,
		AttachmentName: in.AttachmentName,
	}
	if in.StartDate != nil {
		d, err := project.ParseDate(*in.StartDate)
		if err != nil {
			return patch, fmt.Errorf("start_date: %w", err)
		}
		patch.StartDate = &d
	}
	if in.EndDate != nil {
		d, err := project.ParseDate(*in.EndDate)
		if err != nil {
			return patch, fmt.Errorf("end_date: %w", err)
		}
		patch.EndDate = &d
	}
	if in.Status != nil {
		s, err := project.ParseStatus(*in.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &s
	}
	if in.Priority != nil {
		p, err := project.ParsePriority(*in.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if patch.Empty() {
		return patch, fmt.Errorf("no fields to update: %w", project.ErrInvalidInput)
	}
	return patch, nil
}

// ListOptions parses the status filter and sort key used by list calls.
func ListOptions(status, sortBy string) (project.ListOptions, error) {
	filter, err := project.ParseStatusFilter(status)
	if err != nil {
		return project.ListOptions{}, err
	}
	key, err := project.ParseSortKey(sortBy)
	if err != nil {
		return project.ListOptions{}, err
	}
	return project.ListOptions{Status: filter, SortBy: key}, nil
}
