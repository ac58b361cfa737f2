package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/rpggio/projtrack/internal/domain/activity"
)

// Service handles project operations on behalf of a session.
type Service struct {
	registries RegistryProvider
	activities ActivityLogger
	logger     *slog.Logger
}

// NewService creates a new project service. activities and logger may be nil.
func NewService(registries RegistryProvider, activities ActivityLogger, logger *slog.Logger) *Service {
	return &Service{registries: registries, activities: activities, logger: logger}
}

// List returns every project of the session in insertion order.
func (s *Service) List(ctx context.Context, sessionID string) ([]Project, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return reg.List(), nil
}

// Query filters and optionally sorts the session's projects.
func (s *Service) Query(ctx context.Context, sessionID string, opts ListOptions) ([]Project, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return reg.Query(opts)
}

// Get fetches a project by id.
func (s *Service) Get(ctx context.Context, sessionID string, id int64) (*Project, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return reg.Get(id)
}

// Create adds a project and posts a success notification.
func (s *Service) Create(ctx context.Context, sessionID string, req CreateRequest) (*Project, error) {
	if err := checkHours(req.EstimatedHours); err != nil {
		return nil, err
	}
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	proj, err := reg.Create(req)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, sessionID, &proj.ID, activity.TypeProjectCreated, activity.LevelSuccess,
		fmt.Sprintf("Project '%s' added successfully!", proj.Name))
	return proj, nil
}

// Update applies an id-keyed edit.
func (s *Service) Update(ctx context.Context, sessionID string, id int64, patch Patch) (*Project, error) {
	if patch.EstimatedHours != nil {
		if err := checkHours(*patch.EstimatedHours); err != nil {
			return nil, err
		}
	}
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	proj, err := reg.Update(id, patch)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, sessionID, &proj.ID, activity.TypeProjectUpdated, activity.LevelSuccess,
		fmt.Sprintf("Project %d updated", proj.ID))
	return proj, nil
}

// UpdateStatus changes the status of the project with the id.
func (s *Service) UpdateStatus(ctx context.Context, sessionID string, id int64, status Status) (*Project, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	proj, err := reg.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, sessionID, &proj.ID, activity.TypeStatusChanged, activity.LevelSuccess,
		fmt.Sprintf("Project %d is now %s", proj.ID, proj.Status.Label()))
	return proj, nil
}

// SetAttachment records the attachment filename of a project. The file
// content itself is never kept.
func (s *Service) SetAttachment(ctx context.Context, sessionID string, id int64, filename string) (*Project, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !reg.Variant().HasDetails() {
		return nil, fmt.Errorf("attachments need the %s variant: %w", VariantFull, ErrInvalidInput)
	}
	proj, err := reg.Update(id, Patch{AttachmentName: &filename})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, sessionID, &proj.ID, activity.TypeAttachmentSet, activity.LevelSuccess,
		fmt.Sprintf("Attached '%s' to project %d", filename, proj.ID))
	return proj, nil
}

// Delete removes every project with the id. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, sessionID string, id int64) (int, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	removed := reg.Delete(id)
	if removed > 0 {
		s.notify(ctx, sessionID, &id, activity.TypeProjectDeleted, activity.LevelSuccess,
			fmt.Sprintf("Deleted project %d", id))
	} else {
		s.notify(ctx, sessionID, &id, activity.TypeProjectDeleted, activity.LevelInfo,
			fmt.Sprintf("No project with id %d", id))
	}
	return removed, nil
}

// DeleteStrict is Delete that reports ErrProjectNotFound when nothing matched.
func (s *Service) DeleteStrict(ctx context.Context, sessionID string, id int64) (int, error) {
	removed, err := s.Delete(ctx, sessionID, id)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, ErrProjectNotFound
	}
	return removed, nil
}

// ClearAll empties the session's registry.
func (s *Service) ClearAll(ctx context.Context, sessionID string) (int, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	removed := reg.ClearAll()
	s.notify(ctx, sessionID, nil, activity.TypeProjectsCleared, activity.LevelSuccess,
		fmt.Sprintf("Cleared %d projects", removed))
	return removed, nil
}

// Export renders the session's projects as CSV.
func (s *Service) Export(ctx context.Context, sessionID string) ([]byte, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := reg.ExportCSV()
	if err != nil {
		return nil, fmt.Errorf("exporting projects: %w", err)
	}
	s.notify(ctx, sessionID, nil, activity.TypeProjectsExported, activity.LevelInfo,
		fmt.Sprintf("Exported %d projects", reg.Len()))
	return data, nil
}

// Import replaces the session's projects with the CSV payload. On a parse
// error nothing changes and an error notification is posted.
func (s *Service) Import(ctx context.Context, sessionID string, data []byte) (int, error) {
	reg, err := s.registries.Registry(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	n, err := reg.ImportCSV(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			s.notify(ctx, sessionID, nil, activity.TypeImportFailed, activity.LevelError,
				fmt.Sprintf("Import failed: %v", pe))
		}
		return 0, err
	}
	s.notify(ctx, sessionID, nil, activity.TypeProjectsImported, activity.LevelSuccess,
		fmt.Sprintf("Imported %d projects", n))
	return n, nil
}

func checkHours(h float64) error {
	if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return fmt.Errorf("estimated hours must be a non-negative number: %w", ErrInvalidInput)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, sessionID string, projectID *int64, typ activity.ActivityType, level activity.Level, summary string) {
	if s.logger != nil {
		s.logger.Info(summary, "session_id", sessionID, "type", typ)
	}
	if s.activities == nil {
		return
	}
	err := s.activities.LogActivity(ctx, &activity.ActivityEntry{
		SessionID:    sessionID,
		ProjectID:    projectID,
		ActivityType: typ,
		Level:        level,
		Summary:      summary,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to log activity", "session_id", sessionID, "type", typ, "error", err)
	}
}
