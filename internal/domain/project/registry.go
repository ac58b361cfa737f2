package project

import (
	"fmt"
	"strings"
	"sync"
)

// IDPolicy decides how a registry numbers new projects.
type IDPolicy string

const (
	// IDSequence hands out ids from a counter that never goes backwards.
	IDSequence IDPolicy = "sequence"
	// IDLegacy assigns len(projects)+1. A create after a delete can repeat a live id.
	IDLegacy IDPolicy = "legacy"
)

// ParseIDPolicy validates a policy name. Empty means IDSequence.
func ParseIDPolicy(v string) (IDPolicy, error) {
	switch IDPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", IDSequence:
		return IDSequence, nil
	case IDLegacy:
		return IDLegacy, nil
	}
	return "", fmt.Errorf("unknown id policy %q: %w", v, ErrInvalidInput)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDPolicy overrides the default IDSequence policy.
func WithIDPolicy(policy IDPolicy) RegistryOption {
	return func(r *Registry) {
		r.policy = policy
	}
}

// Registry is the ordered, in-memory project collection of one session.
// Reads return copies so callers can never mutate registry state through a view.
type Registry struct {
	mu       sync.Mutex
	variant  Variant
	policy   IDPolicy
	lastID   int64
	projects []Project
}

// NewRegistry creates an empty registry for the given variant.
func NewRegistry(variant Variant, opts ...RegistryOption) *Registry {
	if variant == "" {
		variant = VariantFull
	}
	r := &Registry{variant: variant, policy: IDSequence}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Variant returns the registry's variant.
func (r *Registry) Variant() Variant {
	return r.variant
}

// IDPolicy returns the registry's id policy.
func (r *Registry) IDPolicy() IDPolicy {
	return r.policy
}

// Len returns the number of projects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.projects)
}

// Create appends a project. Only the name is validated.
func (r *Registry) Create(req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	status := req.Status
	if status == "" {
		status = StatusNotStarted
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityLow
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", priority, ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	proj := Project{
		ID:             r.nextID(),
		Name:           plainText(req.Name),
		Description:    plainText(req.Description),
		StartDate:      Day(req.StartDate),
		EndDate:        Day(req.EndDate),
		Status:         status,
		Priority:       priority,
		AssignedTo:     plainText(req.AssignedTo),
		EstimatedHours: req.EstimatedHours,
		AttachmentName: plainText(req.AttachmentName),
	}
	r.fit(&proj)
	r.projects = append(r.projects, proj)

	out := proj
	return &out, nil
}

// nextID must be called with mu held.
func (r *Registry) nextID() int64 {
	if r.policy == IDLegacy {
		return int64(len(r.projects)) + 1
	}
	r.lastID++
	return r.lastID
}

// plainText stores line breaks as LF. CSV readers fold a quoted CRLF into
// LF, so a stored CRLF would not survive export and import.
func plainText(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// fit clears the fields the variant does not model.
func (r *Registry) fit(p *Project) {
	if !r.variant.HasPriority() {
		p.Priority = ""
	}
	if !r.variant.HasDetails() {
		p.AssignedTo = ""
		p.EstimatedHours = 0
		p.AttachmentName = ""
	}
}

// Get returns the first project with the id.
func (r *Registry) Get(id int64) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	out := r.projects[i]
	return &out, nil
}

func (r *Registry) indexOf(id int64) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns every project in insertion order.
func (r *Registry) List() []Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Registry) snapshot() []Project {
	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Update applies a patch to the project with the id. The edit is all or
// nothing: an invalid field leaves the project unchanged.
func (r *Registry) Update(id int64, patch Patch) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	if !patch.Empty() && r.supported(patch).Empty() {
		return nil, fmt.Errorf("fields not modelled by the %s variant: %w", r.variant, ErrInvalidInput)
	}
	next := r.projects[i]
	if err := applyPatch(&next, patch); err != nil {
		return nil, err
	}
	r.fit(&next)
	r.projects[i] = next

	out := next
	return &out, nil
}

// supported returns the part of the patch the variant models.
func (r *Registry) supported(patch Patch) Patch {
	if !r.variant.HasPriority() {
		patch.Priority = nil
	}
	if !r.variant.HasDetails() {
		patch.AssignedTo = nil
		patch.EstimatedHours = nil
		patch.AttachmentName = nil
	}
	return patch
}

func applyPatch(p *Project, patch Patch) error {
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return fmt.Errorf("name is required: %w", ErrInvalidInput)
		}
		p.Name = plainText(*patch.Name)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return fmt.Errorf("unknown status %q: %w", *patch.Status, ErrInvalidInput)
		}
		p.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return fmt.Errorf("unknown priority %q: %w", *patch.Priority, ErrInvalidInput)
		}
		p.Priority = *patch.Priority
	}
	if patch.Description != nil {
		p.Description = plainText(*patch.Description)
	}
	if patch.StartDate != nil {
		p.StartDate = Day(*patch.StartDate)
	}
	if patch.EndDate != nil {
		p.EndDate = Day(*patch.EndDate)
	}
	if patch.AssignedTo != nil {
		p.AssignedTo = plainText(*patch.AssignedTo)
	}
	if patch.EstimatedHours != nil {
		p.EstimatedHours = *patch.EstimatedHours
	}
	if patch.AttachmentName != nil {
		p.AttachmentName = plainText(*patch.AttachmentName)
	}
	return nil
}

// UpdateStatus sets the status of the project with the id.
func (r *Registry) UpdateStatus(id int64, status Status) (*Project, error) {
	return r.Update(id, Patch{Status: &status})
}

// Delete removes every project carrying the id and returns how many were
// removed. Deleting a missing id is a no-op.
func (r *Registry) Delete(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.projects[:0]
	for _, p := range r.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(r.projects) - len(kept)
	clear(r.projects[len(kept):])
	r.projects = kept
	return removed
}

// ClearAll empties the registry and returns how many projects were removed.
// The id counter is kept so ids are never reused within a session.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.projects)
	r.projects = nil
	return removed
}

// Replace swaps the whole collection. Ids are trusted as-is; the sequence
// counter resumes after the largest one seen.
func (r *Registry) Replace(projects []Project) {
	next := make([]Project, len(projects))
	copy(next, projects)
	for i := range next {
		r.fit(&next[i])
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.projects = next
	for _, p := range next {
		if p.ID > r.lastID {
			r.lastID = p.ID
		}
	}
}
