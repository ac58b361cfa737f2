package project

import (
	"fmt"
	"slices"
	"strings"
)

// StatusFilter narrows a listing to one status. FilterAll keeps everything.
type StatusFilter string

const FilterAll StatusFilter = "all"

// ParseStatusFilter accepts "all", empty (meaning all) or any status form.
func ParseStatusFilter(v string) (StatusFilter, error) {
	if key := normalizeKey(v); key == "" || key == string(FilterAll) {
		return FilterAll, nil
	}
	s, err := ParseStatus(v)
	if err != nil {
		return "", err
	}
	return StatusFilter(s), nil
}

// Matches reports whether p passes the filter.
func (f StatusFilter) Matches(p Project) bool {
	return f == "" || f == FilterAll || p.Status == Status(f)
}

// SortKey names a date column to order by.
type SortKey string

const (
	SortNone      SortKey = ""
	SortStartDate SortKey = "start_date"
	SortEndDate   SortKey = "end_date"
)

// ParseSortKey accepts "start_date", "Start Date", "startDate" and friends.
func ParseSortKey(v string) (SortKey, error) {
	key := strings.ReplaceAll(normalizeKey(v), "_", "")
	switch key {
	case "":
		return SortNone, nil
	case "startdate", "start":
		return SortStartDate, nil
	case "enddate", "end":
		return SortEndDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q: %w", v, ErrInvalidInput)
}

// ListOptions combines a status filter with an optional sort.
type ListOptions struct {
	Status StatusFilter
	SortBy SortKey
}

// Filter returns the projects matching the filter, in registry order.
func (r *Registry) Filter(filter StatusFilter) ([]Project, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterProjects(r.projects, filter), nil
}

// Sort returns every project ordered ascending by the date column. Equal
// dates keep registry order. The registry itself is not reordered.
func (r *Registry) Sort(key SortKey) ([]Project, error) {
	if !r.variant.CanSort() {
		return nil, ErrSortUnsupported
	}
	out := r.List()
	if err := sortProjects(out, key); err != nil {
		return nil, err
	}
	return out, nil
}

// Query filters, then sorts when opts.SortBy is set.
func (r *Registry) Query(opts ListOptions) ([]Project, error) {
	if err := validateFilter(opts.Status); err != nil {
		return nil, err
	}
	if opts.SortBy != SortNone && !r.variant.CanSort() {
		return nil, ErrSortUnsupported
	}

	r.mu.Lock()
	out := filterProjects(r.projects, opts.Status)
	r.mu.Unlock()

	if opts.SortBy == SortNone {
		return out, nil
	}
	if err := sortProjects(out, opts.SortBy); err != nil {
		return nil, err
	}
	return out, nil
}

func validateFilter(filter StatusFilter) error {
	if filter == "" || filter == FilterAll || Status(filter).Valid() {
		return nil
	}
	return fmt.Errorf("unknown status filter %q: %w", filter, ErrInvalidInput)
}

func filterProjects(projects []Project, filter StatusFilter) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func sortProjects(projects []Project, key SortKey) error {
	var cmp func(a, b Project) int
	switch key {
	case SortStartDate:
		cmp = func(a, b Project) int { return a.StartDate.Compare(b.StartDate) }
	case SortEndDate:
		cmp = func(a, b Project) int { return a.EndDate.Compare(b.EndDate) }
	default:
		return fmt.Errorf("unknown sort key %q: %w", key, ErrInvalidInput)
	}
	slices.SortStableFunc(projects, cmp)
	return nil
}
