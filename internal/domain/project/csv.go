package project

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// CSV column names, matching the project attribute names.
const (
	ColumnID             = "id"
	ColumnName           = "name"
	ColumnDescription    = "description"
	ColumnStartDate      = "start_date"
	ColumnEndDate        = "end_date"
	ColumnStatus         = "status"
	ColumnPriority       = "priority"
	ColumnAssignedTo     = "assignedTo"
	ColumnEstimatedHours = "estimatedHours"
	ColumnAttachmentName = "attachmentName"
)

// Columns returns the header row for a variant, in export order.
func (v Variant) Columns() []string {
	cols := []string{ColumnID, ColumnName, ColumnDescription, ColumnStartDate, ColumnEndDate, ColumnStatus}
	if v.HasPriority() {
		cols = append(cols, ColumnPriority)
	}
	if v.HasDetails() {
		cols = append(cols, ColumnAssignedTo, ColumnEstimatedHours, ColumnAttachmentName)
	}
	return cols
}

const utf8BOM = "\ufeff"

// ExportCSV writes projects as CSV with the variant's header row.
func ExportCSV(w io.Writer, variant Variant, projects []Project) error {
	cw := csv.NewWriter(w)
	cols := variant.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, p := range projects {
		for i, col := range cols {
			row[i] = cell(p, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func cell(p Project, col string) string {
	switch col {
	case ColumnID:
		return strconv.FormatInt(p.ID, 10)
	case ColumnName:
		return p.Name
	case ColumnDescription:
		return p.Description
	case ColumnStartDate:
		return FormatDate(p.StartDate)
	case ColumnEndDate:
		return FormatDate(p.EndDate)
	case ColumnStatus:
		return p.Status.Label()
	case ColumnPriority:
		return p.Priority.Label()
	case ColumnAssignedTo:
		return p.AssignedTo
	case ColumnEstimatedHours:
		return strconv.FormatFloat(p.EstimatedHours, 'f', -1, 64)
	case ColumnAttachmentName:
		return p.AttachmentName
	}
	return ""
}

// ImportCSV parses a CSV payload for the variant. It fails with a
// *ParseError on the first problem and returns no projects in that case.
func ImportCSV(r io.Reader, variant Variant) ([]Project, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, csvReadError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	index, err := headerIndex(header, variant)
	if err != nil {
		return nil, err
	}

	var projects []Project
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvReadError(err)
		}
		line, _ := cr.FieldPos(0)
		p, err := parseRow(rec, index, variant)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = line
				return nil, pe
			}
			return nil, &ParseError{Line: line, Err: err}
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func csvReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Err: err}
}

func headerIndex(header []string, variant Variant) (map[string]int, error) {
	want := variant.Columns()
	known := make(map[string]bool, len(want))
	for _, col := range want {
		known[col] = true
	}

	index := make(map[string]int, len(header))
	for i, raw := range header {
		col := strings.TrimSpace(raw)
		if !known[col] {
			return nil, &ParseError{Line: 1, Column: col, Err: errors.New("unexpected column")}
		}
		if _, dup := index[col]; dup {
			return nil, &ParseError{Line: 1, Column: col, Err: errors.New("duplicate column")}
		}
		index[col] = i
	}
	for _, col := range want {
		if _, ok := index[col]; !ok {
			return nil, &ParseError{Line: 1, Column: col, Err: errors.New("missing column")}
		}
	}
	return index, nil
}

func parseRow(rec []string, index map[string]int, variant Variant) (Project, error) {
	if len(rec) != len(index) {
		return Project{}, fmt.Errorf("expected %d fields, got %d", len(index), len(rec))
	}
	get := func(col string) string { return rec[index[col]] }
	fail := func(col string, err error) error { return &ParseError{Column: col, Err: err} }

	var p Project
	id, err := strconv.ParseInt(strings.TrimSpace(get(ColumnID)), 10, 64)
	if err != nil {
		return Project{}, fail(ColumnID, errors.New("id must be an integer"))
	}
	p.ID = id
	p.Name = get(ColumnName)
	p.Description = get(ColumnDescription)
	if p.StartDate, err = ParseDate(get(ColumnStartDate)); err != nil {
		return Project{}, fail(ColumnStartDate, err)
	}
	if p.EndDate, err = ParseDate(get(ColumnEndDate)); err != nil {
		return Project{}, fail(ColumnEndDate, err)
	}
	if p.Status, err = ParseStatus(get(ColumnStatus)); err != nil {
		return Project{}, fail(ColumnStatus, err)
	}

	if variant.HasPriority() {
		if p.Priority, err = ParsePriority(get(ColumnPriority)); err != nil {
			return Project{}, fail(ColumnPriority, err)
		}
	}
	if variant.HasDetails() {
		p.AssignedTo = get(ColumnAssignedTo)
		p.AttachmentName = get(ColumnAttachmentName)
		if p.EstimatedHours, err = parseHours(get(ColumnEstimatedHours)); err != nil {
			return Project{}, fail(ColumnEstimatedHours, err)
		}
	}
	return p, nil
}

func parseHours(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	h, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("invalid hours %q", v)
	}
	if h < 0 {
		return 0, fmt.Errorf("hours must not be negative, got %q", v)
	}
	return h, nil
}

// ExportCSV serializes the registry's current collection.
func (r *Registry) ExportCSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, r.variant, r.List()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportCSV parses data and, only if every row parses, replaces the whole
// collection. It returns the number of imported projects.
func (r *Registry) ImportCSV(data []byte) (int, error) {
	projects, err := ImportCSV(bytes.NewReader(data), r.variant)
	if err != nil {
		return 0, err
	}
	r.Replace(projects)
	return len(projects), nil
}
