package project_test

import (
	"testing"
	"time"

	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := project.ParseDate(v)
	require.NoError(t, err)
	return d
}

func mustCreate(t *testing.T, reg *project.Registry, req project.CreateRequest) *project.Project {
	t.Helper()
	proj, err := reg.Create(req)
	require.NoError(t, err)
	return proj
}

func ids(projects []project.Project) []int64 {
	out := make([]int64, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func TestRegistry_CreateAssignsIDsAndDefaults(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)

	alpha := mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})
	beta := mustCreate(t, reg, project.CreateRequest{Name: "Beta", Status: project.StatusInProgress})

	require.Equal(t, int64(1), alpha.ID)
	require.Equal(t, int64(2), beta.ID)
	require.Equal(t, project.StatusNotStarted, alpha.Status)
	require.Equal(t, project.PriorityLow, alpha.Priority)
	require.Equal(t, project.StatusInProgress, beta.Status)
	require.Equal(t, 2, reg.Len())
	require.Equal(t, []int64{1, 2}, ids(reg.List()))
}

func TestRegistry_CreateRejectsBlankName(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := reg.Create(project.CreateRequest{Name: name})
		require.ErrorIs(t, err, project.ErrInvalidInput)
	}
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_CreateDoesNotValidateDatesOrder(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)

	proj := mustCreate(t, reg, project.CreateRequest{
		Name:      "Backwards",
		StartDate: date(t, "2024-05-10"),
		EndDate:   date(t, "2024-01-01"),
	})
	require.True(t, proj.EndDate.Before(proj.StartDate))
}

func TestRegistry_CreateTruncatesToCalendarDay(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)

	proj := mustCreate(t, reg, project.CreateRequest{
		Name:      "Alpha",
		StartDate: time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC),
	})
	require.Equal(t, "2024-03-09", project.FormatDate(proj.StartDate))
	require.Equal(t, 0, proj.StartDate.Hour())
}

func TestRegistry_VariantDropsUnmodelledFields(t *testing.T) {
	reg := project.NewRegistry(project.VariantBasic)

	proj := mustCreate(t, reg, project.CreateRequest{
		Name:           "Alpha",
		Priority:       project.PriorityHigh,
		AssignedTo:     "dana",
		EstimatedHours: 12,
		AttachmentName: "plan.pdf",
	})
	require.Empty(t, proj.Priority)
	require.Empty(t, proj.AssignedTo)
	require.Zero(t, proj.EstimatedHours)
	require.Empty(t, proj.AttachmentName)

	reg = project.NewRegistry(project.VariantPriority)
	proj = mustCreate(t, reg, project.CreateRequest{Name: "Beta", Priority: project.PriorityHigh, AssignedTo: "dana"})
	require.Equal(t, project.PriorityHigh, proj.Priority)
	require.Empty(t, proj.AssignedTo)
}

func TestRegistry_UpdateRejectsOnlyUnmodelledFields(t *testing.T) {
	reg := project.NewRegistry(project.VariantBasic)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})

	attachment := "a.pdf"
	_, err := reg.Update(1, project.Patch{AttachmentName: &attachment})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	priority := project.PriorityHigh
	_, err = reg.Update(1, project.Patch{Priority: &priority})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	// Mixed patches keep the modelled part.
	desc := "kept"
	updated, err := reg.Update(1, project.Patch{Description: &desc, AttachmentName: &attachment})
	require.NoError(t, err)
	require.Equal(t, "kept", updated.Description)
	require.Empty(t, updated.AttachmentName)

	reg = project.NewRegistry(project.VariantPriority)
	mustCreate(t, reg, project.CreateRequest{Name: "Beta"})
	updated, err = reg.Update(1, project.Patch{Priority: &priority})
	require.NoError(t, err)
	require.Equal(t, project.PriorityHigh, updated.Priority)
}

func TestRegistry_StoresLineBreaksAsLF(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	proj := mustCreate(t, reg, project.CreateRequest{
		Name:        "Alpha\r\nphase 2",
		Description: "line1\r\nline2",
		AssignedTo:  "kim\r\nlee",
	})
	require.Equal(t, "Alpha\nphase 2", proj.Name)
	require.Equal(t, "line1\nline2", proj.Description)
	require.Equal(t, "kim\nlee", proj.AssignedTo)

	desc := "a\r\nb"
	attachment := "notes\r\n.txt"
	updated, err := reg.Update(proj.ID, project.Patch{Description: &desc, AttachmentName: &attachment})
	require.NoError(t, err)
	require.Equal(t, "a\nb", updated.Description)
	require.Equal(t, "notes\n.txt", updated.AttachmentName)
}

func TestRegistry_ListReturnsCopies(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})

	list := reg.List()
	list[0].Name = "mutated"

	got, err := reg.Get(1)
	require.NoError(t, err)
	require.Equal(t, "Alpha", got.Name)
}

func TestRegistry_SequenceIDsStayUniqueAcrossDeletes(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)

	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})
	mustCreate(t, reg, project.CreateRequest{Name: "Beta"})
	require.Equal(t, 1, reg.Delete(1))
	gamma := mustCreate(t, reg, project.CreateRequest{Name: "Gamma"})

	require.Equal(t, int64(3), gamma.ID)
	require.Equal(t, []int64{2, 3}, ids(reg.List()))
}

func TestRegistry_SequenceIDsUniqueForAnyInterleaving(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)

	// c = create, d = delete the oldest live project
	ops := "ccdcddccdcccdd"
	for _, op := range ops {
		if op == 'c' {
			mustCreate(t, reg, project.CreateRequest{Name: "p"})
			continue
		}
		if list := reg.List(); len(list) > 0 {
			reg.Delete(list[0].ID)
		}
	}

	seen := map[int64]bool{}
	for _, p := range reg.List() {
		require.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
}

func TestRegistry_LegacyIDsCollideAfterDelete(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull, project.WithIDPolicy(project.IDLegacy))

	alpha := mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})
	beta := mustCreate(t, reg, project.CreateRequest{Name: "Beta"})
	require.Equal(t, int64(1), alpha.ID)
	require.Equal(t, int64(2), beta.ID)

	reg.Delete(1)
	gamma := mustCreate(t, reg, project.CreateRequest{Name: "Gamma"})

	// size+1 = 2, the id Beta already holds.
	require.Equal(t, int64(2), gamma.ID)
	require.Equal(t, []int64{2, 2}, ids(reg.List()))

	// A delete of the shared id removes both records at once.
	require.Equal(t, 2, reg.Delete(2))
	require.Zero(t, reg.Len())
}

func TestRegistry_UpdateIsIDKeyed(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha", StartDate: date(t, "2024-03-01")})
	mustCreate(t, reg, project.CreateRequest{Name: "Beta", StartDate: date(t, "2024-01-01")})

	// Sorting puts Beta first; editing by id must still hit Alpha.
	sorted, err := reg.Sort(project.SortStartDate)
	require.NoError(t, err)
	require.Equal(t, "Beta", sorted[0].Name)

	name := "Alpha v2"
	hours := 6.5
	updated, err := reg.Update(1, project.Patch{Name: &name, EstimatedHours: &hours})
	require.NoError(t, err)
	require.Equal(t, "Alpha v2", updated.Name)
	require.Equal(t, 6.5, updated.EstimatedHours)

	beta, err := reg.Get(2)
	require.NoError(t, err)
	require.Equal(t, "Beta", beta.Name)
}

func TestRegistry_UpdateIsAllOrNothing(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})

	desc := "changed"
	bad := project.Status("paused")
	_, err := reg.Update(1, project.Patch{Description: &desc, Status: &bad})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	blank := "  "
	_, err = reg.Update(1, project.Patch{Description: &desc, Name: &blank})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	got, err := reg.Get(1)
	require.NoError(t, err)
	require.Empty(t, got.Description)
	require.Equal(t, project.StatusNotStarted, got.Status)
}

func TestRegistry_UpdateStatus(t *testing.T) {
	reg := project.NewRegistry(project.VariantBasic)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})

	proj, err := reg.UpdateStatus(1, project.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, proj.Status)

	_, err = reg.UpdateStatus(42, project.StatusCompleted)
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = reg.UpdateStatus(1, project.Status("nope"))
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestRegistry_DeleteIsIdempotent(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})
	mustCreate(t, reg, project.CreateRequest{Name: "Beta"})

	require.Equal(t, 1, reg.Delete(1))
	before := reg.List()
	require.Equal(t, 0, reg.Delete(1))
	require.Equal(t, before, reg.List())
	require.Equal(t, 0, reg.Delete(99))
}

func TestRegistry_ClearAll(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	require.Equal(t, 0, reg.ClearAll())

	mustCreate(t, reg, project.CreateRequest{Name: "Alpha"})
	mustCreate(t, reg, project.CreateRequest{Name: "Beta"})
	require.Equal(t, 2, reg.ClearAll())
	require.Empty(t, reg.List())
	require.Equal(t, 0, reg.ClearAll())
	require.Empty(t, reg.List())

	// The sequence continues after a clear.
	next := mustCreate(t, reg, project.CreateRequest{Name: "Gamma"})
	require.Equal(t, int64(3), next.ID)
}

func TestRegistry_ReplaceTrustsIDs(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "Old"})

	reg.Replace([]project.Project{
		{ID: 7, Name: "Seven", Status: project.StatusCompleted, Priority: project.PriorityHigh},
		{ID: 7, Name: "Seven again", Status: project.StatusNotStarted, Priority: project.PriorityLow},
	})
	require.Equal(t, []int64{7, 7}, ids(reg.List()))

	next := mustCreate(t, reg, project.CreateRequest{Name: "Eight"})
	require.Equal(t, int64(8), next.ID)
}

func TestParseIDPolicy(t *testing.T) {
	p, err := project.ParseIDPolicy("")
	require.NoError(t, err)
	require.Equal(t, project.IDSequence, p)

	p, err = project.ParseIDPolicy("Legacy")
	require.NoError(t, err)
	require.Equal(t, project.IDLegacy, p)

	_, err = project.ParseIDPolicy("uuid")
	require.ErrorIs(t, err, project.ErrInvalidInput)
}
