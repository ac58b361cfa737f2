package project_test

import (
	"testing"

	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, variant project.Variant) *project.Registry {
	t.Helper()
	reg := project.NewRegistry(variant)
	mustCreate(t, reg, project.CreateRequest{Name: "A", Status: project.StatusInProgress, StartDate: date(t, "2024-03-01"), EndDate: date(t, "2024-04-01")})
	mustCreate(t, reg, project.CreateRequest{Name: "B", Status: project.StatusNotStarted, StartDate: date(t, "2024-01-15"), EndDate: date(t, "2024-06-01")})
	mustCreate(t, reg, project.CreateRequest{Name: "C", Status: project.StatusInProgress, StartDate: date(t, "2024-01-15"), EndDate: date(t, "2024-02-01")})
	mustCreate(t, reg, project.CreateRequest{Name: "D", Status: project.StatusCompleted, StartDate: date(t, "2023-12-01"), EndDate: date(t, "2024-05-01")})
	return reg
}

func TestRegistry_FilterAllIsIdentity(t *testing.T) {
	reg := seed(t, project.VariantBasic)

	got, err := reg.Filter(project.FilterAll)
	require.NoError(t, err)
	require.Equal(t, reg.List(), got)
}

func TestRegistry_FilterKeepsOrder(t *testing.T) {
	reg := seed(t, project.VariantBasic)

	cases := map[project.Status][]int64{
		project.StatusInProgress: {1, 3},
		project.StatusNotStarted: {2},
		project.StatusCompleted:  {4},
	}
	for status, want := range cases {
		got, err := reg.Filter(project.StatusFilter(status))
		require.NoError(t, err)
		require.Equal(t, want, ids(got), "status %s", status)
		for _, p := range got {
			require.Equal(t, status, p.Status)
		}
	}
}

func TestRegistry_FilterRejectsUnknownStatus(t *testing.T) {
	reg := seed(t, project.VariantBasic)

	_, err := reg.Filter(project.StatusFilter("archived"))
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestRegistry_SortByStartDateIsStable(t *testing.T) {
	reg := seed(t, project.VariantFull)

	got, err := reg.Sort(project.SortStartDate)
	require.NoError(t, err)
	// B and C share a start date and keep insertion order.
	require.Equal(t, []int64{4, 2, 3, 1}, ids(got))
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].StartDate.Before(got[i-1].StartDate))
	}

	// The registry itself keeps insertion order.
	require.Equal(t, []int64{1, 2, 3, 4}, ids(reg.List()))
}

func TestRegistry_SortByEndDate(t *testing.T) {
	reg := seed(t, project.VariantFull)

	got, err := reg.Sort(project.SortEndDate)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1, 4, 2}, ids(got))
}

func TestRegistry_SortTwiceIsIdempotent(t *testing.T) {
	reg := project.NewRegistry(project.VariantFull)
	mustCreate(t, reg, project.CreateRequest{Name: "A", StartDate: date(t, "2024-05-01")})
	mustCreate(t, reg, project.CreateRequest{Name: "B", StartDate: date(t, "2024-01-01")})
	mustCreate(t, reg, project.CreateRequest{Name: "C", StartDate: date(t, "2024-03-01")})

	once, err := reg.Sort(project.SortStartDate)
	require.NoError(t, err)

	sorted := project.NewRegistry(project.VariantFull)
	sorted.Replace(once)
	twice, err := sorted.Sort(project.SortStartDate)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestRegistry_SortUnsupportedBeforeFullVariant(t *testing.T) {
	for _, variant := range []project.Variant{project.VariantBasic, project.VariantPriority} {
		reg := seed(t, variant)
		_, err := reg.Sort(project.SortStartDate)
		require.ErrorIs(t, err, project.ErrSortUnsupported)

		_, err = reg.Query(project.ListOptions{SortBy: project.SortEndDate})
		require.ErrorIs(t, err, project.ErrSortUnsupported)
	}
}

func TestRegistry_SortRequiresKnownKey(t *testing.T) {
	reg := seed(t, project.VariantFull)

	_, err := reg.Sort(project.SortNone)
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestRegistry_QueryFiltersThenSorts(t *testing.T) {
	reg := seed(t, project.VariantFull)

	got, err := reg.Query(project.ListOptions{
		Status: project.StatusFilter(project.StatusInProgress),
		SortBy: project.SortStartDate,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1}, ids(got))

	all, err := reg.Query(project.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4}, ids(all))
}

func TestParseStatusFilterAndSortKey(t *testing.T) {
	f, err := project.ParseStatusFilter("")
	require.NoError(t, err)
	require.Equal(t, project.FilterAll, f)

	f, err = project.ParseStatusFilter("In Progress")
	require.NoError(t, err)
	require.Equal(t, project.StatusFilter(project.StatusInProgress), f)

	_, err = project.ParseStatusFilter("blocked")
	require.ErrorIs(t, err, project.ErrInvalidInput)

	k, err := project.ParseSortKey("Start Date")
	require.NoError(t, err)
	require.Equal(t, project.SortStartDate, k)

	k, err = project.ParseSortKey("endDate")
	require.NoError(t, err)
	require.Equal(t, project.SortEndDate, k)

	_, err = project.ParseSortKey("name")
	require.ErrorIs(t, err, project.ErrInvalidInput)
}
