package services

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBuildContractedByCreatorsCompany(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	loner := testutil.User(t, st, "loner")
	company, _ := testutil.Company(t, st, founder, "Acme")

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)

	build, err := CreateBuild(ctx, st, p, BuildInput{
		Name:      "Harbour Wall",
		Category:  "civil",
		Worth:     types.Of(int64(2500000)),
		StartDate: "2025-03-01",
		EndDate:   "2026-03-01",
	})
	require.NoError(t, err)
	require.NotNil(t, build.ContractorID)
	assert.Equal(t, company.CompanyID, *build.ContractorID)
	assert.Equal(t, "2025-03-01", time.Time(*build.StartDate).Format(dateLayout))

	_, ok := index.Document("builds", build.BuildID)
	assert.True(t, ok)

	solo, err := LoadPrincipal(ctx, st, loner.UserID)
	require.NoError(t, err)
	own, err := CreateBuild(ctx, st, solo, BuildInput{Name: "Shed"})
	require.NoError(t, err)
	assert.Nil(t, own.ContractorID)
}

func TestCreateBuildValidation(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	creator := testutil.User(t, st, "creator")
	testutil.Build(t, st, creator, "Taken", nil)

	p, err := LoadPrincipal(ctx, st, creator.UserID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input BuildInput
		field string
	}{
		{name: "empty name", input: BuildInput{Name: ""}, field: "name"},
		{name: "duplicate name", input: BuildInput{Name: "Taken"}, field: "name"},
		{name: "negative worth", input: BuildInput{Name: "New", Worth: types.Of(int64(-5))}, field: "worth"},
		{name: "bad date", input: BuildInput{Name: "New", StartDate: "01/02/2025"}, field: "start_date"},
		{name: "end before start", input: BuildInput{Name: "New", StartDate: "2025-02-01", EndDate: "2025-01-01"}, field: "end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateBuild(ctx, st, p, tt.input)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestUpdateBuildPermissionsAndContractor(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	creator := testutil.User(t, st, "creator")
	stranger := testutil.User(t, st, "stranger")
	founder := testutil.User(t, st, "founder")
	company, _ := testutil.Company(t, st, founder, "Acme")
	build := testutil.Build(t, st, creator, "Depot", nil)

	outsider, err := LoadPrincipal(ctx, st, stranger.UserID)
	require.NoError(t, err)
	place := "Shelbyville"
	_, err = UpdateBuild(ctx, st, outsider, build.BuildID, BuildUpdate{Place: &place})
	assert.ErrorIs(t, err, ErrForbidden)

	owner, err := LoadPrincipal(ctx, st, creator.UserID)
	require.NoError(t, err)

	unknown := "Nobody Inc"
	_, err = UpdateBuild(ctx, st, owner, build.BuildID, BuildUpdate{Contractor: &unknown})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "contractor", validation.Field)

	name := "Acme"
	updated, err := UpdateBuild(ctx, st, owner, build.BuildID, BuildUpdate{Place: &place, Contractor: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.ContractorID)
	assert.Equal(t, company.CompanyID, *updated.ContractorID)

	doc, ok := index.Document("builds", build.BuildID)
	require.True(t, ok)
	assert.Equal(t, place, doc["place"])

	// Employees of the contractor may now edit the build
	member, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	worth := types.Of(int64(10))
	_, err = UpdateBuild(ctx, st, member, build.BuildID, BuildUpdate{Worth: worth})
	require.NoError(t, err)

	_, err = UpdateBuild(ctx, st, member, build.BuildID+100, BuildUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignEmployees(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	worker := testutil.User(t, st, "worker")
	company, _ := testutil.Company(t, st, founder, "Acme")
	employee := testutil.Hire(t, st, company, worker, false)
	build := testutil.Build(t, st, founder, "Silo", company)

	admin, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	plain, err := LoadPrincipal(ctx, st, worker.UserID)
	require.NoError(t, err)

	assert.ErrorIs(t, AssignEmployee(ctx, st, plain, build.BuildID, employee.EmployeeID), ErrForbidden)

	require.NoError(t, AssignEmployee(ctx, st, admin, build.BuildID, employee.EmployeeID))
	require.NoError(t, AssignEmployee(ctx, st, admin, build.BuildID, employee.EmployeeID))

	building, err := IsBuilding(ctx, st, employee.EmployeeID, build.BuildID)
	require.NoError(t, err)
	assert.True(t, building)

	employees, err := BuildEmployees(ctx, st, build.BuildID)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	require.NotNil(t, employees[0].User)
	assert.Equal(t, "worker", employees[0].User.Nickname)

	builds, err := EmployeeBuilds(ctx, st, employee.EmployeeID)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, build.BuildID, builds[0].BuildID)

	require.NoError(t, UnassignEmployee(ctx, st, admin, build.BuildID, employee.EmployeeID))
	building, err = IsBuilding(ctx, st, employee.EmployeeID, build.BuildID)
	require.NoError(t, err)
	assert.False(t, building)

	assert.ErrorIs(t, AssignEmployee(ctx, st, admin, build.BuildID+100, employee.EmployeeID), ErrNotFound)
}
