package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCompanyMakesFounderAdmin(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)

	checked := ""
	company, err := CreateCompany(ctx, st, p, CompanyInput{
		Name:        "Acme Builders",
		WebPage:     "https://acme.example.com",
		Description: "Bridges and towers",
	}, func(_ context.Context, url string) error {
		checked = url
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example.com", checked)
	assert.False(t, company.Verified)

	workers, err := CompanyWorkers(ctx, st, company.CompanyID)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, founder.UserID, workers[0].UserID)
	assert.True(t, workers[0].Admin)
	assert.Equal(t, AdministratorPosition, workers[0].Position)

	_, indexed := index.Document("companies", company.CompanyID)
	assert.True(t, indexed)

	// The founder is now employed and cannot found another company
	p, err = LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	_, err = CreateCompany(ctx, st, p, CompanyInput{Name: "Other"}, nil)
	assert.ErrorIs(t, err, ErrAlreadyEmployed)
}

func TestCreateCompanyValidation(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	owner := testutil.User(t, st, "owner")
	testutil.Company(t, st, owner, "Taken")

	p, err := LoadPrincipal(ctx, st, testutil.User(t, st, "newcomer").UserID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input CompanyInput
		check WebPageChecker
		field string
	}{
		{name: "empty name", input: CompanyInput{Name: "  "}, field: "name"},
		{name: "duplicate name", input: CompanyInput{Name: "Taken"}, field: "name"},
		{name: "bad scheme", input: CompanyInput{Name: "New", WebPage: "ftp://x"}, field: "web_page"},
		{
			name:  "unreachable page",
			input: CompanyInput{Name: "New", WebPage: "https://down.example.com"},
			check: func(context.Context, string) error { return errors.New("connection refused") },
			field: "web_page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateCompany(ctx, st, p, tt.input, tt.check)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}

	count, err := NumberWorkers(ctx, st, 2)
	require.NoError(t, err)
	assert.Zero(t, count, "nothing is written when validation fails")
}

func TestCompanyDeletedWhenLastWorkerQuits(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	worker := testutil.User(t, st, "worker")
	outsider := testutil.User(t, st, "outsider")

	company, admin := testutil.Company(t, st, founder, "Acme")
	testutil.Hire(t, st, company, worker, false)

	count, err := NumberWorkers(ctx, st, company.CompanyID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	build := testutil.Build(t, st, outsider, "Tower", company)
	forumPost := testutil.Post(t, st, founder, "company news", time.Now(), testutil.OnCompany(company, false))
	blogPost := testutil.Post(t, st, founder, "my blog", time.Now())
	testutil.Offer(t, st, admin, outsider, "Welder")

	deleted, err := QuitCompany(ctx, st, worker.UserID)
	require.NoError(t, err)
	assert.False(t, deleted)

	working, err := IsWorking(ctx, st, company.CompanyID, worker.UserID)
	require.NoError(t, err)
	assert.False(t, working)

	deleted, err = QuitCompany(ctx, st, founder.UserID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = GetCompany(ctx, st, company.CompanyID)
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := GetBuild(ctx, st, build.BuildID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ContractorID)

	_, err = GetPost(ctx, st, access.Anonymous, forumPost.PostID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetPost(ctx, st, access.Anonymous, blogPost.PostID)
	assert.NoError(t, err)

	offers, err := ReceivedOffers(ctx, st, outsider.UserID)
	require.NoError(t, err)
	assert.Empty(t, offers)

	_, indexed := index.Document("companies", company.CompanyID)
	assert.False(t, indexed)
	_, indexed = index.Document("posts", forumPost.PostID)
	assert.False(t, indexed)

	_, err = QuitCompany(ctx, st, founder.UserID)
	assert.ErrorIs(t, err, ErrNotEmployed)
}

func TestAddAndDelBuildRoundTrip(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	company, _ := testutil.Company(t, st, founder, "Acme")
	build := testutil.Build(t, st, founder, "Bridge", nil)

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)

	require.NoError(t, AddBuild(ctx, st, p, company.CompanyID, build.BuildID))

	builds, err := CompanyBuilds(ctx, st, company.CompanyID)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, build.BuildID, builds[0].BuildID)

	require.NoError(t, DelBuild(ctx, st, p, company.CompanyID, build.BuildID))

	builds, err = CompanyBuilds(ctx, st, company.CompanyID)
	require.NoError(t, err)
	assert.Empty(t, builds)

	reloaded, err := GetBuild(ctx, st, build.BuildID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ContractorID)
	assert.Nil(t, reloaded.Contractor)

	// Deleting twice reports the missing association
	assert.ErrorIs(t, DelBuild(ctx, st, p, company.CompanyID, build.BuildID), ErrNotFound)
}

func TestAddBuildNeedsCompanyAdmin(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	worker := testutil.User(t, st, "worker")
	company, _ := testutil.Company(t, st, founder, "Acme")
	testutil.Hire(t, st, company, worker, false)
	build := testutil.Build(t, st, founder, "Bridge", nil)

	p, err := LoadPrincipal(ctx, st, worker.UserID)
	require.NoError(t, err)

	assert.ErrorIs(t, AddBuild(ctx, st, p, company.CompanyID, build.BuildID), ErrForbidden)
}

func TestUpdateCompany(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	company, _ := testutil.Company(t, st, founder, "Acme")
	testutil.Company(t, st, testutil.User(t, st, "rival"), "Rival")

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)

	taken := "Rival"
	_, err = UpdateCompany(ctx, st, p, company.CompanyID, CompanyUpdate{Name: &taken}, nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	description := "Skyscrapers only"
	updated, err := UpdateCompany(ctx, st, p, company.CompanyID, CompanyUpdate{Description: &description}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Text(description), updated.Description)

	doc, ok := index.Document("companies", company.CompanyID)
	require.True(t, ok)
	assert.Equal(t, description, doc["description"])

	_, err = UpdateCompany(ctx, st, access.Principal{UserID: 99}, company.CompanyID, CompanyUpdate{Description: &description}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
