package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateCompanyPostVisibility(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	acmeFounder := testutil.User(t, st, "acme")
	rivalFounder := testutil.User(t, st, "rival")
	visitor := testutil.User(t, st, "visitor")
	acme, _ := testutil.Company(t, st, acmeFounder, "Acme")
	rival, _ := testutil.Company(t, st, rivalFounder, "Rival")

	secret := testutil.Post(t, st, acmeFounder, "acme secret", time.Now(), testutil.OnCompany(acme, true))
	testutil.Post(t, st, acmeFounder, "acme news", time.Now(), testutil.OnCompany(acme, false))

	member, err := LoadPrincipal(ctx, st, acmeFounder.UserID)
	require.NoError(t, err)
	outsider, err := LoadPrincipal(ctx, st, rivalFounder.UserID)
	require.NoError(t, err)
	loner, err := LoadPrincipal(ctx, st, visitor.UserID)
	require.NoError(t, err)

	// Present in its own private listing for a member
	own, err := ListCompanyForum(ctx, st, member, acme.CompanyID, true, 1, 10)
	require.NoError(t, err)
	assert.Contains(t, postIDs(own.Items), secret.PostID)

	// Absent from the public listings
	for _, p := range []access.Principal{access.Anonymous, loner, outsider, member} {
		public, err := ListCompanyForum(ctx, st, p, acme.CompanyID, false, 1, 10)
		require.NoError(t, err)
		assert.NotContains(t, postIDs(public.Items), secret.PostID)

		userPosts, err := ListUserPosts(ctx, st, p, acmeFounder.UserID, 1, 10)
		require.NoError(t, err)
		if p == member {
			assert.Contains(t, postIDs(userPosts.Items), secret.PostID)
		} else {
			assert.NotContains(t, postIDs(userPosts.Items), secret.PostID)
		}
	}

	// Absent from another company's private listing
	other, err := ListCompanyForum(ctx, st, outsider, rival.CompanyID, true, 1, 10)
	require.NoError(t, err)
	assert.NotContains(t, postIDs(other.Items), secret.PostID)

	// Outsiders cannot open the private forum at all
	_, err = ListCompanyForum(ctx, st, outsider, acme.CompanyID, true, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = GetPost(ctx, st, outsider, secret.PostID)
	assert.ErrorIs(t, err, ErrNotFound)
	found, err := GetPost(ctx, st, member, secret.PostID)
	require.NoError(t, err)
	assert.Equal(t, secret.PostID, found.PostID)
}

func TestPrivateBuildPostVisibility(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	creator := testutil.User(t, st, "creator")
	company, _ := testutil.Company(t, st, founder, "Acme")
	build := testutil.Build(t, st, creator, "Dam", company)

	member, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	stranger, err := LoadPrincipal(ctx, st, creator.UserID)
	require.NoError(t, err)

	post, err := CreatePost(ctx, st, member, PostInput{
		Body:    "pour schedule",
		BuildID: types.Of(build.BuildID),
		Private: true,
	})
	require.NoError(t, err)

	_, err = CreatePost(ctx, st, stranger, PostInput{Body: "let me in", BuildID: types.Of(build.BuildID), Private: true})
	assert.ErrorIs(t, err, ErrForbidden)

	private, err := ListBuildForum(ctx, st, member, build.BuildID, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{post.PostID}, postIDs(private.Items))

	_, err = ListBuildForum(ctx, st, stranger, build.BuildID, true, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	public, err := ListBuildForum(ctx, st, stranger, build.BuildID, false, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, public.Items)

	_, err = GetPost(ctx, st, stranger, post.PostID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	author := testutil.User(t, st, "author")
	company, _ := testutil.Company(t, st, author, "Acme")
	build := testutil.Build(t, st, author, "Bridge", nil)

	p, err := LoadPrincipal(ctx, st, author.UserID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input PostInput
		field string
	}{
		{name: "empty", input: PostInput{Body: "   "}, field: "body"},
		{name: "too long", input: PostInput{Body: strings.Repeat("x", MaxPostLength+1)}, field: "body"},
		{
			name:  "two forums",
			input: PostInput{Body: "hi", BuildID: types.Of(build.BuildID), CompanyID: types.Of(company.CompanyID)},
			field: "forum",
		},
		{name: "private blog", input: PostInput{Body: "hi", Private: true}, field: "private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreatePost(ctx, st, p, tt.input)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}

	_, err = CreatePost(ctx, st, access.Anonymous, PostInput{Body: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = CreatePost(ctx, st, p, PostInput{Body: "hi", CompanyID: types.Of(company.CompanyID + 100)})
	assert.ErrorIs(t, err, ErrNotFound)

	blog, err := ListBlog(ctx, st, p, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, blog.Total, "nothing is written when validation fails")
}

func TestBlogListsOnlyUnscopedPosts(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	author := testutil.User(t, st, "author")
	company, _ := testutil.Company(t, st, author, "Acme")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := testutil.Post(t, st, author, "older", start)
	testutil.Post(t, st, author, "forum", start.Add(time.Minute), testutil.OnCompany(company, false))
	newer := testutil.Post(t, st, author, "newer", start.Add(2*time.Minute))

	blog, err := ListBlog(ctx, st, access.Anonymous, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{newer.PostID, older.PostID}, postIDs(blog.Items))
	require.NotNil(t, blog.Items[0].Author)
	assert.Equal(t, "author", blog.Items[0].Author.Nickname)
}

func TestPostScopeCheckConstraint(t *testing.T) {
	st, _ := testutil.NewStore(t)
	author := testutil.User(t, st, "author")
	company, _ := testutil.Company(t, st, author, "Acme")
	build := testutil.Build(t, st, author, "Bridge", nil)

	post := models.Post{
		Body:      "both",
		AuthorID:  author.UserID,
		Timestamp: time.Now().UTC(),
		BuildID:   &build.BuildID,
		CompanyID: &company.CompanyID,
	}
	assert.Error(t, st.DB.Create(&post).Error)
}
