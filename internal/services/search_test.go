package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/logging"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSearchIndexFollowsCommits(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	author := testutil.User(t, st, "author")

	p, err := LoadPrincipal(ctx, st, author.UserID)
	require.NoError(t, err)

	post, err := CreatePost(ctx, st, p, PostInput{Body: "Rebar delivery on Monday"})
	require.NoError(t, err)

	doc, ok := index.Document("posts", post.PostID)
	require.True(t, ok)
	assert.Equal(t, "Rebar delivery on Monday", doc["body"])

	require.NoError(t, st.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Delete(post).Error
	}))
	_, ok = index.Document("posts", post.PostID)
	assert.False(t, ok)
}

func TestSearchIndexIgnoresRolledBackWrites(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	author := testutil.User(t, st, "author")

	boom := errors.New("boom")
	post := models.Post{Body: "never committed", AuthorID: author.UserID, Timestamp: time.Now().UTC()}
	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Zero(t, index.Len("posts"))

	var count int64
	require.NoError(t, st.DB.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSearchIndexFailureDoesNotFailWrites(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	author := testutil.User(t, st, "author")
	p, err := LoadPrincipal(ctx, st, author.UserID)
	require.NoError(t, err)

	index.SetFailure(errors.New("index unreachable"))

	post, err := CreatePost(ctx, st, p, PostInput{Body: "still saved"})
	require.NoError(t, err)

	found, err := GetPost(ctx, st, p, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, models.Text("still saved"), found.Body)

	result, err := SearchPosts(ctx, st, p, "saved", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)

	index.SetFailure(nil)
	_, ok := index.Document("posts", post.PostID)
	assert.False(t, ok, "a failed update is not retried")
}

func TestSearchPostsKeepsRelevanceOrder(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	author := testutil.User(t, st, "author")

	now := time.Now()
	once := testutil.Post(t, st, author, "concrete", now)
	thrice := testutil.Post(t, st, author, "concrete concrete concrete", now.Add(time.Second))
	twice := testutil.Post(t, st, author, "concrete and more concrete", now.Add(2*time.Second))
	testutil.Post(t, st, author, "steel", now.Add(3*time.Second))

	result, err := SearchPosts(ctx, st, access.Anonymous, "concrete", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
	assert.Equal(t, []uint64{thrice.PostID, twice.PostID, once.PostID}, postIDs(result.Items))

	second, err := SearchPosts(ctx, st, access.Anonymous, "concrete", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{once.PostID}, postIDs(second.Items))

	none, err := SearchPosts(ctx, st, access.Anonymous, "timber", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, none.Items)
	assert.Zero(t, none.Total)
}

func TestSearchPostsDropsHiddenPosts(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	company, _ := testutil.Company(t, st, founder, "Acme")

	hidden := testutil.Post(t, st, founder, "tender price", time.Now(), testutil.OnCompany(company, true))
	open := testutil.Post(t, st, founder, "tender open", time.Now())

	anonymous, err := SearchPosts(ctx, st, access.Anonymous, "tender", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{open.PostID}, postIDs(anonymous.Items))
	assert.EqualValues(t, 2, anonymous.Total)

	member, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	visible, err := SearchPosts(ctx, st, member, "tender", 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{open.PostID, hidden.PostID}, postIDs(visible.Items))
}

func TestSearchOtherEntities(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "riveter")
	company, _ := testutil.Company(t, st, founder, "Riveting Works")
	build := testutil.Build(t, st, founder, "Riveted Bridge", company)

	users, err := SearchUsers(ctx, st, "riveter", 1, 10)
	require.NoError(t, err)
	require.Len(t, users.Items, 1)
	assert.Equal(t, founder.UserID, users.Items[0].UserID)

	companies, err := SearchCompanies(ctx, st, "riveting", 1, 10)
	require.NoError(t, err)
	require.Len(t, companies.Items, 1)
	assert.Equal(t, company.CompanyID, companies.Items[0].CompanyID)

	builds, err := SearchBuilds(ctx, st, "bridge", 1, 10)
	require.NoError(t, err)
	require.Len(t, builds.Items, 1)
	assert.Equal(t, build.BuildID, builds.Items[0].BuildID)
	require.NotNil(t, builds.Items[0].Contractor)
	assert.Equal(t, "Riveting Works", builds.Items[0].Contractor.Name)

	empty, err := SearchBuilds(ctx, st, "   ", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, types.EmptyPage[models.Build](1, 10), empty)
}

func TestReindexReplaysEveryRow(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	company, _ := testutil.Company(t, st, founder, "Acme")
	testutil.Build(t, st, founder, "Tower", company)
	for i := 0; i < 3; i++ {
		testutil.Post(t, st, founder, "post", time.Now())
	}

	fresh := search.NewMemory()
	sync := search.NewSync(fresh, logging.Discard())

	written, err := sync.Reindex(ctx, st.DB, 2, database.SearchModels()...)
	require.NoError(t, err)
	assert.Equal(t, 6, written)
	assert.Equal(t, 1, fresh.Len("users"))
	assert.Equal(t, 1, fresh.Len("companies"))
	assert.Equal(t, 1, fresh.Len("builds"))
	assert.Equal(t, 3, fresh.Len("posts"))
}
