package services

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIsIdempotent(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	alice := testutil.User(t, st, "alice")
	bob := testutil.User(t, st, "bob")

	require.NoError(t, Follow(ctx, st, alice.UserID, bob.UserID))

	following, err := IsFollowing(ctx, st, alice.UserID, bob.UserID)
	require.NoError(t, err)
	assert.True(t, following)

	count, err := FollowersCount(ctx, st, bob.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// A second follow changes nothing
	require.NoError(t, Follow(ctx, st, alice.UserID, bob.UserID))

	count, err = FollowersCount(ctx, st, bob.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = FollowingCount(ctx, st, alice.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUnfollowRestoresState(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	alice := testutil.User(t, st, "alice")
	bob := testutil.User(t, st, "bob")

	require.NoError(t, Follow(ctx, st, alice.UserID, bob.UserID))
	require.NoError(t, Unfollow(ctx, st, alice.UserID, bob.UserID))

	following, err := IsFollowing(ctx, st, alice.UserID, bob.UserID)
	require.NoError(t, err)
	assert.False(t, following)

	followers, err := FollowersCount(ctx, st, bob.UserID)
	require.NoError(t, err)
	assert.Zero(t, followers)

	followingCount, err := FollowingCount(ctx, st, alice.UserID)
	require.NoError(t, err)
	assert.Zero(t, followingCount)

	// Unfollowing again is a no-op
	require.NoError(t, Unfollow(ctx, st, alice.UserID, bob.UserID))
}

func TestFollowRejectsSelfAndUnknownUsers(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	alice := testutil.User(t, st, "alice")

	assert.ErrorIs(t, Follow(ctx, st, alice.UserID, alice.UserID), ErrSelfFollow)
	assert.ErrorIs(t, Follow(ctx, st, alice.UserID, alice.UserID+100), ErrNotFound)
}

func TestFollowersAndFollowingLists(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	alice := testutil.User(t, st, "alice")
	bob := testutil.User(t, st, "bob")
	carol := testutil.User(t, st, "carol")

	testutil.Follow(t, st, bob, alice)
	testutil.Follow(t, st, carol, alice)
	testutil.Follow(t, st, alice, carol)

	followers, err := Followers(ctx, st, alice.UserID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers.Total)
	require.Len(t, followers.Items, 2)
	assert.Equal(t, "bob", followers.Items[0].Nickname)
	assert.Equal(t, "carol", followers.Items[1].Nickname)

	following, err := Following(ctx, st, alice.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, following.Items, 1)
	assert.Equal(t, "carol", following.Items[0].Nickname)
}

func TestFollowedPosts(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	u1 := testutil.User(t, st, "u1")
	u2 := testutil.User(t, st, "u2")
	u3 := testutil.User(t, st, "u3")

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p1 := testutil.Post(t, st, u1, "post from u1", start)
	p2 := testutil.Post(t, st, u2, "post from u2", start.Add(time.Second))
	p3 := testutil.Post(t, st, u3, "post from u3", start.Add(2*time.Second))
	p4 := testutil.Post(t, st, u1, "second post from u1", start.Add(3*time.Second))

	testutil.Follow(t, st, u1, u2)
	testutil.Follow(t, st, u1, u3)
	testutil.Follow(t, st, u2, u3)

	feed, err := FollowedPosts(ctx, st, u1.UserID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, feed.Total)
	assert.Equal(t, []uint64{p4.PostID, p3.PostID, p2.PostID, p1.PostID}, postIDs(feed.Items))

	feed, err = FollowedPosts(ctx, st, u2.UserID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, feed.Total)
	assert.Equal(t, []uint64{p3.PostID, p2.PostID}, postIDs(feed.Items))

	feed, err = FollowedPosts(ctx, st, u3.UserID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, feed.Total)
	assert.Equal(t, []uint64{p3.PostID}, postIDs(feed.Items))
}

func TestFollowedPostsPagination(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	alice := testutil.User(t, st, "alice")

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint64
	for i := 0; i < 5; i++ {
		ids = append(ids, testutil.Post(t, st, alice, "post", start.Add(time.Duration(i)*time.Minute)).PostID)
	}

	first, err := FollowedPosts(ctx, st, alice.UserID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, first.Total)
	assert.Equal(t, []uint64{ids[4], ids[3]}, postIDs(first.Items))
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrev())

	last, err := FollowedPosts(ctx, st, alice.UserID, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{ids[0]}, postIDs(last.Items))
	assert.False(t, last.HasNext())
	assert.Equal(t, 2, last.PrevPage())

	beyond, err := FollowedPosts(ctx, st, alice.UserID, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.EqualValues(t, 5, beyond.Total)
}

func TestFollowedPostsSkipsPrivateForumPosts(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	alice := testutil.User(t, st, "alice")
	bob := testutil.User(t, st, "bob")
	company, _ := testutil.Company(t, st, bob, "Acme")

	testutil.Follow(t, st, alice, bob)
	now := time.Now()
	public := testutil.Post(t, st, bob, "public forum post", now, testutil.OnCompany(company, false))
	testutil.Post(t, st, bob, "private forum post", now.Add(time.Second), testutil.OnCompany(company, true))

	feed, err := FollowedPosts(ctx, st, alice.UserID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{public.PostID}, postIDs(feed.Items))

	empty, err := FollowedPosts(ctx, st, testutil.User(t, st, "carol").UserID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Items)
}

func postIDs(posts []models.Post) []uint64 {
	ids := make([]uint64, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.PostID)
	}
	return ids
}
