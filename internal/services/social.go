// social.go
//
// A community service for builders, their firms and their building projects
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of buildnet.
// buildnet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// buildnet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with buildnet.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"

	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/metrics"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Follow makes followerID follow followedID. Following twice is a no-op.
func Follow(ctx context.Context, st *database.Store, followerID, followedID uint64) error {
	if followerID == followedID {
		metrics.FollowRequests.WithLabelValues(metrics.ResultError).Inc()
		return ErrSelfFollow
	}

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		found, err := exists(tx, &models.User{}, "user_id = ?", followedID)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		_, err = database.AddFollow(tx, followerID, followedID)
		return err
	})
	if err != nil {
		metrics.FollowRequests.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.FollowRequests.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

// Unfollow removes the edge. Unfollowing a user that is not followed is a no-op.
func Unfollow(ctx context.Context, st *database.Store, followerID, followedID uint64) error {
	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		_, err := database.RemoveFollow(tx, followerID, followedID)
		return err
	})
	if err != nil {
		metrics.UnfollowRequests.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.UnfollowRequests.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

// IsFollowing reports whether followerID follows followedID
func IsFollowing(ctx context.Context, st *database.Store, followerID, followedID uint64) (bool, error) {
	return database.IsFollowing(st.DB.WithContext(ctx), followerID, followedID)
}

// FollowersCount returns how many users follow userID
func FollowersCount(ctx context.Context, st *database.Store, userID uint64) (int64, error) {
	var count int64
	err := st.DB.WithContext(ctx).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

// FollowingCount returns how many users userID follows
func FollowingCount(ctx context.Context, st *database.Store, userID uint64) (int64, error) {
	var count int64
	err := st.DB.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// Followers lists the users following userID
func Followers(ctx context.Context, st *database.Store, userID uint64, page, perPage int) (types.Page[models.User], error) {
	edges := st.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Follow{}).
		Select("follower_id").
		Where("followed_id = ?", userID)

	q := st.DB.WithContext(ctx).Model(&models.User{}).Where("users.user_id IN (?)", edges)
	return paginate[models.User](q, page, perPage, "users.nickname")
}

// Following lists the users userID follows
func Following(ctx context.Context, st *database.Store, userID uint64, page, perPage int) (types.Page[models.User], error) {
	edges := st.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	q := st.DB.WithContext(ctx).Model(&models.User{}).Where("users.user_id IN (?)", edges)
	return paginate[models.User](q, page, perPage, "users.nickname")
}

// FollowedPosts is the home feed of userID: their own posts and the posts of every
// user they follow, newest first, restricted to posts that are not company private.
func FollowedPosts(ctx context.Context, st *database.Store, userID uint64, page, perPage int) (types.Page[models.Post], error) {
	followed := st.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	q := st.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("(posts.author_id = ? OR posts.author_id IN (?))", userID, followed).
		Where("posts.private_company = ?", false)

	if st.Dialect() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_posts_timestamp").ForOrderBy())
	}

	return paginate[models.Post](q, page, perPage, postOrder, "Author")
}
