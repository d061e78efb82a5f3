// follows.go
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

package database

import (
	"time"

	"github.com/localnerve/buildnet/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddFollow inserts the (follower, followed) edge. An existing edge is left as is.
// It reports whether a new edge was written.
func AddFollow(tx *gorm.DB, followerID, followedID uint64) (bool, error) {
	edge := models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveFollow deletes the (follower, followed) edge if present.
// It reports whether an edge was removed.
func RemoveFollow(tx *gorm.DB, followerID, followedID uint64) (bool, error) {
	result := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsFollowing reports whether the edge exists
func IsFollowing(tx *gorm.DB, followerID, followedID uint64) (bool, error) {
	var count int64
	err := tx.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}
