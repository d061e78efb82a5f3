// follow.go
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

package models

import "time"

// Follow is one directed edge of the follower graph
type Follow struct {
	FollowerID uint64    `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"followed_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID;references:UserID" json:"-"`
	Followed   *User     `gorm:"foreignKey:FollowedID;references:UserID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for Follow
func (Follow) TableName() string {
	return "followers"
}
