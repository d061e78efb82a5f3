// post.go
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

// Post is a message on the blog, a company forum, or a build forum.
// BuildID and CompanyID are never both set.
type Post struct {
	PostID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Body           Text      `gorm:"not null" json:"body"`
	Timestamp      time.Time `gorm:"index:idx_posts_timestamp;not null" json:"timestamp"`
	AuthorID       uint64    `gorm:"index;not null" json:"author_id"`
	Author         *User     `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
	BuildID        *uint64   `gorm:"index" json:"build_id,omitempty"`
	Build          *Build    `gorm:"foreignKey:BuildID;references:BuildID" json:"build,omitempty"`
	CompanyID      *uint64   `gorm:"index;check:chk_posts_single_forum,build_id IS NULL OR company_id IS NULL" json:"company_id,omitempty"`
	Company        *Company  `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	PrivateCompany bool      `gorm:"index;not null;default:false" json:"private_company"`
}

// TableName overrides the table name for Post
func (Post) TableName() string {
	return "posts"
}

// SearchFields lists the columns mirrored into the search index
func (Post) SearchFields() []string {
	return []string{"body"}
}

// Public reports whether the post belongs to no forum and is not private
func (p Post) Public() bool {
	return p.BuildID == nil && p.CompanyID == nil && !p.PrivateCompany
}
