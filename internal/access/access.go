// access.go
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

// Package access holds the visibility rules for posts and the membership checks
// that guard scoped actions.
package access

import (
	"github.com/localnerve/buildnet/internal/models"
	"gorm.io/gorm"
)

// Principal is the requester. The zero value is the anonymous principal.
type Principal struct {
	UserID uint64
	// Admin is the site-wide admin flag
	Admin bool
	// CompanyID is the employer, 0 when unemployed
	CompanyID uint64
	// EmployeeID is the employment record, 0 when unemployed
	EmployeeID uint64
	// CompanyAdmin reports whether the employee administers their company
	CompanyAdmin bool
}

// Anonymous is the principal of unauthenticated requests
var Anonymous = Principal{}

// Authenticated reports whether the principal is a known user
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// Employed reports whether the principal works for a company
func (p Principal) Employed() bool {
	return p.CompanyID != 0
}

// MemberOf reports whether the principal works for companyID
func (p Principal) MemberOf(companyID uint64) bool {
	return p.CompanyID != 0 && p.CompanyID == companyID
}

// AdministersCompany reports whether the principal administers companyID
func (p Principal) AdministersCompany(companyID uint64) bool {
	return p.MemberOf(companyID) && p.CompanyAdmin
}

// Scope is the forum a post belongs to
type Scope int

const (
	ScopeBlog Scope = iota
	ScopeBuild
	ScopeCompany
)

func (s Scope) String() string {
	switch s {
	case ScopeBuild:
		return "build"
	case ScopeCompany:
		return "company"
	}
	return "blog"
}

// PostScope returns the forum of post
func PostScope(post models.Post) Scope {
	switch {
	case post.BuildID != nil:
		return ScopeBuild
	case post.CompanyID != nil:
		return ScopeCompany
	}
	return ScopeBlog
}

// CanViewPost decides whether p may see post. contractorID is the contractor of
// the post's build and is only consulted for private build posts.
func CanViewPost(p Principal, post models.Post, contractorID *uint64) bool {
	if !post.PrivateCompany {
		return true
	}

	switch PostScope(post) {
	case ScopeCompany:
		return p.MemberOf(*post.CompanyID)
	case ScopeBuild:
		return contractorID != nil && p.MemberOf(*contractorID)
	}

	// private without a forum is never stored
	return false
}

// CanViewBuildPrivate reports whether p may read or write the private forum of a
// build contracted by contractorID
func CanViewBuildPrivate(p Principal, contractorID *uint64) bool {
	return contractorID != nil && p.MemberOf(*contractorID)
}

// CanEditBuild reports whether p may edit build
func CanEditBuild(p Principal, build models.Build) bool {
	if !p.Authenticated() {
		return false
	}
	if p.Admin || build.CreatorID == p.UserID {
		return true
	}
	return build.ContractorID != nil && p.MemberOf(*build.ContractorID)
}

// VisiblePosts is the query form of CanViewPost for listings over the posts table
func VisiblePosts(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !p.Employed() {
			return db.Where("posts.private_company = ?", false)
		}

		contracted := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Build{}).
			Select("build_id").
			Where("contractor_id = ?", p.CompanyID)

		return db.Where(
			"(posts.private_company = ? OR posts.company_id = ? OR posts.build_id IN (?))",
			false, p.CompanyID, contracted,
		)
	}
}
