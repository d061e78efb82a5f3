// company.go
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

// Company is a firm that employs users and contracts builds
type Company struct {
	CompanyID   uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"uniqueIndex;size:120;not null" json:"name"`
	WebPage     *string    `gorm:"uniqueIndex;size:255" json:"web_page,omitempty"`
	Description Text       `json:"description"`
	Verified    bool       `gorm:"not null;default:false" json:"verified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
	Workers     []Employee `gorm:"foreignKey:CompanyID;references:CompanyID" json:"workers,omitempty"`
}

// Employee binds one user to one company
type Employee struct {
	EmployeeID uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	CompanyID  uint64    `gorm:"index;not null" json:"company_id"`
	Company    *Company  `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	Position   string    `gorm:"size:64" json:"position"`
	Salary     *int64    `json:"salary,omitempty"`
	Admin      bool      `gorm:"not null;default:false" json:"admin"`
	Joined     time.Time `gorm:"not null" json:"joined"`
}

// Assignment puts an employee on a build
type Assignment struct {
	EmployeeID uint64    `gorm:"primaryKey;autoIncrement:false" json:"employee_id"`
	BuildID    uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"build_id"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"-"`
	Build      *Build    `gorm:"foreignKey:BuildID;references:BuildID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for Company
func (Company) TableName() string {
	return "companies"
}

// SearchFields lists the columns mirrored into the search index
func (Company) SearchFields() []string {
	return []string{"name", "description"}
}

// TableName overrides the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

// TableName overrides the table name for Assignment
func (Assignment) TableName() string {
	return "employee_builds"
}
