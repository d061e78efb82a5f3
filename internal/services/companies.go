// companies.go
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
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdministratorPosition is the position given to the founder of a company
const AdministratorPosition = "Administrator"

// WebPageChecker verifies that a company web page answers
type WebPageChecker func(ctx context.Context, url string) error

// CompanyInput is the payload for a new company
type CompanyInput struct {
	Name        string `json:"name"`
	WebPage     string `json:"web_page"`
	Description string `json:"description"`
}

// CompanyUpdate carries the company fields to change. Nil fields are left alone.
type CompanyUpdate struct {
	Name        *string `json:"name"`
	WebPage     *string `json:"web_page"`
	Description *string `json:"description"`
}

// CreateCompany registers a company and makes its founder the administrator employee.
// Companies founded by site admins are verified.
func CreateCompany(ctx context.Context, st *database.Store, p access.Principal, in CompanyInput, check WebPageChecker) (*models.Company, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthorized
	}
	if p.Employed() {
		return nil, ErrAlreadyEmployed
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return nil, invalid("name", "must be between 1 and 120 characters")
	}

	db := st.DB.WithContext(ctx)
	if taken, err := exists(db, &models.Company{}, "name = ?", name); err != nil {
		return nil, err
	} else if taken {
		return nil, invalid("name", "is already registered")
	}

	webPage, err := checkWebPage(ctx, db, in.WebPage, 0, check)
	if err != nil {
		return nil, err
	}

	company := models.Company{
		Name:        name,
		WebPage:     webPage,
		Description: models.Text(strings.TrimSpace(in.Description)),
		Verified:    p.Admin,
	}

	err = st.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return duplicate(err, "name", "is already registered")
		}

		founder := models.Employee{
			UserID:    p.UserID,
			CompanyID: company.CompanyID,
			Position:  AdministratorPosition,
			Admin:     true,
			Joined:    time.Now().UTC(),
		}
		if err := tx.Create(&founder).Error; err != nil {
			return duplicate(err, "user", ErrAlreadyEmployed.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	st.Log.WithField("company_id", company.CompanyID).Info("company created")
	return &company, nil
}

// UpdateCompany changes a company. Only its admins and site admins may do so.
func UpdateCompany(ctx context.Context, st *database.Store, p access.Principal, companyID uint64, in CompanyUpdate, check WebPageChecker) (*models.Company, error) {
	if !p.Admin && !p.AdministersCompany(companyID) {
		return nil, ErrForbidden
	}

	var company models.Company
	db := st.DB.WithContext(ctx)
	if err := quiet(db).First(&company, "company_id = ?", companyID).Error; err != nil {
		return nil, notFound(err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || utf8.RuneCountInString(name) > 120 {
			return nil, invalid("name", "must be between 1 and 120 characters")
		}
		if name != company.Name {
			taken, err := exists(db, &models.Company{}, "name = ? AND company_id <> ?", name, companyID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, invalid("name", "is already registered")
			}
			company.Name = name
		}
	}
	if in.WebPage != nil {
		current := ""
		if company.WebPage != nil {
			current = *company.WebPage
		}
		if strings.TrimSpace(*in.WebPage) != current {
			webPage, err := checkWebPage(ctx, db, *in.WebPage, companyID, check)
			if err != nil {
				return nil, err
			}
			company.WebPage = webPage
		}
	}
	if in.Description != nil {
		company.Description = models.Text(strings.TrimSpace(*in.Description))
	}

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Save(&company).Error
	})
	if err != nil {
		return nil, duplicate(err, "name", "is already registered")
	}
	return &company, nil
}

// checkWebPage validates an optional web page: unique among other companies and answering HTTP 200
func checkWebPage(ctx context.Context, db *gorm.DB, raw string, companyID uint64, check WebPageChecker) (*string, error) {
	webPage := strings.TrimSpace(raw)
	if webPage == "" {
		return nil, nil
	}
	if !strings.HasPrefix(webPage, "http://") && !strings.HasPrefix(webPage, "https://") {
		return nil, invalid("web_page", "must be an http or https address")
	}

	taken, err := exists(db, &models.Company{}, "web_page = ? AND company_id <> ?", webPage, companyID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid("web_page", "is already registered")
	}

	if check != nil {
		if err := check(ctx, webPage); err != nil {
			return nil, invalid("web_page", "did not answer: %v", err)
		}
	}
	return &webPage, nil
}

// GetCompany loads a company by id
func GetCompany(ctx context.Context, st *database.Store, companyID uint64) (*models.Company, error) {
	var company models.Company
	if err := quiet(st.DB.WithContext(ctx)).First(&company, "company_id = ?", companyID).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// ListCompanies lists companies by name
func ListCompanies(ctx context.Context, st *database.Store, page, perPage int) (types.Page[models.Company], error) {
	q := st.DB.WithContext(ctx).Model(&models.Company{})
	return paginate[models.Company](q, page, perPage, "companies.name")
}

// CompanyWorkers lists the employees of a company with their users
func CompanyWorkers(ctx context.Context, st *database.Store, companyID uint64) ([]models.Employee, error) {
	var workers []models.Employee
	err := st.DB.WithContext(ctx).
		Preload("User").
		Where("company_id = ?", companyID).
		Order("joined, employee_id").
		Find(&workers).Error
	return workers, err
}

// CompanyBuilds lists the builds a company contracts
func CompanyBuilds(ctx context.Context, st *database.Store, companyID uint64) ([]models.Build, error) {
	var builds []models.Build
	err := st.DB.WithContext(ctx).
		Where("contractor_id = ?", companyID).
		Order("post_date DESC, build_id DESC").
		Find(&builds).Error
	return builds, err
}

// NumberWorkers counts the employees of a company
func NumberWorkers(ctx context.Context, st *database.Store, companyID uint64) (int64, error) {
	var count int64
	err := st.DB.WithContext(ctx).Model(&models.Employee{}).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}

// IsWorking reports whether userID works for companyID
func IsWorking(ctx context.Context, st *database.Store, companyID, userID uint64) (bool, error) {
	return exists(st.DB.WithContext(ctx), &models.Employee{}, "company_id = ? AND user_id = ?", companyID, userID)
}

// QuitCompany ends the employment of userID. When the company is left without
// workers it is deleted: its builds lose their contractor, its forum posts and
// pending offers are removed. It reports whether the company was deleted.
func QuitCompany(ctx context.Context, st *database.Store, userID uint64) (bool, error) {
	deleted := false

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		var employee models.Employee
		if err := quiet(tx).Where("user_id = ?", userID).First(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEmployed
			}
			return err
		}

		// Serialize departures from the same company
		var company models.Company
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&company, "company_id = ?", employee.CompanyID).Error; err != nil {
			return notFound(err)
		}

		if err := tx.Where("employee_id = ?", employee.EmployeeID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ?", employee.EmployeeID).Delete(&models.JobApp{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&employee).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.Employee{}).Where("company_id = ?", company.CompanyID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		deleted = true
		return deleteCompany(tx, &company)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		st.Log.WithField("user_id", userID).Info("last worker left, company deleted")
	}
	return deleted, nil
}

// deleteCompany removes a company that has no workers left
func deleteCompany(tx *gorm.DB, company *models.Company) error {
	// Builds outlive their contractor
	err := tx.Model(&models.Build{}).
		Where("contractor_id = ?", company.CompanyID).
		UpdateColumn("contractor_id", nil).Error
	if err != nil {
		return err
	}

	// Loaded first so the search index sees every removed post
	var posts []models.Post
	if err := tx.Where("company_id = ?", company.CompanyID).Find(&posts).Error; err != nil {
		return err
	}
	if len(posts) > 0 {
		if err := tx.Delete(&posts).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("company_id = ?", company.CompanyID).Delete(&models.JobApp{}).Error; err != nil {
		return err
	}

	return tx.Delete(company).Error
}

// AddBuild makes companyID the contractor of buildID
func AddBuild(ctx context.Context, st *database.Store, p access.Principal, companyID, buildID uint64) error {
	if !p.Admin && !p.AdministersCompany(companyID) {
		return ErrForbidden
	}

	return st.Transaction(ctx, func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Company{}, "company_id = ?", companyID)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		var build models.Build
		if err := quiet(tx).First(&build, "build_id = ?", buildID).Error; err != nil {
			return notFound(err)
		}

		build.ContractorID = &companyID
		return tx.Save(&build).Error
	})
}

// DelBuild removes companyID as the contractor of buildID
func DelBuild(ctx context.Context, st *database.Store, p access.Principal, companyID, buildID uint64) error {
	if !p.Admin && !p.AdministersCompany(companyID) {
		return ErrForbidden
	}

	return st.Transaction(ctx, func(tx *gorm.DB) error {
		var build models.Build
		if err := quiet(tx).First(&build, "build_id = ?", buildID).Error; err != nil {
			return notFound(err)
		}
		if build.ContractorID == nil || *build.ContractorID != companyID {
			return ErrNotFound
		}

		build.ContractorID = nil
		return tx.Save(&build).Error
	})
}
