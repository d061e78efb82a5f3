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
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// BuildInput is the payload for a new build. Dates use the YYYY-MM-DD layout.
type BuildInput struct {
	Name          string                  `json:"name"`
	Specification string                  `json:"specification"`
	Category      string                  `json:"category"`
	Worth         types.FlexNumber[int64] `json:"worth"`
	Place         string                  `json:"place"`
	StartDate     string                  `json:"start_date"`
	EndDate       string                  `json:"end_date"`
}

// BuildUpdate carries the build fields to change. Nil fields are left alone.
// Contractor names an existing company; an empty name clears the contractor.
type BuildUpdate struct {
	Name          *string                 `json:"name"`
	Specification *string                 `json:"specification"`
	Category      *string                 `json:"category"`
	Worth         types.FlexNumber[int64] `json:"worth"`
	Place         *string                 `json:"place"`
	StartDate     *string                 `json:"start_date"`
	EndDate       *string                 `json:"end_date"`
	Contractor    *string                 `json:"contractor"`
}

func parseDate(field, value string) (*datatypes.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, invalid(field, "must be a date like 2006-01-02")
	}
	d := datatypes.Date(t)
	return &d, nil
}

func checkDates(start, end *datatypes.Date) error {
	if start != nil && end != nil && time.Time(*end).Before(time.Time(*start)) {
		return invalid("end_date", "must not be before the start date")
	}
	return nil
}

func validBuildName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return invalid("name", "must be between 1 and 120 characters")
	}
	return nil
}

// CreateBuild registers a build. Employed creators make their company the contractor;
// the build is verified when the creator is a site admin or the company is verified.
func CreateBuild(ctx context.Context, st *database.Store, p access.Principal, in BuildInput) (*models.Build, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthorized
	}

	name := strings.TrimSpace(in.Name)
	if err := validBuildName(name); err != nil {
		return nil, err
	}
	if in.Worth.Set && in.Worth.Value < 0 {
		return nil, invalid("worth", "must not be negative")
	}
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkDates(start, end); err != nil {
		return nil, err
	}

	build := models.Build{
		Name:          name,
		Specification: models.Text(strings.TrimSpace(in.Specification)),
		Category:      strings.TrimSpace(in.Category),
		Worth:         in.Worth.Value,
		Place:         strings.TrimSpace(in.Place),
		PostDate:      time.Now().UTC(),
		StartDate:     start,
		EndDate:       end,
		CreatorID:     p.UserID,
		Verified:      p.Admin,
	}

	err = st.Transaction(ctx, func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Build{}, "name = ?", name)
		if err != nil {
			return err
		}
		if taken {
			return invalid("name", "is already registered")
		}

		if p.Employed() {
			var company models.Company
			if err := quiet(tx).First(&company, "company_id = ?", p.CompanyID).Error; err != nil {
				return notFound(err)
			}
			build.ContractorID = &company.CompanyID
			build.Verified = build.Verified || company.Verified
		}

		return tx.Create(&build).Error
	})
	if err != nil {
		return nil, duplicate(err, "name", "is already registered")
	}

	return &build, nil
}

// UpdateBuild changes a build. Its creator, employees of its contractor and site admins may do so.
// Concurrent edits are last write wins.
func UpdateBuild(ctx context.Context, st *database.Store, p access.Principal, buildID uint64, in BuildUpdate) (*models.Build, error) {
	var build models.Build

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		if err := quiet(tx).First(&build, "build_id = ?", buildID).Error; err != nil {
			return notFound(err)
		}
		if !access.CanEditBuild(p, build) {
			return ErrForbidden
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if err := validBuildName(name); err != nil {
				return err
			}
			if name != build.Name {
				taken, err := exists(tx, &models.Build{}, "name = ? AND build_id <> ?", name, buildID)
				if err != nil {
					return err
				}
				if taken {
					return invalid("name", "is already registered")
				}
				build.Name = name
			}
		}
		if in.Specification != nil {
			build.Specification = models.Text(strings.TrimSpace(*in.Specification))
		}
		setTrimmed(&build.Category, in.Category)
		setTrimmed(&build.Place, in.Place)
		if in.Worth.Set {
			if in.Worth.Value < 0 {
				return invalid("worth", "must not be negative")
			}
			build.Worth = in.Worth.Value
		}
		if in.StartDate != nil {
			start, err := parseDate("start_date", *in.StartDate)
			if err != nil {
				return err
			}
			build.StartDate = start
		}
		if in.EndDate != nil {
			end, err := parseDate("end_date", *in.EndDate)
			if err != nil {
				return err
			}
			build.EndDate = end
		}
		if err := checkDates(build.StartDate, build.EndDate); err != nil {
			return err
		}

		if in.Contractor != nil {
			name := strings.TrimSpace(*in.Contractor)
			if name == "" {
				build.ContractorID = nil
			} else {
				var company models.Company
				if err := quiet(tx).First(&company, "name = ?", name).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return invalid("contractor", "no company named %q", name)
					}
					return err
				}
				build.ContractorID = &company.CompanyID
			}
		}

		build.Creator = nil
		build.Contractor = nil
		return tx.Save(&build).Error
	})
	if err != nil {
		return nil, duplicate(err, "name", "is already registered")
	}

	return &build, nil
}

// GetBuild loads a build with its creator and contractor
func GetBuild(ctx context.Context, st *database.Store, buildID uint64) (*models.Build, error) {
	var build models.Build
	err := quiet(st.DB.WithContext(ctx)).
		Preload("Creator").
		Preload("Contractor").
		First(&build, "build_id = ?", buildID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &build, nil
}

// ListBuilds lists builds, newest first
func ListBuilds(ctx context.Context, st *database.Store, page, perPage int) (types.Page[models.Build], error) {
	q := st.DB.WithContext(ctx).Model(&models.Build{})
	return paginate[models.Build](q, page, perPage, "builds.post_date DESC, builds.build_id DESC", "Contractor")
}

// canStaff reports whether p may change the assignments of employee
func canStaff(p access.Principal, employee models.Employee) bool {
	return p.Admin || p.AdministersCompany(employee.CompanyID)
}

// AssignEmployee puts an employee on a build. Assigning twice is a no-op.
func AssignEmployee(ctx context.Context, st *database.Store, p access.Principal, buildID, employeeID uint64) error {
	return st.Transaction(ctx, func(tx *gorm.DB) error {
		var employee models.Employee
		if err := quiet(tx).First(&employee, "employee_id = ?", employeeID).Error; err != nil {
			return notFound(err)
		}
		if !canStaff(p, employee) {
			return ErrForbidden
		}

		found, err := exists(tx, &models.Build{}, "build_id = ?", buildID)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		assignment := models.Assignment{
			EmployeeID: employeeID,
			BuildID:    buildID,
			CreatedAt:  time.Now().UTC(),
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment).Error
	})
}

// UnassignEmployee takes an employee off a build
func UnassignEmployee(ctx context.Context, st *database.Store, p access.Principal, buildID, employeeID uint64) error {
	return st.Transaction(ctx, func(tx *gorm.DB) error {
		var employee models.Employee
		if err := quiet(tx).First(&employee, "employee_id = ?", employeeID).Error; err != nil {
			return notFound(err)
		}
		if !canStaff(p, employee) {
			return ErrForbidden
		}

		return tx.Where("employee_id = ? AND build_id = ?", employeeID, buildID).Delete(&models.Assignment{}).Error
	})
}

// IsBuilding reports whether an employee is assigned to a build
func IsBuilding(ctx context.Context, st *database.Store, employeeID, buildID uint64) (bool, error) {
	return exists(st.DB.WithContext(ctx), &models.Assignment{}, "employee_id = ? AND build_id = ?", employeeID, buildID)
}

// BuildEmployees lists the employees assigned to a build
func BuildEmployees(ctx context.Context, st *database.Store, buildID uint64) ([]models.Employee, error) {
	assigned := st.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Assignment{}).
		Select("employee_id").
		Where("build_id = ?", buildID)

	var employees []models.Employee
	err := st.DB.WithContext(ctx).
		Preload("User").
		Where("employee_id IN (?)", assigned).
		Order("employee_id").
		Find(&employees).Error
	return employees, err
}

// EmployeeBuilds lists the builds an employee is assigned to
func EmployeeBuilds(ctx context.Context, st *database.Store, employeeID uint64) ([]models.Build, error) {
	assigned := st.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.Assignment{}).
		Select("build_id").
		Where("employee_id = ?", employeeID)

	var builds []models.Build
	err := st.DB.WithContext(ctx).
		Where("build_id IN (?)", assigned).
		Order("build_id").
		Find(&builds).Error
	return builds, err
}
