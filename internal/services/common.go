package services

import (
	"context"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const postOrder = "posts.timestamp DESC, posts.post_id DESC"

// quiet returns a session that does not log missing records
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// exists reports whether any row of model matches the condition
func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	err := db.Model(model).Where(query, args...).Count(&count).Error
	return count > 0, err
}

// paginate counts q, then loads one page of it in order
func paginate[T any](q *gorm.DB, page, perPage int, order string, preloads ...string) (types.Page[T], error) {
	result := types.EmptyPage[T](page, perPage)
	q = q.Session(&gorm.Session{})

	if err := q.Count(&result.Total).Error; err != nil {
		return result, err
	}
	if result.Total == 0 || int64(result.Offset()) >= result.Total {
		return result, nil
	}

	find := q.Order(order)
	for _, preload := range preloads {
		find = find.Preload(preload)
	}
	if err := find.Offset(result.Offset()).Limit(perPage).Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// LoadPrincipal resolves the user and their employment
func LoadPrincipal(ctx context.Context, st *database.Store, userID uint64) (access.Principal, error) {
	db := quiet(st.DB.WithContext(ctx))

	var user models.User
	if err := db.First(&user, "user_id = ?", userID).Error; err != nil {
		return access.Anonymous, notFound(err)
	}

	p := access.Principal{UserID: user.UserID, Admin: user.Admin}

	var employees []models.Employee
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&employees).Error; err != nil {
		return access.Anonymous, err
	}
	if len(employees) == 1 {
		p.EmployeeID = employees[0].EmployeeID
		p.CompanyID = employees[0].CompanyID
		p.CompanyAdmin = employees[0].Admin
	}

	return p, nil
}
