package services

import (
	"context"
	"strings"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/localnerve/buildnet/internal/types"
)

// hydrate asks the index for one page of ids, then loads those rows from the
// store and puts them in relevance order. Index failures yield an empty page.
func hydrate[T any](ctx context.Context, st *database.Store, index, key, text string, page, perPage int, id func(T) uint64, preloads ...string) (types.Page[T], error) {
	result := types.EmptyPage[T](page, perPage)

	text = strings.TrimSpace(text)
	if text == "" {
		return result, nil
	}

	ids, total, err := st.Index().Query(ctx, index, text, page, perPage)
	if err != nil {
		st.Log.WithError(err).WithField("index", index).Warn("search query failed")
		return result, nil
	}
	result.Total = total
	if len(ids) == 0 {
		return result, nil
	}

	var rows []T
	q := st.DB.WithContext(ctx)
	for _, preload := range preloads {
		q = q.Preload(preload)
	}
	if err := q.Where(key+" IN ?", ids).Find(&rows).Error; err != nil {
		return result, err
	}

	result.Items = search.Arrange(ids, rows, id)
	return result, nil
}

// SearchPosts runs a full-text search over posts, dropping hits p may not see
func SearchPosts(ctx context.Context, st *database.Store, p access.Principal, text string, page, perPage int) (types.Page[models.Post], error) {
	result, err := hydrate(ctx, st, models.Post{}.TableName(), "post_id", text, page, perPage,
		func(post models.Post) uint64 { return post.PostID }, "Author", "Build")
	if err != nil {
		return result, err
	}

	visible := result.Items[:0]
	for _, post := range result.Items {
		if access.CanViewPost(p, post, contractorOf(post)) {
			visible = append(visible, post)
		}
	}
	result.Items = visible
	return result, nil
}

// SearchUsers runs a full-text search over users
func SearchUsers(ctx context.Context, st *database.Store, text string, page, perPage int) (types.Page[models.User], error) {
	return hydrate(ctx, st, models.User{}.TableName(), "user_id", text, page, perPage,
		func(user models.User) uint64 { return user.UserID })
}

// SearchCompanies runs a full-text search over companies
func SearchCompanies(ctx context.Context, st *database.Store, text string, page, perPage int) (types.Page[models.Company], error) {
	return hydrate(ctx, st, models.Company{}.TableName(), "company_id", text, page, perPage,
		func(company models.Company) uint64 { return company.CompanyID })
}

// SearchBuilds runs a full-text search over builds
func SearchBuilds(ctx context.Context, st *database.Store, text string, page, perPage int) (types.Page[models.Build], error) {
	return hydrate(ctx, st, models.Build{}.TableName(), "build_id", text, page, perPage,
		func(build models.Build) uint64 { return build.BuildID }, "Contractor")
}
