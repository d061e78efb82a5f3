package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/metrics"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/types"
	"gorm.io/gorm"
)

// MaxPostLength bounds the body of a post, in characters
const MaxPostLength = 2000

// PostInput is the payload for a new post. At most one of BuildID and CompanyID
// may be set; Private needs one of them.
type PostInput struct {
	Body      string                   `json:"body"`
	BuildID   types.FlexNumber[uint64] `json:"build_id"`
	CompanyID types.FlexNumber[uint64] `json:"company_id"`
	Private   bool                     `json:"private"`
}

// CreatePost writes a post on the blog or on a forum
func CreatePost(ctx context.Context, st *database.Store, p access.Principal, in PostInput) (*models.Post, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthorized
	}

	body := strings.TrimSpace(in.Body)
	if n := utf8.RuneCountInString(body); n == 0 || n > MaxPostLength {
		return nil, invalid("body", "must be between 1 and %d characters", MaxPostLength)
	}
	if in.BuildID.Set && in.CompanyID.Set {
		return nil, invalid("forum", "a post belongs to a build or a company, not both")
	}
	if in.Private && !in.BuildID.Set && !in.CompanyID.Set {
		return nil, invalid("private", "only forum posts can be private")
	}

	post := models.Post{
		Body:           models.Text(body),
		AuthorID:       p.UserID,
		Timestamp:      time.Now().UTC(),
		PrivateCompany: in.Private,
	}

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		switch {
		case in.BuildID.Set:
			var build models.Build
			if err := quiet(tx).First(&build, "build_id = ?", in.BuildID.Value).Error; err != nil {
				return notFound(err)
			}
			if in.Private && !access.CanViewBuildPrivate(p, build.ContractorID) {
				return ErrForbidden
			}
			post.BuildID = &build.BuildID

		case in.CompanyID.Set:
			var company models.Company
			if err := quiet(tx).First(&company, "company_id = ?", in.CompanyID.Value).Error; err != nil {
				return notFound(err)
			}
			if in.Private && !p.MemberOf(company.CompanyID) {
				return ErrForbidden
			}
			post.CompanyID = &company.CompanyID
		}

		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.PostsCreated.WithLabelValues(access.PostScope(post).String()).Inc()
	return &post, nil
}

// GetPost loads a post the principal may see. Posts hidden from p are reported as missing.
func GetPost(ctx context.Context, st *database.Store, p access.Principal, postID uint64) (*models.Post, error) {
	var post models.Post
	err := quiet(st.DB.WithContext(ctx)).
		Preload("Author").
		Preload("Build").
		First(&post, "post_id = ?", postID).Error
	if err != nil {
		return nil, notFound(err)
	}

	if !access.CanViewPost(p, post, contractorOf(post)) {
		return nil, ErrNotFound
	}
	return &post, nil
}

// ListBlog lists posts that belong to no forum
func ListBlog(ctx context.Context, st *database.Store, p access.Principal, page, perPage int) (types.Page[models.Post], error) {
	q := st.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.build_id IS NULL AND posts.company_id IS NULL").
		Scopes(access.VisiblePosts(p))

	return paginate[models.Post](q, page, perPage, postOrder, "Author")
}

// ListUserPosts lists the posts of authorID that p may see
func ListUserPosts(ctx context.Context, st *database.Store, p access.Principal, authorID uint64, page, perPage int) (types.Page[models.Post], error) {
	q := st.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.author_id = ?", authorID).
		Scopes(access.VisiblePosts(p))

	return paginate[models.Post](q, page, perPage, postOrder, "Author")
}

// ListCompanyForum lists the public or the private forum of a company.
// The private forum is only open to the company's employees.
func ListCompanyForum(ctx context.Context, st *database.Store, p access.Principal, companyID uint64, private bool, page, perPage int) (types.Page[models.Post], error) {
	found, err := exists(st.DB.WithContext(ctx), &models.Company{}, "company_id = ?", companyID)
	if err != nil {
		return types.EmptyPage[models.Post](page, perPage), err
	}
	if !found {
		return types.EmptyPage[models.Post](page, perPage), ErrNotFound
	}
	if private && !p.MemberOf(companyID) {
		return types.EmptyPage[models.Post](page, perPage), ErrForbidden
	}

	q := st.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.company_id = ? AND posts.private_company = ?", companyID, private).
		Scopes(access.VisiblePosts(p))

	return paginate[models.Post](q, page, perPage, postOrder, "Author")
}

// ListBuildForum lists the public or the private forum of a build.
// The private forum is only open to employees of the build's contractor.
func ListBuildForum(ctx context.Context, st *database.Store, p access.Principal, buildID uint64, private bool, page, perPage int) (types.Page[models.Post], error) {
	var build models.Build
	if err := quiet(st.DB.WithContext(ctx)).First(&build, "build_id = ?", buildID).Error; err != nil {
		return types.EmptyPage[models.Post](page, perPage), notFound(err)
	}
	if private && !access.CanViewBuildPrivate(p, build.ContractorID) {
		return types.EmptyPage[models.Post](page, perPage), ErrForbidden
	}

	q := st.DB.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.build_id = ? AND posts.private_company = ?", buildID, private).
		Scopes(access.VisiblePosts(p))

	return paginate[models.Post](q, page, perPage, postOrder, "Author")
}

func contractorOf(post models.Post) *uint64 {
	if post.Build == nil {
		return nil
	}
	return post.Build.ContractorID
}
