package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/middleware"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/localnerve/buildnet/internal/utils"
)

// publicPost hides the author's email address
func publicPost(p access.Principal, post models.Post) models.Post {
	if post.Author != nil {
		author := publicUser(p, *post.Author)
		post.Author = &author
	}
	return post
}

// posts sends a page of posts
func (h *Handler) posts(c *fiber.Ctx, result types.Page[models.Post]) error {
	p := middleware.Principal(c)
	for i := range result.Items {
		result.Items[i] = publicPost(p, result.Items[i])
	}
	return utils.PageResponse(c, result)
}

// Feed handles GET /api/feed
// @Summary List the posts of followed users
// @Description Posts written by the caller and by the users they follow, newest first. Private forum posts are left out.
// @Tags Posts
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /feed [get]
func (h *Handler) Feed(c *fiber.Ctx) error {
	page, perPage := h.pageParams(c)
	result, err := services.FollowedPosts(c.UserContext(), h.Store, middleware.Principal(c).UserID, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return h.posts(c, result)
}

// Blog handles GET /api/posts
// @Summary List blog posts
// @Description Posts that belong to no forum, newest first
// @Tags Posts
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Router /posts [get]
func (h *Handler) Blog(c *fiber.Ctx) error {
	page, perPage := h.pageParams(c)
	result, err := services.ListBlog(c.UserContext(), h.Store, middleware.Principal(c), page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return h.posts(c, result)
}

// CreatePost handles POST /api/posts
// @Summary Write a post
// @Description Write on the blog, or on a build or company forum when build_id or company_id is set
// @Tags Posts
// @Accept json
// @Produce json
// @Param body body services.PostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /posts [post]
func (h *Handler) CreatePost(c *fiber.Ctx) error {
	var in services.PostInput
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}
	return h.createPost(c, in)
}

func (h *Handler) createPost(c *fiber.Ctx, in services.PostInput) error {
	post, err := services.CreatePost(c.UserContext(), h.Store, middleware.Principal(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, post, fiber.StatusCreated)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Posts the caller may not see are reported as missing
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /posts/{id} [get]
func (h *Handler) GetPost(c *fiber.Ctx) error {
	postID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	p := middleware.Principal(c)
	post, err := services.GetPost(c.UserContext(), h.Store, p, postID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, publicPost(p, *post), fiber.StatusOK)
}

// Search handles GET /api/search
// @Summary Full-text search
// @Description Search posts, users, companies or builds. Posts the caller may not see are dropped.
// @Tags Posts
// @Produce json
// @Param q query string true "Search text"
// @Param type query string false "posts, users, companies or builds" default(posts)
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /search [get]
func (h *Handler) Search(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := middleware.Principal(c)

	text := strings.TrimSpace(c.Query("q"))
	if text == "" {
		return utils.ValidationErrorResponse(c, "q", "must not be empty")
	}
	page, perPage := h.pageParams(c)

	switch c.Query("type", "posts") {
	case "posts":
		result, err := services.SearchPosts(ctx, h.Store, p, text, page, perPage)
		if err != nil {
			return h.fail(c, err)
		}
		return h.posts(c, result)

	case "users":
		result, err := services.SearchUsers(ctx, h.Store, text, page, perPage)
		if err != nil {
			return h.fail(c, err)
		}
		result.Items = publicUsers(p, result.Items)
		return utils.PageResponse(c, result)

	case "companies":
		result, err := services.SearchCompanies(ctx, h.Store, text, page, perPage)
		if err != nil {
			return h.fail(c, err)
		}
		return utils.PageResponse(c, result)

	case "builds":
		result, err := services.SearchBuilds(ctx, h.Store, text, page, perPage)
		if err != nil {
			return h.fail(c, err)
		}
		return utils.PageResponse(c, result)
	}

	return utils.ValidationErrorResponse(c, "type", "must be one of posts, users, companies, builds")
}
