package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/middleware"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/localnerve/buildnet/internal/utils"
)

// ListBuilds handles GET /api/builds
// @Summary List builds
// @Tags Builds
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Build]
// @Router /builds [get]
func (h *Handler) ListBuilds(c *fiber.Ctx) error {
	page, perPage := h.pageParams(c)
	result, err := services.ListBuilds(c.UserContext(), h.Store, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.PageResponse(c, result)
}

// CreateBuild handles POST /api/builds
// @Summary Register a build
// @Tags Builds
// @Accept json
// @Produce json
// @Param body body services.BuildInput true "Build"
// @Success 201 {object} models.Build
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds [post]
func (h *Handler) CreateBuild(c *fiber.Ctx) error {
	var in services.BuildInput
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	build, err := services.CreateBuild(c.UserContext(), h.Store, middleware.Principal(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, build, fiber.StatusCreated)
}

// GetBuild handles GET /api/builds/:id
// @Summary Get a build
// @Tags Builds
// @Produce json
// @Param id path int true "Build ID"
// @Success 200 {object} models.Build
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /builds/{id} [get]
func (h *Handler) GetBuild(c *fiber.Ctx) error {
	buildID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	build, err := services.GetBuild(c.UserContext(), h.Store, buildID)
	if err != nil {
		return h.fail(c, err)
	}
	if build.Creator != nil {
		creator := publicUser(access.Anonymous, *build.Creator)
		build.Creator = &creator
	}
	return utils.SuccessResponse(c, build, fiber.StatusOK)
}

// UpdateBuild handles PUT /api/builds/:id
// @Summary Edit a build
// @Description The creator, employees of the contractor and site admins may edit a build
// @Tags Builds
// @Accept json
// @Produce json
// @Param id path int true "Build ID"
// @Param body body services.BuildUpdate true "Fields to change"
// @Success 200 {object} models.Build
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds/{id} [put]
func (h *Handler) UpdateBuild(c *fiber.Ctx) error {
	buildID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	var in services.BuildUpdate
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	build, err := services.UpdateBuild(c.UserContext(), h.Store, middleware.Principal(c), buildID, in)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, build, fiber.StatusOK)
}

// BuildForum handles GET /api/builds/:id/posts
// @Summary List the public forum of a build
// @Tags Builds
// @Produce json
// @Param id path int true "Build ID"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /builds/{id}/posts [get]
func (h *Handler) BuildForum(c *fiber.Ctx) error {
	return h.buildForum(c, false)
}

// BuildPrivateForum handles GET /api/builds/:id/private
// @Summary List the private forum of a build
// @Description Employees of the contractor only
// @Tags Builds
// @Produce json
// @Param id path int true "Build ID"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds/{id}/private [get]
func (h *Handler) BuildPrivateForum(c *fiber.Ctx) error {
	return h.buildForum(c, true)
}

func (h *Handler) buildForum(c *fiber.Ctx, private bool) error {
	buildID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	page, perPage := h.pageParams(c)
	result, err := services.ListBuildForum(c.UserContext(), h.Store, middleware.Principal(c), buildID, private, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return h.posts(c, result)
}

// PostBuildForum handles POST /api/builds/:id/posts
// @Summary Write on the public forum of a build
// @Tags Builds
// @Accept json
// @Produce json
// @Param id path int true "Build ID"
// @Param body body ForumPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds/{id}/posts [post]
func (h *Handler) PostBuildForum(c *fiber.Ctx) error {
	return h.postBuildForum(c, false)
}

// PostBuildPrivateForum handles POST /api/builds/:id/private
// @Summary Write on the private forum of a build
// @Description Employees of the contractor only
// @Tags Builds
// @Accept json
// @Produce json
// @Param id path int true "Build ID"
// @Param body body ForumPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds/{id}/private [post]
func (h *Handler) PostBuildPrivateForum(c *fiber.Ctx) error {
	return h.postBuildForum(c, true)
}

func (h *Handler) postBuildForum(c *fiber.Ctx, private bool) error {
	buildID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	var in ForumPostRequest
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	return h.createPost(c, services.PostInput{
		Body:    in.Body,
		BuildID: types.Of(buildID),
		Private: private,
	})
}

// BuildEmployees handles GET /api/builds/:id/employees
// @Summary List the employees assigned to a build
// @Tags Builds
// @Produce json
// @Param id path int true "Build ID"
// @Success 200 {array} models.Employee
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /builds/{id}/employees [get]
func (h *Handler) BuildEmployees(c *fiber.Ctx) error {
	buildID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	ctx := c.UserContext()
	if _, err := services.GetBuild(ctx, h.Store, buildID); err != nil {
		return h.fail(c, err)
	}

	employees, err := services.BuildEmployees(ctx, h.Store, buildID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, publicEmployees(access.Anonymous, employees), fiber.StatusOK)
}

// AssignEmployee handles POST /api/builds/:id/employees/:employeeID
// @Summary Assign an employee to a build
// @Description Administrators of the employee's company and site admins only
// @Tags Builds
// @Produce json
// @Param id path int true "Build ID"
// @Param employeeID path int true "Employee ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds/{id}/employees/{employeeID} [post]
func (h *Handler) AssignEmployee(c *fiber.Ctx) error {
	buildID, employeeID, err := buildEmployeeParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.AssignEmployee(c.UserContext(), h.Store, middleware.Principal(c), buildID, employeeID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "Employee assigned")
}

// UnassignEmployee handles DELETE /api/builds/:id/employees/:employeeID
// @Summary Take an employee off a build
// @Tags Builds
// @Produce json
// @Param id path int true "Build ID"
// @Param employeeID path int true "Employee ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /builds/{id}/employees/{employeeID} [delete]
func (h *Handler) UnassignEmployee(c *fiber.Ctx) error {
	buildID, employeeID, err := buildEmployeeParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.UnassignEmployee(c.UserContext(), h.Store, middleware.Principal(c), buildID, employeeID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "Employee unassigned")
}

func buildEmployeeParams(c *fiber.Ctx) (uint64, uint64, error) {
	buildID, err := idParam(c, "id")
	if err != nil {
		return 0, 0, err
	}
	employeeID, err := idParam(c, "employeeID")
	if err != nil {
		return 0, 0, err
	}
	return buildID, employeeID, nil
}
