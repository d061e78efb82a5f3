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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/middleware"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/localnerve/buildnet/internal/utils"
)

// CompanyResponse is a company with its head count
type CompanyResponse struct {
	Company models.Company `json:"company"`
	Workers int64          `json:"workers"`
}

// QuitResponse reports the outcome of leaving a company
type QuitResponse struct {
	Message        string `json:"message"`
	Ok             bool   `json:"ok"`
	CompanyDeleted bool   `json:"company_deleted"`
}

func publicEmployees(p access.Principal, employees []models.Employee) []models.Employee {
	for i := range employees {
		if employees[i].User != nil {
			user := publicUser(p, *employees[i].User)
			employees[i].User = &user
		}
	}
	return employees
}

// ListCompanies handles GET /api/companies
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Company]
// @Router /companies [get]
func (h *Handler) ListCompanies(c *fiber.Ctx) error {
	page, perPage := h.pageParams(c)
	result, err := services.ListCompanies(c.UserContext(), h.Store, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.PageResponse(c, result)
}

// CreateCompany handles POST /api/companies
// @Summary Found a company
// @Description The founder becomes the company administrator. The web page must answer.
// @Tags Companies
// @Accept json
// @Produce json
// @Param body body services.CompanyInput true "Company"
// @Success 201 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies [post]
func (h *Handler) CreateCompany(c *fiber.Ctx) error {
	var in services.CompanyInput
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	company, err := services.CreateCompany(c.UserContext(), h.Store, middleware.Principal(c), in, h.CheckWebPage)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, company, fiber.StatusCreated)
}

// GetCompany handles GET /api/companies/:id
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} CompanyResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /companies/{id} [get]
func (h *Handler) GetCompany(c *fiber.Ctx) error {
	companyID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	ctx := c.UserContext()
	company, err := services.GetCompany(ctx, h.Store, companyID)
	if err != nil {
		return h.fail(c, err)
	}
	workers, err := services.NumberWorkers(ctx, h.Store, companyID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SuccessResponse(c, CompanyResponse{Company: *company, Workers: workers}, fiber.StatusOK)
}

// UpdateCompany handles PUT /api/companies/:id
// @Summary Edit a company
// @Description Company administrators and site admins only
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param body body services.CompanyUpdate true "Fields to change"
// @Success 200 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *Handler) UpdateCompany(c *fiber.Ctx) error {
	companyID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	var in services.CompanyUpdate
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	company, err := services.UpdateCompany(c.UserContext(), h.Store, middleware.Principal(c), companyID, in, h.CheckWebPage)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, company, fiber.StatusOK)
}

// CompanyWorkers handles GET /api/companies/:id/workers
// @Summary List the employees of a company
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {array} models.Employee
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /companies/{id}/workers [get]
func (h *Handler) CompanyWorkers(c *fiber.Ctx) error {
	companyID, err := h.companyParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	workers, err := services.CompanyWorkers(c.UserContext(), h.Store, companyID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, publicEmployees(access.Anonymous, workers), fiber.StatusOK)
}

// CompanyBuilds handles GET /api/companies/:id/builds
// @Summary List the builds a company contracts
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {array} models.Build
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /companies/{id}/builds [get]
func (h *Handler) CompanyBuilds(c *fiber.Ctx) error {
	companyID, err := h.companyParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	builds, err := services.CompanyBuilds(c.UserContext(), h.Store, companyID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, builds, fiber.StatusOK)
}

// companyParam reads :id and checks that the company exists
func (h *Handler) companyParam(c *fiber.Ctx) (uint64, error) {
	companyID, err := idParam(c, "id")
	if err != nil {
		return 0, err
	}
	if _, err := services.GetCompany(c.UserContext(), h.Store, companyID); err != nil {
		return 0, err
	}
	return companyID, nil
}

// CompanyForum handles GET /api/companies/:id/forum
// @Summary List the public forum of a company
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /companies/{id}/forum [get]
func (h *Handler) CompanyForum(c *fiber.Ctx) error {
	return h.companyForum(c, false)
}

// CompanyPrivateForum handles GET /api/companies/:id/private
// @Summary List the private forum of a company
// @Description Employees of the company only
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies/{id}/private [get]
func (h *Handler) CompanyPrivateForum(c *fiber.Ctx) error {
	return h.companyForum(c, true)
}

func (h *Handler) companyForum(c *fiber.Ctx, private bool) error {
	companyID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	page, perPage := h.pageParams(c)
	result, err := services.ListCompanyForum(c.UserContext(), h.Store, middleware.Principal(c), companyID, private, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return h.posts(c, result)
}

// ForumPostRequest is the payload of a forum post
type ForumPostRequest struct {
	Body string `json:"body"`
}

// PostCompanyForum handles POST /api/companies/:id/forum
// @Summary Write on the public forum of a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param body body ForumPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies/{id}/forum [post]
func (h *Handler) PostCompanyForum(c *fiber.Ctx) error {
	return h.postCompanyForum(c, false)
}

// PostCompanyPrivateForum handles POST /api/companies/:id/private
// @Summary Write on the private forum of a company
// @Description Employees of the company only
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param body body ForumPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies/{id}/private [post]
func (h *Handler) PostCompanyPrivateForum(c *fiber.Ctx) error {
	return h.postCompanyForum(c, true)
}

func (h *Handler) postCompanyForum(c *fiber.Ctx, private bool) error {
	companyID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	var in ForumPostRequest
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	return h.createPost(c, services.PostInput{
		Body:      in.Body,
		CompanyID: types.Of(companyID),
		Private:   private,
	})
}

// AddBuild handles POST /api/companies/:id/builds/:buildID
// @Summary Make a company the contractor of a build
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Param buildID path int true "Build ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies/{id}/builds/{buildID} [post]
func (h *Handler) AddBuild(c *fiber.Ctx) error {
	companyID, buildID, err := companyBuildParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.AddBuild(c.UserContext(), h.Store, middleware.Principal(c), companyID, buildID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "Build added")
}

// DelBuild handles DELETE /api/companies/:id/builds/:buildID
// @Summary Remove a company as the contractor of a build
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Param buildID path int true "Build ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /companies/{id}/builds/{buildID} [delete]
func (h *Handler) DelBuild(c *fiber.Ctx) error {
	companyID, buildID, err := companyBuildParams(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.DelBuild(c.UserContext(), h.Store, middleware.Principal(c), companyID, buildID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "Build removed")
}

func companyBuildParams(c *fiber.Ctx) (uint64, uint64, error) {
	companyID, err := idParam(c, "id")
	if err != nil {
		return 0, 0, err
	}
	buildID, err := idParam(c, "buildID")
	if err != nil {
		return 0, 0, err
	}
	return companyID, buildID, nil
}

// QuitCompany handles POST /api/firm/quit
// @Summary Leave the current company
// @Description The company is deleted when its last worker leaves
// @Tags Companies
// @Produce json
// @Success 200 {object} QuitResponse
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /firm/quit [post]
func (h *Handler) QuitCompany(c *fiber.Ctx) error {
	deleted, err := services.QuitCompany(c.UserContext(), h.Store, middleware.Principal(c).UserID)
	if err != nil {
		return h.fail(c, err)
	}

	message := "You left the company"
	if deleted {
		message = "You left the company and, as its last worker, closed it"
	}
	return utils.SuccessResponse(c, QuitResponse{Message: message, Ok: true, CompanyDeleted: deleted}, fiber.StatusOK)
}
