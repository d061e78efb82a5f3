// handler.go
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
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/config"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/localnerve/buildnet/internal/utils"
	"github.com/sirupsen/logrus"
)

// Handler serves the /api routes
type Handler struct {
	Store        *database.Store
	Config       *config.Config
	Tokens       *services.Tokens
	Mailer       services.Mailer
	CheckWebPage services.WebPageChecker
}

// New builds a Handler from its dependencies. Company web pages are checked over HTTP.
func New(st *database.Store, cfg *config.Config, tokens *services.Tokens, mailer services.Mailer) *Handler {
	return &Handler{
		Store:  st,
		Config: cfg,
		Tokens: tokens,
		Mailer: mailer,
		CheckWebPage: func(ctx context.Context, url string) error {
			return utils.CheckWebPage(ctx, url, cfg.WebCheckTimeout)
		},
	}
}

// ErrorHandler renders errors that escape handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := types.ErrorTypeUnknown

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		if customErr.Field != "" {
			return utils.ValidationErrorResponse(c, customErr.Field, customErr.Message)
		}
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return utils.ErrorResponse(c, message, code, errorType)
}

// NotFound answers requests that matched no route
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}

// fail maps a service error onto an API error response
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return utils.ValidationErrorResponse(c, validation.Field, validation.Message)
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, types.ErrorTypeAuth)
	case errors.Is(err, services.ErrForbidden):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, types.ErrorTypeForbidden)
	case errors.Is(err, services.ErrNoResetSession):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, types.ErrorTypeAuth)
	case errors.Is(err, services.ErrSelfFollow):
		return utils.ValidationErrorResponse(c, "nickname", err.Error())
	case errors.Is(err, services.ErrAlreadyEmployed), errors.Is(err, services.ErrNotEmployed):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, types.ErrorTypeConflict)
	}

	h.Store.Log.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("request failed")
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, types.ErrorTypeUnknown)
}

// pageParams reads ?page= and ?per_page=, defaulting to the configured page size
func (h *Handler) pageParams(c *fiber.Ctx) (int, int) {
	return types.NormalizePage(
		c.QueryInt("page", 1),
		c.QueryInt("per_page", h.Config.PostsPerPage),
		h.Config.PostsPerPage,
	)
}

// parseBody decodes the JSON request body into v
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return &services.ValidationError{Field: "body", Message: "Invalid input"}
	}
	return nil
}

// idParam reads a numeric route parameter
func idParam(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &services.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// userParam loads the user named by the :nickname route parameter
func (h *Handler) userParam(c *fiber.Ctx) (*models.User, error) {
	return services.GetUserByNickname(c.UserContext(), h.Store, c.Params("nickname"))
}
