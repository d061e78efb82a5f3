// users.go
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
	"github.com/localnerve/buildnet/internal/utils"
)

// ProfileResponse is a user with their social counters
type ProfileResponse struct {
	User        models.User `json:"user"`
	Followers   int64       `json:"followers"`
	Following   int64       `json:"following"`
	IsFollowing bool        `json:"is_following"`
}

// publicUser hides the email address from everyone but its owner and site admins
func publicUser(p access.Principal, user models.User) models.User {
	if p.UserID != user.UserID && !p.Admin {
		user.Email = ""
	}
	return user
}

func publicUsers(p access.Principal, users []models.User) []models.User {
	for i := range users {
		users[i] = publicUser(p, users[i])
	}
	return users
}

func (h *Handler) profile(c *fiber.Ctx, user *models.User) error {
	ctx := c.UserContext()
	p := middleware.Principal(c)

	res := ProfileResponse{User: publicUser(p, *user)}

	var err error
	if res.Followers, err = services.FollowersCount(ctx, h.Store, user.UserID); err != nil {
		return h.fail(c, err)
	}
	if res.Following, err = services.FollowingCount(ctx, h.Store, user.UserID); err != nil {
		return h.fail(c, err)
	}
	if p.Authenticated() && p.UserID != user.UserID {
		if res.IsFollowing, err = services.IsFollowing(ctx, h.Store, p.UserID, user.UserID); err != nil {
			return h.fail(c, err)
		}
	}

	return utils.SuccessResponse(c, res, fiber.StatusOK)
}

// Me handles GET /api/me
// @Summary Get the current user
// @Tags Users
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := services.GetUser(c.UserContext(), h.Store, middleware.Principal(c).UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return h.profile(c, user)
}

// UpdateMe handles PUT /api/me
// @Summary Edit the current user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.ProfileInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /me [put]
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	user, err := services.UpdateProfile(c.UserContext(), h.Store, middleware.Principal(c).UserID, in)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// GetUser handles GET /api/users/:nickname
// @Summary Get a user profile
// @Tags Users
// @Produce json
// @Param nickname path string true "Nickname"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{nickname} [get]
func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.profile(c, user)
}

// Follow handles POST /api/users/:nickname/follow
// @Summary Follow a user
// @Description Following is idempotent
// @Tags Users
// @Produce json
// @Param nickname path string true "Nickname"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{nickname}/follow [post]
func (h *Handler) Follow(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.Follow(c.UserContext(), h.Store, middleware.Principal(c).UserID, user.UserID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "You are following "+user.Nickname)
}

// Unfollow handles DELETE /api/users/:nickname/follow
// @Summary Unfollow a user
// @Description Unfollowing is idempotent
// @Tags Users
// @Produce json
// @Param nickname path string true "Nickname"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{nickname}/follow [delete]
func (h *Handler) Unfollow(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.Unfollow(c.UserContext(), h.Store, middleware.Principal(c).UserID, user.UserID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "You are not following "+user.Nickname)
}

// Followers handles GET /api/users/:nickname/followers
// @Summary List the followers of a user
// @Tags Users
// @Produce json
// @Param nickname path string true "Nickname"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.User]
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{nickname}/followers [get]
func (h *Handler) Followers(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	page, perPage := h.pageParams(c)
	result, err := services.Followers(c.UserContext(), h.Store, user.UserID, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	result.Items = publicUsers(middleware.Principal(c), result.Items)
	return utils.PageResponse(c, result)
}

// Following handles GET /api/users/:nickname/following
// @Summary List the users a user follows
// @Tags Users
// @Produce json
// @Param nickname path string true "Nickname"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.User]
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{nickname}/following [get]
func (h *Handler) Following(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	page, perPage := h.pageParams(c)
	result, err := services.Following(c.UserContext(), h.Store, user.UserID, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	result.Items = publicUsers(middleware.Principal(c), result.Items)
	return utils.PageResponse(c, result)
}

// UserPosts handles GET /api/users/:nickname/posts
// @Summary List the posts of a user
// @Description Only posts the caller may see are listed
// @Tags Users
// @Produce json
// @Param nickname path string true "Nickname"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[models.Post]
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{nickname}/posts [get]
func (h *Handler) UserPosts(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	p := middleware.Principal(c)
	page, perPage := h.pageParams(c)
	result, err := services.ListUserPosts(c.UserContext(), h.Store, p, user.UserID, page, perPage)
	if err != nil {
		return h.fail(c, err)
	}
	return h.posts(c, result)
}
