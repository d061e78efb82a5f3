// offers.go
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

func publicOffers(p access.Principal, offers []models.JobApp) []models.JobApp {
	for i := range offers {
		if offers[i].Recipient != nil {
			recipient := publicUser(p, *offers[i].Recipient)
			offers[i].Recipient = &recipient
		}
		if offers[i].Sender != nil && offers[i].Sender.User != nil {
			sender := *offers[i].Sender
			user := publicUser(p, *sender.User)
			sender.User = &user
			offers[i].Sender = &sender
		}
	}
	return offers
}

// OffersTo handles GET /api/users/:nickname/offers
// @Summary List the offers the caller's company sent to a user
// @Tags Offers
// @Produce json
// @Param nickname path string true "Nickname"
// @Success 200 {array} models.JobApp
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{nickname}/offers [get]
func (h *Handler) OffersTo(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	p := middleware.Principal(c)
	offers, err := services.OffersFromCompanyTo(c.UserContext(), h.Store, p, user.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, publicOffers(p, offers), fiber.StatusOK)
}

// SendOffer handles POST /api/users/:nickname/offers
// @Summary Offer a job to a user
// @Description Sent on behalf of the caller's company
// @Tags Offers
// @Accept json
// @Produce json
// @Param nickname path string true "Nickname"
// @Param body body services.OfferInput true "Offer"
// @Success 201 {object} models.JobApp
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{nickname}/offers [post]
func (h *Handler) SendOffer(c *fiber.Ctx) error {
	user, err := h.userParam(c)
	if err != nil {
		return h.fail(c, err)
	}

	var in services.OfferInput
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	offer, err := services.SendOffer(c.UserContext(), h.Store, middleware.Principal(c), user.UserID, in)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, offer, fiber.StatusCreated)
}

// ListOffers handles GET /api/offers
// @Summary List the caller's offers
// @Description Received offers, or sent ones with sent=true
// @Tags Offers
// @Produce json
// @Param sent query bool false "List sent offers"
// @Success 200 {array} models.JobApp
// @Security BearerAuth
// @Router /offers [get]
func (h *Handler) ListOffers(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	var offers []models.JobApp
	var err error
	if c.QueryBool("sent", false) {
		offers, err = services.SentOffers(c.UserContext(), h.Store, p)
	} else {
		offers, err = services.ReceivedOffers(c.UserContext(), h.Store, p.UserID)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, publicOffers(p, offers), fiber.StatusOK)
}

// AcceptOffer handles POST /api/offers/:id/accept
// @Summary Accept a job offer
// @Description The caller joins the offering company and the offer is consumed
// @Tags Offers
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} models.Employee
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /offers/{id}/accept [post]
func (h *Handler) AcceptOffer(c *fiber.Ctx) error {
	offerID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	employee, err := services.AcceptOffer(c.UserContext(), h.Store, middleware.Principal(c).UserID, offerID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, employee, fiber.StatusOK)
}

// WithdrawOffer handles DELETE /api/offers/:id
// @Summary Withdraw a job offer
// @Tags Offers
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /offers/{id} [delete]
func (h *Handler) WithdrawOffer(c *fiber.Ctx) error {
	offerID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}

	if err := services.WithdrawOffer(c.UserContext(), h.Store, middleware.Principal(c), offerID); err != nil {
		return h.fail(c, err)
	}
	return utils.MutationSuccessResponse(c, "Offer withdrawn")
}
