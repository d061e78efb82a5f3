package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/utils"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// SessionResponse carries a session token and its user
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ResetRequest asks for a password reset mail
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest sets a new password with a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Register handles POST /api/register
// @Summary Register a user
// @Description Create an account. Addresses listed in ADMIN_EMAILS register as site admins.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /register [post]
func (h *Handler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}
	in.Admin = h.Config.IsAdminEmail(in.Email)

	user, err := services.RegisterUser(c.UserContext(), h.Store, in)
	if err != nil {
		return h.fail(c, err)
	}

	return h.session(c, user, fiber.StatusCreated)
}

// Login handles POST /api/login
// @Summary Log in
// @Description Exchange a nickname and password for a bearer session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	user, err := services.Authenticate(c.UserContext(), h.Store, in.Nickname, in.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return h.session(c, user, fiber.StatusOK)
}

func (h *Handler) session(c *fiber.Ctx, user *models.User, status int) error {
	token, err := h.Tokens.IssueSession(user.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.SuccessResponse(c, SessionResponse{Token: token, User: user}, status)
}

// RequestReset handles POST /api/reset/request
// @Summary Request a password reset
// @Description Mail a short lived reset token. The answer does not reveal whether the address is known.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetRequest true "Account email"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /reset/request [post]
func (h *Handler) RequestReset(c *fiber.Ctx) error {
	var in ResetRequest
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	if err := services.RequestPasswordReset(c.UserContext(), h.Store, h.Tokens, h.Mailer, in.Email); err != nil {
		return h.fail(c, err)
	}

	return utils.MutationSuccessResponse(c, "If the address is registered, a reset link is on its way")
}

// ResetPassword handles POST /api/reset
// @Summary Reset a password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /reset [post]
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var in ResetPasswordRequest
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	if err := services.ResetPassword(c.UserContext(), h.Store, h.Tokens, in.Token, in.Password); err != nil {
		return h.fail(c, err)
	}

	return utils.MutationSuccessResponse(c, "Password changed")
}
