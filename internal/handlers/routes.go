package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/middleware"
)

// Routes mounts the API on router
func (h *Handler) Routes(router fiber.Router) {
	user := middleware.RequireUser(h.Store, h.Tokens)
	visitor := middleware.OptionalUser(h.Store, h.Tokens)

	// Auth
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/reset/request", h.RequestReset)
	router.Post("/reset", h.ResetPassword)

	// Users
	router.Get("/me", user, h.Me)
	router.Put("/me", user, h.UpdateMe)
	router.Get("/users/:nickname", visitor, h.GetUser)
	router.Post("/users/:nickname/follow", user, h.Follow)
	router.Delete("/users/:nickname/follow", user, h.Unfollow)
	router.Get("/users/:nickname/followers", visitor, h.Followers)
	router.Get("/users/:nickname/following", visitor, h.Following)
	router.Get("/users/:nickname/posts", visitor, h.UserPosts)
	router.Get("/users/:nickname/offers", user, h.OffersTo)
	router.Post("/users/:nickname/offers", user, h.SendOffer)

	// Posts
	router.Get("/feed", user, h.Feed)
	router.Get("/posts", visitor, h.Blog)
	router.Post("/posts", user, h.CreatePost)
	router.Get("/posts/:id", visitor, h.GetPost)
	router.Get("/search", visitor, h.Search)

	// Companies
	router.Get("/companies", h.ListCompanies)
	router.Post("/companies", user, h.CreateCompany)
	router.Get("/companies/:id", h.GetCompany)
	router.Put("/companies/:id", user, h.UpdateCompany)
	router.Get("/companies/:id/workers", h.CompanyWorkers)
	router.Get("/companies/:id/builds", h.CompanyBuilds)
	router.Get("/companies/:id/forum", visitor, h.CompanyForum)
	router.Post("/companies/:id/forum", user, h.PostCompanyForum)
	router.Get("/companies/:id/private", user, h.CompanyPrivateForum)
	router.Post("/companies/:id/private", user, h.PostCompanyPrivateForum)
	router.Post("/companies/:id/builds/:buildID", user, h.AddBuild)
	router.Delete("/companies/:id/builds/:buildID", user, h.DelBuild)
	router.Post("/firm/quit", user, h.QuitCompany)

	// Builds
	router.Get("/builds", h.ListBuilds)
	router.Post("/builds", user, h.CreateBuild)
	router.Get("/builds/:id", h.GetBuild)
	router.Put("/builds/:id", user, h.UpdateBuild)
	router.Get("/builds/:id/posts", visitor, h.BuildForum)
	router.Post("/builds/:id/posts", user, h.PostBuildForum)
	router.Get("/builds/:id/private", user, h.BuildPrivateForum)
	router.Post("/builds/:id/private", user, h.PostBuildPrivateForum)
	router.Get("/builds/:id/employees", h.BuildEmployees)
	router.Post("/builds/:id/employees/:employeeID", user, h.AssignEmployee)
	router.Delete("/builds/:id/employees/:employeeID", user, h.UnassignEmployee)

	// Offers
	router.Get("/offers", user, h.ListOffers)
	router.Post("/offers/:id/accept", user, h.AcceptOffer)
	router.Delete("/offers/:id", user, h.WithdrawOffer)
}
