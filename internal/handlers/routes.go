// ===============================
// internal/handlers/routes.go - REST route table
// ===============================

package handlers

import (
	"animax/internal/middleware"
	"animax/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles every endpoint group.
type Handlers struct {
	Anime      *AnimeHandler
	Season     *SeasonHandler
	Episode    *EpisodeHandler
	User       *UserHandler
	SuperAdmin *SuperAdminHandler
	Engagement *EngagementHandler
	Health     *HealthHandler
}

// Gate carries what the auth middleware needs.
type Gate struct {
	Tokens   middleware.TokenValidator
	Accounts middleware.AccountResolver
	Authz    middleware.Authorizer
}

func RegisterRoutes(router *gin.Engine, h Handlers, gate Gate) {
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := middleware.Authenticate(gate.Tokens, gate.Accounts)
	can := func(resource, action string) gin.HandlerFunc {
		return middleware.RequirePermission(gate.Authz, resource, action)
	}

	api := router.Group("/api")

	// ===============================
	// CATALOG
	// ===============================
	anime := api.Group("/anime")
	{
		anime.POST("/add-anime", authenticated, can(services.ResourceAnime, services.ActionCreate), h.Anime.AddAnime)
		anime.GET("/get-all-anime", authenticated, can(services.ResourceAnime, services.ActionRead), h.Anime.GetAllAnime)
		anime.GET("/get-anime-by-id/:animeId", authenticated, can(services.ResourceAnime, services.ActionRead), h.Anime.GetAnimeByID)
		anime.PATCH("/update-anime/:animeId", authenticated, can(services.ResourceAnime, services.ActionUpdate), h.Anime.UpdateAnime)
		anime.DELETE("/delete-anime/:animeId", authenticated, can(services.ResourceAnime, services.ActionDelete), h.Anime.DeleteAnime)
	}

	season := api.Group("/season")
	{
		season.POST("/add-season/:animeId", authenticated, can(services.ResourceSeason, services.ActionCreate), h.Season.AddSeason)
		season.GET("/get-all-seasons-by-anime/:animeId", h.Season.GetAllSeasonsByAnime)
		season.GET("/get-season-by-id/:seasonId", h.Season.GetSeasonByID)
		season.PATCH("/update-season/:seasonId", authenticated, can(services.ResourceSeason, services.ActionUpdate), h.Season.UpdateSeason)
		season.DELETE("/delete-season/:seasonId", authenticated, can(services.ResourceSeason, services.ActionDelete), h.Season.DeleteSeason)
	}

	episode := api.Group("/episode")
	{
		episode.POST("/add-episode/:seasonId", authenticated, can(services.ResourceEpisode, services.ActionCreate), h.Episode.AddEpisode)
		episode.GET("/get-episodes-by-season/:seasonId", h.Episode.GetEpisodesBySeason)
		episode.GET("/get-episode-by-id/:episodeId", h.Episode.GetEpisodeByID)
		episode.PATCH("/update-episode/:episodeId", authenticated, can(services.ResourceEpisode, services.ActionUpdate), h.Episode.UpdateEpisode)
		episode.DELETE("/delete-episode/:episodeId", authenticated, can(services.ResourceEpisode, services.ActionDelete), h.Episode.DeleteEpisode)
	}

	// ===============================
	// ACCOUNTS
	// ===============================
	user := api.Group("/user")
	{
		user.POST("/signup-user", h.User.SignupUser)
		user.POST("/signin-user", h.User.SigninUser)
		user.GET("/get-user-by-id/:userId", authenticated, can(services.ResourceUser, services.ActionRead), h.User.GetUserByID)
		user.PATCH("/reset-user-password", authenticated, h.User.ResetUserPassword)
		user.PATCH("/update-user/:userId", authenticated, can(services.ResourceUser, services.ActionUpdate), h.User.UpdateUser)
		user.DELETE("/delete-user/:userId", authenticated, can(services.ResourceUser, services.ActionDelete), h.User.DeleteUser)
		user.POST("/logout-user", authenticated, h.User.LogoutUser)
	}

	superAdmin := api.Group("/super-admin")
	{
		superAdmin.POST("/signup-super-admin", h.SuperAdmin.SignupSuperAdmin)
		superAdmin.POST("/signin-super-admin", h.SuperAdmin.SigninSuperAdmin)
		superAdmin.GET("/get-super-admin-by-id/:id", authenticated, h.SuperAdmin.GetSuperAdminByID)
		superAdmin.PATCH("/reset-super-admin-password", authenticated, h.SuperAdmin.ResetSuperAdminPassword)
		superAdmin.POST("/logout-super-admin", authenticated, h.SuperAdmin.LogoutSuperAdmin)
	}

	// ===============================
	// ENGAGEMENT (USER role)
	// ===============================
	watchlist := api.Group("/watchlist", authenticated)
	{
		watchlist.POST("/add-to-watchlist", can(services.ResourceWatchlist, services.ActionCreate), h.Engagement.AddToWatchlist)
		watchlist.POST("/remove-from-watchlist", can(services.ResourceWatchlist, services.ActionDelete), h.Engagement.RemoveFromWatchlist)
		watchlist.GET("/get-all-watchlist", can(services.ResourceWatchlist, services.ActionRead), h.Engagement.GetAllWatchlist)
	}

	progress := api.Group("/watch-progress", authenticated)
	{
		progress.POST("/save-progress", can(services.ResourceWatchProgress, services.ActionUpdate), h.Engagement.SaveProgress)
		progress.GET("/get-watch-progress/:animeId/:seasonId/:episodeId", can(services.ResourceWatchProgress, services.ActionRead), h.Engagement.GetWatchProgress)
	}

	comment := api.Group("/comment", authenticated)
	{
		comment.POST("/add-comment", can(services.ResourceComment, services.ActionCreate), h.Engagement.AddComment)
		comment.GET("/get-comments-by-episode/:episodeId", can(services.ResourceComment, services.ActionRead), h.Engagement.GetCommentsByEpisode)
		comment.PATCH("/update-comment/:commentId", can(services.ResourceComment, services.ActionUpdate), h.Engagement.UpdateComment)
		comment.DELETE("/delete-comment/:commentId", can(services.ResourceComment, services.ActionDelete), h.Engagement.DeleteComment)
	}
}
