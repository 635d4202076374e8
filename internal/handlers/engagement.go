package handlers

import (
	"net/http"

	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

// EngagementHandler serves the per-user watchlist, watch progress and
// comment endpoints.
type EngagementHandler struct {
	watchlist *services.WatchlistService
	progress  *services.WatchProgressService
	comments  *services.CommentService
}

func NewEngagementHandler(watchlist *services.WatchlistService, progress *services.WatchProgressService, comments *services.CommentService) *EngagementHandler {
	return &EngagementHandler{watchlist: watchlist, progress: progress, comments: comments}
}

// ===============================
// WATCHLIST
// ===============================

func (h *EngagementHandler) AddToWatchlist(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input services.WatchlistInput
	if !bindJSON(c, &input) {
		return
	}

	entry, err := h.watchlist.AddToWatchlist(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime added to watchlist", gin.H{"watchlist": entry})
}

func (h *EngagementHandler) RemoveFromWatchlist(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input services.WatchlistInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.watchlist.RemoveFromWatchlist(c.Request.Context(), caller, input); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime removed from watchlist", nil)
}

func (h *EngagementHandler) GetAllWatchlist(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	entries, err := h.watchlist.GetAllWatchlist(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Fetched all watchlist items successfully", gin.H{
		"count":     len(entries),
		"watchlist": entries,
	})
}

// ===============================
// WATCH PROGRESS
// ===============================

func (h *EngagementHandler) SaveProgress(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input services.SaveProgressInput
	if !bindJSON(c, &input) {
		return
	}

	progress, err := h.progress.SaveProgress(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Watch progress saved successfully", gin.H{"watchProgress": progress})
}

func (h *EngagementHandler) GetWatchProgress(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	progress, err := h.progress.GetWatchProgress(c.Request.Context(), caller,
		c.Param("animeId"), c.Param("seasonId"), c.Param("episodeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Watch progress retrieved successfully", gin.H{"watchProgress": progress})
}

// ===============================
// COMMENTS
// ===============================

func (h *EngagementHandler) AddComment(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input services.AddCommentInput
	if !bindJSON(c, &input) {
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Comment added successfully", gin.H{"comment": comment})
}

func (h *EngagementHandler) GetCommentsByEpisode(c *gin.Context) {
	comments, err := h.comments.GetCommentsByEpisode(c.Request.Context(), c.Param("episodeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Comments fetched successfully", gin.H{
		"count":    len(comments),
		"comments": comments,
	})
}

func (h *EngagementHandler) UpdateComment(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input services.UpdateCommentInput
	if !bindJSON(c, &input) {
		return
	}

	comment, err := h.comments.UpdateComment(c.Request.Context(), caller, c.Param("commentId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": comment})
}

func (h *EngagementHandler) DeleteComment(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), caller, c.Param("commentId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Comment deleted successfully", nil)
}
