// ===============================
// internal/handlers/episode.go - Episode endpoints
// ===============================

package handlers

import (
	"encoding/json"
	"net/http"

	"animax/internal/models"
	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

type EpisodeHandler struct {
	service *services.EpisodeService
}

func NewEpisodeHandler(service *services.EpisodeService) *EpisodeHandler {
	return &EpisodeHandler{service: service}
}

// ===============================
// ADMIN EPISODE MANAGEMENT
// ===============================

func (h *EpisodeHandler) AddEpisode(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	number, _, err := formInt(c, "episodeNumber")
	if err != nil {
		respondError(c, err)
		return
	}
	subtitles, _, err := formSubtitles(c)
	if err != nil {
		respondError(c, err)
		return
	}
	input := services.EpisodeInput{
		EpisodeNumber: number,
		Title:         formStringPtr(c, "title"),
		Subtitles:     subtitles,
	}
	input.Duration, _ = formString(c, "duration")

	media, closeMedia, err := formFile(c, "animeEpisode")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeMedia()

	episode, err := h.service.AddEpisode(c.Request.Context(), caller, c.Param("seasonId"), input, media)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Episode added successfully", gin.H{"episode": episode})
}

func (h *EpisodeHandler) UpdateEpisode(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	update := services.EpisodeUpdate{
		Title:    formStringPtr(c, "title"),
		Duration: formStringPtr(c, "duration"),
	}
	number, sent, err := formInt(c, "episodeNumber")
	if err != nil {
		respondError(c, err)
		return
	}
	if sent {
		update.EpisodeNumber = &number
	}
	subtitles, sent, err := formSubtitles(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if sent {
		update.Subtitles = &subtitles
	}

	media, closeMedia, err := formFile(c, "animeEpisode")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeMedia()

	episode, err := h.service.UpdateEpisode(c.Request.Context(), caller, c.Param("episodeId"), update, media)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Episode updated successfully", gin.H{"episode": episode})
}

func (h *EpisodeHandler) DeleteEpisode(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.service.DeleteEpisode(c.Request.Context(), caller, c.Param("episodeId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Episode deleted successfully", nil)
}

// ===============================
// PUBLIC EPISODE ENDPOINTS
// ===============================

func (h *EpisodeHandler) GetEpisodesBySeason(c *gin.Context) {
	episodes, err := h.service.GetEpisodesBySeason(c.Request.Context(), c.Param("seasonId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Episodes fetched successfully by season", gin.H{"episodes": episodes})
}

func (h *EpisodeHandler) GetEpisodeByID(c *gin.Context) {
	episode, err := h.service.GetEpisodeByID(c.Request.Context(), c.Param("episodeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Episode fetched successfully by id", gin.H{"episode": episode})
}

// formSubtitles decodes the subtitles field, sent as a JSON array.
func formSubtitles(c *gin.Context) ([]models.Subtitle, bool, error) {
	raw, ok := formString(c, "subtitles")
	if !ok || raw == "" {
		return nil, ok, nil
	}
	var subtitles []models.Subtitle
	if err := json.Unmarshal([]byte(raw), &subtitles); err != nil {
		return nil, true, services.NewValidationError("subtitles must be a JSON array of {language, url}")
	}
	return subtitles, true, nil
}
