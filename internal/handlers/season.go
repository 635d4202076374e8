package handlers

import (
	"net/http"

	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

type SeasonHandler struct {
	service *services.SeasonService
}

func NewSeasonHandler(service *services.SeasonService) *SeasonHandler {
	return &SeasonHandler{service: service}
}

func (h *SeasonHandler) AddSeason(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	number, _, err := formInt(c, "seasonNumber")
	if err != nil {
		respondError(c, err)
		return
	}
	input := services.SeasonInput{SeasonNumber: number}
	input.SeasonTitle, _ = formString(c, "seasonTitle")

	cover, closeCover, err := formFile(c, "seasonCover")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeCover()

	season, err := h.service.AddSeason(c.Request.Context(), caller, c.Param("animeId"), input, cover)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Season added successfully", gin.H{"season": season})
}

func (h *SeasonHandler) GetAllSeasonsByAnime(c *gin.Context) {
	seasons, err := h.service.GetAllSeasonsByAnime(c.Request.Context(), c.Param("animeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Seasons fetched successfully", gin.H{"seasons": seasons})
}

func (h *SeasonHandler) GetSeasonByID(c *gin.Context) {
	season, err := h.service.GetSeasonByID(c.Request.Context(), c.Param("seasonId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Season fetched successfully by id", gin.H{"season": season})
}

func (h *SeasonHandler) UpdateSeason(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	update := services.SeasonUpdate{SeasonTitle: formStringPtr(c, "seasonTitle")}
	number, sent, err := formInt(c, "seasonNumber")
	if err != nil {
		respondError(c, err)
		return
	}
	if sent {
		update.SeasonNumber = &number
	}

	cover, closeCover, err := formFile(c, "seasonCover")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeCover()

	season, err := h.service.UpdateSeason(c.Request.Context(), caller, c.Param("seasonId"), update, cover)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Season updated successfully", gin.H{"season": season})
}

func (h *SeasonHandler) DeleteSeason(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSeason(c.Request.Context(), caller, c.Param("seasonId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Season and all episodes deleted successfully", nil)
}
