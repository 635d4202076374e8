package handlers

import (
	"net/http"

	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

type AnimeHandler struct {
	service *services.AnimeService
}

func NewAnimeHandler(service *services.AnimeService) *AnimeHandler {
	return &AnimeHandler{service: service}
}

func (h *AnimeHandler) AddAnime(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	rating, err := formFloat(c, "rating")
	if err != nil {
		respondError(c, err)
		return
	}
	input := services.AnimeInput{Rating: rating}
	input.Title, _ = formString(c, "title")
	input.Description, _ = formString(c, "description")
	input.Genres, _ = formList(c, "genres")
	input.Status, _ = formString(c, "status")
	input.ReleaseDate, _ = formString(c, "releaseDate")
	input.Studio, _ = formString(c, "studio")

	cover, closeCover, err := formFile(c, "animeCover")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeCover()

	anime, err := h.service.CreateAnime(c.Request.Context(), caller, input, cover)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime added successfully", gin.H{"anime": anime})
}

// GetAllAnime lists the catalog, optionally filtered by ?status=.
func (h *AnimeHandler) GetAllAnime(c *gin.Context) {
	animes, err := h.service.GetAllAnime(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime fetched successfully", gin.H{"animes": animes})
}

func (h *AnimeHandler) GetAnimeByID(c *gin.Context) {
	anime, err := h.service.GetAnimeByID(c.Request.Context(), c.Param("animeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime fetched successfully by id", gin.H{"anime": anime})
}

func (h *AnimeHandler) UpdateAnime(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	rating, err := formFloat(c, "rating")
	if err != nil {
		respondError(c, err)
		return
	}
	update := services.AnimeUpdate{
		Title:       formStringPtr(c, "title"),
		Description: formStringPtr(c, "description"),
		Status:      formStringPtr(c, "status"),
		ReleaseDate: formStringPtr(c, "releaseDate"),
		Studio:      formStringPtr(c, "studio"),
		Rating:      rating,
	}
	if genres, ok := formList(c, "genres"); ok {
		update.Genres = &genres
	}

	cover, closeCover, err := formFile(c, "animeCover")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeCover()

	anime, err := h.service.UpdateAnime(c.Request.Context(), caller, c.Param("animeId"), update, cover)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime updated successfully", gin.H{"anime": anime})
}

// DeleteAnime removes the anime with all of its seasons, episodes and media.
func (h *AnimeHandler) DeleteAnime(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAnime(c.Request.Context(), caller, c.Param("animeId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Anime deleted successfully", nil)
}
