// ===============================
// internal/handlers/respond.go - Response envelope and request helpers
// ===============================

package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"animax/internal/logging"
	"animax/internal/middleware"
	"animax/internal/models"
	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

// respond writes the {success, message, ...payload} envelope.
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps a service error onto its status code. Internal and
// upstream causes are logged and hidden behind "Server Error".
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("route", c.FullPath()).
			Msg("request failed")
	}
	fail(c, status, services.MessageOf(err))
}

// identity returns the authenticated caller or writes a 401.
func identity(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		fail(c, http.StatusUnauthorized, middleware.MsgNotAuthenticated)
	}
	return id, ok
}

// formFile opens an optional multipart file. A missing field yields nil.
// The caller must invoke the returned close func.
func formFile(c *gin.Context, field string) (*services.MediaFile, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, services.NewValidationError("Invalid multipart form")
	}
	return openMedia(header)
}

func openMedia(header *multipart.FileHeader) (*services.MediaFile, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, services.NewInternalError("failed to open upload", err)
	}
	media := &services.MediaFile{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	return media, func() { _ = file.Close() }, nil
}

// formString returns a trimmed field and whether it was sent at all.
func formString(c *gin.Context, key string) (string, bool) {
	v, ok := c.GetPostForm(key)
	return strings.TrimSpace(v), ok
}

func formStringPtr(c *gin.Context, key string) *string {
	v, ok := formString(c, key)
	if !ok {
		return nil
	}
	return &v
}

// formInt parses an integer field. Absent fields return (0, false, nil).
func formInt(c *gin.Context, key string) (int, bool, error) {
	v, ok := formString(c, key)
	if !ok || v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, services.NewValidationError(key + " must be a number")
	}
	return n, true, nil
}

func formFloat(c *gin.Context, key string) (*float64, error) {
	v, ok := formString(c, key)
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, services.NewValidationError(key + " must be a number")
	}
	return &f, nil
}

// formList accepts repeated fields (genres=a&genres=b), the bracket form
// and a single comma separated value.
func formList(c *gin.Context, key string) ([]string, bool) {
	values, ok := c.GetPostFormArray(key)
	if !ok {
		values, ok = c.GetPostFormArray(key + "[]")
	}
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
