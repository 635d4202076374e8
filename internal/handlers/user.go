package handlers

import (
	"net/http"

	"animax/internal/models"
	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) SignupUser(c *gin.Context) {
	var input services.SignupInput
	input.UserName, _ = formString(c, "userName")
	input.Email, _ = formString(c, "email")
	input.Password, _ = c.GetPostForm("password")
	input.Bio, _ = formString(c, "bio")

	picture, closePicture, err := formFile(c, "profilePicture")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closePicture()

	user, err := h.service.SignupUser(c.Request.Context(), input, picture)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User registered successfully", gin.H{"user": user})
}

func (h *UserHandler) SigninUser(c *gin.Context) {
	var input services.SigninInput
	if !bindJSON(c, &input) {
		return
	}

	user, token, err := h.service.SigninUser(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User Login Successfully", gin.H{
		"data":  signinData(user),
		"token": token,
	})
}

func signinData(user *models.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"userName":       user.UserName,
		"email":          user.Email,
		"profilePicture": user.ProfilePicture,
		"bio":            user.Bio,
		"watchlist":      user.Watchlist,
		"comments":       user.Comments,
		"watchProgress":  user.WatchProgress,
		"role":           models.RoleUser,
	}
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), caller, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User Fetched Successfully", gin.H{"user": user})
}

func (h *UserHandler) ResetUserPassword(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var input services.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.service.ResetUserPassword(c.Request.Context(), caller, input); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Password Reset Successfully", nil)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	update := services.UserUpdate{
		UserName: formStringPtr(c, "userName"),
		Bio:      formStringPtr(c, "bio"),
	}
	picture, closePicture, err := formFile(c, "profilePicture")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closePicture()

	user, err := h.service.UpdateUser(c.Request.Context(), caller, c.Param("userId"), update, picture)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User Updated Successfully.", gin.H{"user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), caller, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully!", nil)
}

// Logout is stateless; the client drops its token.
func (h *UserHandler) LogoutUser(c *gin.Context) {
	respond(c, http.StatusOK, "Logout SuccessFully!", gin.H{"token": nil})
}
