package handlers

import (
	"net/http"

	"animax/internal/services"

	"github.com/gin-gonic/gin"
)

type SuperAdminHandler struct {
	service *services.SuperAdminService
}

func NewSuperAdminHandler(service *services.SuperAdminService) *SuperAdminHandler {
	return &SuperAdminHandler{service: service}
}

func (h *SuperAdminHandler) SignupSuperAdmin(c *gin.Context) {
	var input services.SuperAdminSignupInput
	input.UserName, _ = formString(c, "userName")
	input.Email, _ = formString(c, "email")
	input.Password, _ = c.GetPostForm("password")

	picture, closePicture, err := formFile(c, "profilePicture")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closePicture()

	admin, err := h.service.SignupSuperAdmin(c.Request.Context(), input, picture)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Super admin registered successfully", gin.H{"superAdmin": admin})
}

func (h *SuperAdminHandler) SigninSuperAdmin(c *gin.Context) {
	var input services.SigninInput
	if !bindJSON(c, &input) {
		return
	}

	admin, token, err := h.service.SigninSuperAdmin(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Super admin Login Successfully", gin.H{
		"data":  admin,
		"token": token,
	})
}

func (h *SuperAdminHandler) GetSuperAdminByID(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	admin, err := h.service.GetSuperAdminByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Super admin fetched successfully", gin.H{"superAdmin": admin})
}

func (h *SuperAdminHandler) ResetSuperAdminPassword(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var input services.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.service.ResetSuperAdminPassword(c.Request.Context(), caller, input); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Password Reset Successfully", nil)
}

func (h *SuperAdminHandler) LogoutSuperAdmin(c *gin.Context) {
	respond(c, http.StatusOK, "Logout SuccessFully!", gin.H{"token": nil})
}
