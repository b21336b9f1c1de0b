package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/platform/ctxutil"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	user, token, err := h.authService.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Usuario registrado exitosamente", gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Login exitoso", gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		response.BadRequest(c, "token requerido")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Sesion cerrada exitosamente", nil)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.authService.Profile(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in services.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Perfil actualizado", user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"password_actual"`
		NewPassword     string `json:"password_nueva"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	token, err := h.authService.ChangePassword(c.Request.Context(), ctxutil.UserID(c.Request.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Password actualizado exitosamente", gin.H{"token": token})
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, total, err := h.authService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, users, total)
}

func (h *AuthHandler) ToggleUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.authService.ToggleUser(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Estado del usuario actualizado", user)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
