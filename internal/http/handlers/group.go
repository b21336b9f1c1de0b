package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) List(c *gin.Context) {
	activeOnly := false
	if v := queryBool(c, "activo"); v != nil {
		activeOnly = *v
	}
	groups, err := h.groupService.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, groups)
}

func (h *GroupHandler) Create(c *gin.Context) {
	var in services.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Grupo creado exitosamente", group)
}

func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	group, err := h.groupService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, group)
}

func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	group, err := h.groupService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Grupo actualizado exitosamente", group)
}

func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Grupo eliminado exitosamente", nil)
}

func (h *GroupHandler) Stats(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.groupService.Stats(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
