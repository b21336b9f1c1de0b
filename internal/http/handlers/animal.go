package handlers

import (
	"github.com/gin-gonic/gin"

	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type AnimalHandler struct {
	animalService services.AnimalService
}

func NewAnimalHandler(animalService services.AnimalService) *AnimalHandler {
	return &AnimalHandler{animalService: animalService}
}

func (h *AnimalHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	f := livestockrepo.AnimalFilter{
		Active:             queryBool(c, "activo"),
		GroupID:            queryUUID(c, "grupo_id"),
		ReproductiveStatus: c.Query("estado_reproductivo"),
		Search:             c.Query("buscar"),
		Limit:              limit,
		Offset:             offset,
	}
	animals, total, err := h.animalService.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, animals, total)
}

func (h *AnimalHandler) Create(c *gin.Context) {
	var in services.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	animal, err := h.animalService.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Animal registrado exitosamente", animal)
}

func (h *AnimalHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	animal, err := h.animalService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, animal)
}

func (h *AnimalHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	animal, err := h.animalService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Animal actualizado exitosamente", animal)
}

func (h *AnimalHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.animalService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Animal eliminado exitosamente", nil)
}

func (h *AnimalHandler) Stats(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.animalService.Stats(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
