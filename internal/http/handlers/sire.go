package handlers

import (
	"github.com/gin-gonic/gin"

	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type SireHandler struct {
	sireService services.SireService
}

func NewSireHandler(sireService services.SireService) *SireHandler {
	return &SireHandler{sireService: sireService}
}

func (h *SireHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	f := livestockrepo.SireFilter{
		Active: queryBool(c, "activo"),
		Search: c.Query("buscar"),
		Limit:  limit,
		Offset: offset,
	}
	sires, total, err := h.sireService.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, sires, total)
}

func (h *SireHandler) Create(c *gin.Context) {
	var in services.SireInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	sire, err := h.sireService.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Semental registrado exitosamente", sire)
}

func (h *SireHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sire, err := h.sireService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sire)
}

func (h *SireHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.SireInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	sire, err := h.sireService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Semental actualizado exitosamente", sire)
}

func (h *SireHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.sireService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Semental eliminado exitosamente", nil)
}

// RecomputeStatistics rebuilds the sire's counters from its events.
func (h *SireHandler) RecomputeStatistics(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.sireService.RecomputeStatistics(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Estadisticas actualizadas exitosamente", stats)
}
