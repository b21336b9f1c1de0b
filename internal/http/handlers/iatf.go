package handlers

import (
	"github.com/gin-gonic/gin"

	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type IATFHandler struct {
	iatfService services.IATFService
}

func NewIATFHandler(iatfService services.IATFService) *IATFHandler {
	return &IATFHandler{iatfService: iatfService}
}

func (h *IATFHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	f := livestockrepo.IATFFilter{
		AnimalID:           queryUUID(c, "animal_id"),
		SireID:             queryUUID(c, "semental_id"),
		Outcome:            c.Query("resultado_iatf"),
		PregnancyConfirmed: queryBool(c, "prenez_confirmada"),
		From:               queryDate(c, "fecha_inicio"),
		To:                 queryDate(c, "fecha_fin"),
		GroupName:          c.Query("grupo_lote"),
		Limit:              limit,
		Offset:             offset,
	}
	records, total, err := h.iatfService.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, records, total)
}

func (h *IATFHandler) Create(c *gin.Context) {
	var in services.IATFInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	rec, err := h.iatfService.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Registro IATF creado exitosamente", rec)
}

func (h *IATFHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rec, prediction, err := h.iatfService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"registro": rec, "prediccion": prediction})
}

func (h *IATFHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.IATFInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	rec, err := h.iatfService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Registro IATF actualizado exitosamente", rec)
}

// ConfirmResult registers the final outcome of the insemination and
// triggers the sire statistics recompute.
func (h *IATFHandler) ConfirmResult(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.ConfirmResultInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	rec, err := h.iatfService.ConfirmResult(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Resultado confirmado exitosamente", rec)
}

func (h *IATFHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.iatfService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Registro IATF eliminado exitosamente", nil)
}
