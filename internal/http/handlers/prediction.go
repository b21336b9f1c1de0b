package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

func (h *PredictionHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	predictions, total, err := h.predictionService.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, predictions, total)
}

// Create scores one insemination event. A repeat request answers 409
// with the existing prediction in the payload.
func (h *PredictionHandler) Create(c *gin.Context) {
	var req struct {
		IATFRecordID uuid.UUID `json:"iatf_record_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	pred, err := h.predictionService.Predict(c.Request.Context(), req.IATFRecordID)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) && pred != nil {
			response.ErrorWithData(c, err, pred)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, "Prediccion generada exitosamente", pred)
}

func (h *PredictionHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	pred, err := h.predictionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pred)
}

// Validate registers the observed outcome against the prediction.
func (h *PredictionHandler) Validate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ObservedOutcome *bool `json:"resultado_real"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ObservedOutcome == nil {
		response.BadRequest(c, "resultado_real requerido")
		return
	}
	pred, err := h.predictionService.ValidateOutcome(c.Request.Context(), id, *req.ObservedOutcome)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Prediccion validada exitosamente", pred)
}

func (h *PredictionHandler) Stats(c *gin.Context) {
	stats, err := h.predictionService.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
