package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reportingrepo "github.com/bovipred/bovipred-backend/internal/data/repos/reporting"
	"github.com/bovipred/bovipred-backend/internal/domain/auth"
	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/platform/ctxutil"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// windowRequest carries report date bounds as plain YYYY-MM-DD strings
// so clients are not forced into RFC3339 timestamps.
type windowRequest struct {
	From string `json:"fecha_inicio"`
	To   string `json:"fecha_fin"`
}

func (r windowRequest) window() (services.WindowInput, bool) {
	var w services.WindowInput
	if r.From != "" {
		t, ok := parseDate(r.From)
		if !ok {
			return w, false
		}
		w.From = t
	}
	if r.To != "" {
		t, ok := parseDate(r.To)
		if !ok {
			return w, false
		}
		w.To = t
	}
	return w, true
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (h *ReportHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	filter := reportingrepo.ReportFilter{
		Type:   c.Query("tipo_reporte"),
		Limit:  limit,
		Offset: offset,
	}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserRole != auth.RoleAdmin {
		filter.UserID = &rd.UserID
	}
	reports, total, err := h.reportService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, reports, total)
}

func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	report, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.reportService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, "Reporte eliminado exitosamente", nil)
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dash)
}

func (h *ReportHandler) PregnancyRates(c *gin.Context) {
	var req struct {
		windowRequest
		GroupName string `json:"grupo_lote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	window, ok := req.window()
	if !ok {
		response.BadRequest(c, "formato de fecha invalido")
		return
	}
	report, err := h.reportService.GeneratePregnancyRates(c.Request.Context(), services.PregnancyRatesInput{
		WindowInput: window,
		GroupName:   req.GroupName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Reporte generado exitosamente", report)
}

func (h *ReportHandler) ProtocolEffectiveness(c *gin.Context) {
	var req struct {
		windowRequest
		Treatment string `json:"tratamiento"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	window, ok := req.window()
	if !ok {
		response.BadRequest(c, "formato de fecha invalido")
		return
	}
	report, err := h.reportService.GenerateProtocolEffectiveness(c.Request.Context(), services.ProtocolInput{
		WindowInput: window,
		Treatment:   req.Treatment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Reporte generado exitosamente", report)
}

func (h *ReportHandler) SireAnalysis(c *gin.Context) {
	var req struct {
		SireID *uuid.UUID `json:"semental_id"`
		From   string     `json:"fecha_inicio"`
		To     string     `json:"fecha_fin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "cuerpo de la peticion invalido")
		return
	}
	in := services.SireAnalysisInput{SireID: req.SireID}
	if req.From != "" {
		t, ok := parseDate(req.From)
		if !ok {
			response.BadRequest(c, "formato de fecha invalido")
			return
		}
		in.From = &t
	}
	if req.To != "" {
		t, ok := parseDate(req.To)
		if !ok {
			response.BadRequest(c, "formato de fecha invalido")
			return
		}
		in.To = &t
	}
	report, err := h.reportService.GenerateSireAnalysis(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Reporte generado exitosamente", report)
}

func (h *ReportHandler) ModelPerformance(c *gin.Context) {
	report, err := h.reportService.GenerateModelPerformance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Reporte generado exitosamente", report)
}
