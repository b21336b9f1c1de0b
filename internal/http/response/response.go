package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
)

// Envelope is the uniform response body of every endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Paginated wraps a page of rows with its total row count.
type Paginated struct {
	Rows  any   `json:"rows"`
	Total int64 `json:"total"`
}

func Page(c *gin.Context, rows any, total int64) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: Paginated{Rows: rows, Total: total}})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// Error maps a service error onto the envelope using the apperr
// taxonomy. Validation failures carry the per-field messages.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	env := Envelope{Success: false, Message: errMessage(err, status)}
	if fields := apperr.FieldMap(err); len(fields) > 0 {
		env.Message = "Error de validacion"
		env.Errors = fields
	}
	c.JSON(status, env)
}

// ErrorWithData is Error plus a data payload, used by the prediction
// conflict path to hand back the existing prediction.
func ErrorWithData(c *gin.Context, err error, data any) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, Envelope{Success: false, Message: errMessage(err, status), Data: data})
}

func errMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		return "Error interno del servidor"
	}
	return err.Error()
}
