package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelhub/internal/apperr"
	"travelhub/pkg/response"
)

// respondError maps the typed error taxonomy onto HTTP statuses with
// their stable messages. Anything unexpected becomes a generic server
// error.
func respondError(c *gin.Context, err error) {
	var notFound *apperr.NotFoundError
	var terminal *apperr.TerminalStateError
	var permission *apperr.PermissionError
	var validation *apperr.ValidationError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, response.Error(notFound.Error()))
	case errors.As(err, &terminal):
		c.JSON(http.StatusBadRequest, response.Error(terminal.Error()))
	case errors.As(err, &permission):
		c.JSON(http.StatusForbidden, response.Error(permission.Error()))
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, response.Error(validation.Error()))
	default:
		log.Printf("handler: unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, response.Error("Server error"))
	}
}
