package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/server/validation"
)

const (
	msgInternal     = "Internal server error"
	msgInvalidInput = "Invalid input data"
)

type errorBody struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// statusFor maps a service error to its status code and client body.
// Errors without a known kind get a generic 500 that hides their text.
func statusFor(err error) (int, errorBody) {
	var e *common.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, errorBody{Error: msgInternal}
	}

	switch e.Kind {
	case common.KindValidation:
		return http.StatusBadRequest, errorBody{Error: e.Message, Details: e.Details}
	case common.KindAuth, common.KindUnauthorized:
		return http.StatusUnauthorized, errorBody{Error: e.Message}
	case common.KindForbidden:
		return http.StatusForbidden, errorBody{Error: e.Message}
	case common.KindUserExists:
		return http.StatusConflict, errorBody{Error: e.Message}
	case common.KindConfig, common.KindDatabase:
		return http.StatusInternalServerError, errorBody{Error: e.Message}
	default:
		return http.StatusInternalServerError, errorBody{Error: msgInternal}
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path, "kind", common.KindOf(err), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError turns a body decoding failure into a validation error.
func bindError(err error) error {
	e := common.NewError(common.KindValidation, msgInvalidInput, err)
	e.Details = validation.DecodeError(err)
	return e
}
