package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dbis-ilm/poseidon-go/internal/metrics"
	"github.com/dbis-ilm/poseidon-go/internal/qerrors"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInvalidPlan    = "invalid_plan"
	ErrCodeQueryFailed    = "query_failed"
	ErrCodeInternalError  = "internal_error"
)

// errorResponse is the standardized JSON error body.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// respondError writes a standardized JSON error response and counts it.
func respondError(c *gin.Context, status int, code, message string) {
	metrics.APIErrorsTotal.WithLabelValues(code).Inc()
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	c.JSON(status, resp)
}

// queryErrorCode maps an error returned by Driver.Run to a stable API
// error code, distinguishing plan-shape mistakes (spec §7 ErrInvalidPlan)
// from runtime operator failures so a client can tell the two apart.
func queryErrorCode(err error) string {
	if errors.Is(err, qerrors.ErrInvalidPlan) {
		return ErrCodeInvalidPlan
	}
	return ErrCodeQueryFailed
}
