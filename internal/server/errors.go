package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
)

// writeError maps err onto a status code and an {error} body. Store failures
// carry the driver message unchanged.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "warning": s.gateway.Warning()})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": common.PublicMessage(err)})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": common.PublicMessage(err)})
	default:
		s.logger.Error("http.request.failed",
			"path", c.FullPath(),
			"request_id", common.RequestIDFromContext(c.Request.Context()),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.PublicMessage(err)})
	}
}
