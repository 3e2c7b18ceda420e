package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/domain/shared/fault"
)

// respondError translates fault kinds onto HTTP status codes. Anything
// unclassified is a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch fault.KindOf(err) {
	case fault.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case fault.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case fault.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
