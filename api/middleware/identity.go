package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ActingUser extracts the authenticated caller's id from the identity
// header. The gateway in front of this service has already validated
// the credential; an absent or malformed header means no identity.
func ActingUser(c *gin.Context) (uint, bool) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
