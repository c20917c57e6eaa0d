package mw

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// BranchKey is the context key the branch middleware stores the tenant
// branch id under.
const BranchKey = "branch_id"

// Branch reads the X-Branch-Id header and stores the parsed id in the
// request context. A missing header means an unscoped request; a malformed
// one is ignored rather than rejected.
func Branch() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-Branch-Id"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
				c.Set(BranchKey, uint(id))
			}
		}
		c.Next()
	}
}

// BranchID returns the branch id set by Branch, or nil when the request is
// unscoped.
func BranchID(c *gin.Context) *uint {
	if v, ok := c.Get(BranchKey); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
