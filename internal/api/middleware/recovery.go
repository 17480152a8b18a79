package middleware

import (
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"recommender/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns handler panics into a 500 response. A panic caused by the
// client dropping the connection mid-request is aborted without a stack
// trace.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if isClientDisconnect(recovered) {
			c.Abort()
			return
		}

		if gin.IsDebugging() {
			request, _ := httputil.DumpRequest(c.Request, false)
			log.Error("Recovered from panic: %v\n%s\n%s", recovered, string(request), string(debug.Stack()))
		} else {
			log.Error("Recovered from panic: %v", recovered)
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func isClientDisconnect(recovered interface{}) bool {
	opErr, ok := recovered.(*net.OpError)
	if !ok {
		return false
	}
	sysErr, ok := opErr.Err.(*os.SyscallError)
	if !ok {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
