// Package http implements smoldb's external REST surface over
// github.com/gin-gonic/gin, in the style of the retrieved registry
// server's setupRESTAPI/gin.H envelope pattern: one router factory,
// thin handlers that delegate to catalog/collection/peers, and a
// uniform success/error envelope.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smoldb/smoldb/internal/errs"
)

var startTime = time.Now()

// elapsedSeconds returns the number of seconds since the process
// started, the "time" field of every response envelope.
func elapsedSeconds() float64 {
	return time.Since(startTime).Seconds()
}

// respondOK writes the success envelope {"result":<T>,"time":<secs>}.
func respondOK(c *gin.Context, status int, result interface{}) {
	c.JSON(status, gin.H{
		"result": result,
		"time":   elapsedSeconds(),
	})
}

// respondErr writes the error envelope {"error":<string>,"time":<secs>},
// mapping err's Kind to an HTTP status via errs.AsHTTPStatus.
func respondErr(c *gin.Context, err error) {
	c.JSON(errs.AsHTTPStatus(err), gin.H{
		"error": err.Error(),
		"time":  elapsedSeconds(),
	})
}
