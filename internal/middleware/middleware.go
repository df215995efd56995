package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CORS middleware for handling Cross-Origin Resource Sharing
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Recovery turns a panic in a handler into a 500 response and logs it
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Internal server error",
			Message:   "An internal error occurred",
			RequestID: c.GetString(RequestIDKey),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	})
}

// ErrorHandler logs errors attached with c.Error and renders the last one
// when the handler did not write a response itself
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		requestID := c.GetString(RequestIDKey)

		logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"error":       err.Error(),
		}).Error("Request error")

		if c.Writer.Written() {
			return
		}

		response := ErrorResponse{
			RequestID: requestID,
			Timestamp: time.Now().Format(time.RFC3339),
		}

		switch err.Type {
		case gin.ErrorTypeBind:
			response.Error = "Invalid request format"
			response.Message = err.Error()
			c.JSON(http.StatusBadRequest, response)
		case gin.ErrorTypePublic:
			response.Error = "Request failed"
			response.Message = err.Error()
			c.JSON(http.StatusBadRequest, response)
		default:
			response.Error = "Internal server error"
			response.Message = "An internal error occurred"
			c.JSON(http.StatusInternalServerError, response)
		}
	}
}
