package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrorResponse represents a standardized middleware error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func abortWith(c *gin.Context, status int, errText, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     errText,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// RequestValidation rejects malformed ids and report parameters before
// they reach a handler
func RequestValidation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateQueryParams(c); err != nil {
			abortWith(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
			return
		}

		if err := validatePathParams(c); err != nil {
			abortWith(c, http.StatusBadRequest, "Invalid path parameters", err.Error())
			return
		}

		c.Next()
	}
}

// RateLimiter implements rate limiting middleware
func RateLimiter(logger *logrus.Logger, requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
			}).Warn("Rate limit exceeded")

			abortWith(c, http.StatusTooManyRequests, "Rate limit exceeded",
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// ContentTypeValidation validates the content type of request bodies.
// Requests without a body are let through.
func ContentTypeValidation(allowedTypes ...string) gin.HandlerFunc {
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"application/json"}
	}

	return func(c *gin.Context) {
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		if contentType == "" {
			abortWith(c, http.StatusBadRequest, "Missing Content-Type header", "Content-Type header is required")
			return
		}

		mainType := strings.TrimSpace(strings.Split(contentType, ";")[0])
		for _, allowedType := range allowedTypes {
			if mainType == allowedType {
				c.Next()
				return
			}
		}

		abortWith(c, http.StatusUnsupportedMediaType, "Unsupported Content-Type",
			fmt.Sprintf("Content-Type '%s' is not supported. Allowed types: %v", mainType, allowedTypes))
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			abortWith(c, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

func validateQueryParams(c *gin.Context) error {
	if value := c.Query("quarter"); value != "" {
		if q, err := strconv.Atoi(value); err != nil || q < 1 || q > 4 {
			return fmt.Errorf("invalid quarter parameter: must be 1, 2, 3 or 4")
		}
	}

	if value := c.Query("year"); value != "" {
		if y, err := strconv.Atoi(value); err != nil || y < 1 || y > 9999 {
			return fmt.Errorf("invalid year parameter: must be a four digit year")
		}
	}

	if value := c.Query("period"); value != "" {
		if _, err := time.Parse("2006-01", value); err != nil {
			return fmt.Errorf("invalid period parameter: must be in YYYY-MM format")
		}
	}

	if value := c.Query("confirm"); value != "" {
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid confirm parameter: must be a boolean (true/false)")
		}
	}

	return nil
}

func validatePathParams(c *gin.Context) error {
	if value := c.Param("id"); value != "" {
		if !isValidID(value) {
			return fmt.Errorf("invalid id parameter: must be a positive integer")
		}
	}

	return nil
}

func isValidID(s string) bool {
	id, err := strconv.ParseInt(s, 10, 64)
	return err == nil && id > 0
}
