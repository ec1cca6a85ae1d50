package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"auction-engine/internal/auth"
	"auction-engine/internal/metrics"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware tags each request with an id, then logs it with
// timing and records its latency
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	requestID := c.GetHeader(requestIDHeader)
	if !utils.IsValidID(requestID) {
		requestID = utils.GenerateID()
	}
	c.Header(requestIDHeader, requestID)

	c.Next() // process request

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	metrics.HTTPRequestDuration.
		WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())

	utils.Info("HTTP Request", map[string]any{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     status,
		"latency":    time.Since(start).String(),
	})
}

// AccountOpener provisions an account for a newly seen user
type AccountOpener interface {
	OpenAccount(ctx context.Context, userID, name string) error
}

// RequireAuth validates the bearer token, stores the user id in the context
// and makes sure the user has an account
func RequireAuth(tokens *auth.JWTManager, accounts AccountOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.TokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized")
			utils.Warn("RequireAuth: rejected token", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			return
		}

		if err := accounts.OpenAccount(c.Request.Context(), claims.UserID, claims.Name); err != nil {
			helpers.HandleServiceError(c, "RequireAuth", err, map[string]any{"user_id": claims.UserID})
			return
		}

		c.Set(helpers.ContextUserID, claims.UserID)
		c.Next()
	}
}
