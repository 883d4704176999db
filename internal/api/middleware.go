package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"weeklygrind/plan-tracker/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey    = "userID"
	ContextRequestIDKey = "requestID"
	RequestIDHeader     = "X-Request-ID"
)

// jwtClaims mirrors the payload written by authService.generateJWT.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseBearer(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid token is present and lets
// anonymous requests through. A bad token is still rejected.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		userID, err := parseBearer(header, jwtSecret)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func parseBearer(authHeader, jwtSecret string) (primitive.ObjectID, error) {
	if authHeader == "" {
		return primitive.NilObjectID, errors.New("Authorization header is missing")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return primitive.NilObjectID, errors.New("Authorization header format must be Bearer {token}")
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, errors.New("Token has expired")
		}
		return primitive.NilObjectID, errors.New("Invalid token")
	}
	if !token.Valid || claims.UserID == "" {
		return primitive.NilObjectID, errors.New("Invalid token or missing claims")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, errors.New("Invalid token subject")
	}
	return userID, nil
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// getUserIDFromContext must only be used behind AuthMiddleware.
func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	id, ok := idRaw.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return id, nil
}

// RequestLogger tags every request with an id and logs it once it is done.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

// PanicRecovery turns a handler panic into a 500 and counts it.
func PanicRecovery(metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				metricsManager.CounterHandleRequestPanic.Inc()
				log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, err, debug.Stack())
				abortWithError(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}

// RequestMetrics records request counts and durations by route template,
// so ids in the path do not explode the label space.
func RequestMetrics(metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsManager.CounterRequests.WithLabelValues(
			c.Request.Method, route, fmt.Sprintf("%d", c.Writer.Status()),
		).Inc()
		metricsManager.HistRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
