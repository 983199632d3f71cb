package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-registry/internal/domain"
	"user-registry/internal/service"
	"user-registry/internal/validation"
)

const (
	msgCreated       = "User created successfully"
	msgUpdated       = "User details updated successfully"
	msgDeleted       = "User deleted successfully"
	msgNotFound      = "User not found"
	msgEmailRequired = "Email is required in the request body"
	msgExists        = "User already exists"
	msgInvalidJSON   = "Invalid JSON body"
	msgInternal      = "Internal server error"
)

// Handler wires HTTP routes to the user service.
type Handler struct {
	users service.UserService
	log   *logrus.Logger
}

func NewHandler(users service.UserService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users: users,
		log:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.log), corsMiddleware())

	user := router.Group("/user")
	{
		user.POST("/create", h.createUser)
		user.PUT("/edit", h.editUser)
		user.DELETE("/delete", h.deleteUser)
		user.GET("/getAll", h.listUsers)
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// UserResponse is the list projection of a user.
type UserResponse struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request handled")
	}
}

func (h *Handler) createUser(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	if _, err := h.users.Create(c.Request.Context(), fields); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgCreated})
}

func (h *Handler) editUser(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	if err := h.users.Update(c.Request.Context(), fields); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUpdated})
}

func (h *Handler) deleteUser(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), fields); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// bindFields decodes the JSON object body. An empty body counts as an empty object.
func bindFields(c *gin.Context) (validation.Fields, bool) {
	fields := validation.Fields{}
	if err := c.ShouldBindJSON(&fields); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidJSON})
		return nil, false
	}
	if fields == nil {
		fields = validation.Fields{}
	}
	return fields, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		h.log.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"fields": verrs.Fields(),
		}).Debug("validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
	case errors.Is(err, service.ErrEmailRequired):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgEmailRequired})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": msgExists})
	default:
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("storage failure")
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	}
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		FullName: u.FullName,
		Email:    u.Email,
		Password: u.PasswordHash,
	}
}
