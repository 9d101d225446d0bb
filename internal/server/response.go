package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/quiz"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/store"
)

// Response is the envelope of every API reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// fail maps domain errors onto HTTP statuses. Gateway validation failures are
// 422 with the message clients classify on.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrResumeRequired), errors.Is(err, store.ErrRoleNotVerified):
		abort(c, http.StatusUnprocessableEntity, store.Message(err))
	case errors.Is(err, store.ErrInvalid):
		badRequest(c, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, quiz.ErrUnknownRole):
		abort(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, resume.ErrUnsupportedType), errors.Is(err, resume.ErrTooLarge), errors.Is(err, resume.ErrEmpty):
		badRequest(c, resume.Message(err))
	default:
		s.logger.Error("internal server error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
