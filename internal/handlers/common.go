package handlers

import (
	"errors"
	"net/http"

	"github.com/MUKKASPANDANA/live-polling-system/internal/models"
	"github.com/MUKKASPANDANA/live-polling-system/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Poll = models.Poll
type Vote = models.Vote
type OptionTally = services.OptionTally

// respondError maps an engine error onto an HTTP status by its kind.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusForKind(svcErr.Kind), ErrorResponse{Error: svcErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// pollPayload is the shape broadcast as poll_opened and returned from the
// active-poll endpoints.
func pollPayload(poll *models.Poll, remaining int) gin.H {
	return gin.H{
		"id":         poll.ID,
		"question":   poll.Question,
		"options":    poll.Options,
		"start_time": poll.StartTime,
		"duration":   poll.Duration,
		"remaining":  remaining,
	}
}
