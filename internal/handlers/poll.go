package handlers

import (
	"net/http"
	"strconv"

	"github.com/MUKKASPANDANA/live-polling-system/internal/services"
	"github.com/MUKKASPANDANA/live-polling-system/internal/ws"

	"github.com/gin-gonic/gin"
)

// PollHandler is the plain request/response surface over the same engines
// the websocket commands use. Validation and error semantics are identical;
// writes that go through here still fan out to connected sessions.
type PollHandler struct {
	polls *services.PollService
	votes *services.VoteService
	tally *services.TallyService
	hub   *ws.Hub
}

func NewPollHandler(polls *services.PollService, votes *services.VoteService, tally *services.TallyService, hub *ws.Hub) *PollHandler {
	return &PollHandler{polls: polls, votes: votes, tally: tally, hub: hub}
}

type CreatePollRequest struct {
	Question string   `json:"question" binding:"required" example:"Pick a color"`
	Options  []string `json:"options" binding:"required" example:"Red,Blue"`
	Duration int      `json:"duration" binding:"required" example:"60"`
}

// CreatePoll godoc
// @Summary      Create a new poll
// @Description  Open a new poll; fails while another poll is still active
// @Tags         polls
// @Accept       json
// @Produce      json
// @Param        request body CreatePollRequest true "Poll data"
// @Success      201 {object} Poll
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/polls [post]
func (h *PollHandler) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	poll, err := h.polls.CreatePoll(req.Question, req.Options, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(ws.WSMessage{Type: ws.TypePollOpened, Data: pollPayload(poll, poll.Duration)})

	c.JSON(http.StatusCreated, pollPayload(poll, poll.Duration))
}

// GetActivePoll godoc
// @Summary      Get the active poll
// @Description  Returns the currently running poll with remaining seconds, or a null poll
// @Tags         polls
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/polls/active [get]
func (h *PollHandler) GetActivePoll(c *gin.Context) {
	poll, remaining, err := h.polls.GetActivePoll()
	if err != nil {
		respondError(c, err)
		return
	}
	if poll == nil {
		c.JSON(http.StatusOK, gin.H{"poll": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": pollPayload(poll, remaining)})
}

// GetTally godoc
// @Summary      Get poll results
// @Description  Per-option vote counts and percentages, in option order
// @Tags         polls
// @Produce      json
// @Param        id path int true "Poll ID"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id}/tally [get]
func (h *PollHandler) GetTally(c *gin.Context) {
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	tally, err := h.tally.ComputeTally(uint(pollID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll_id": pollID, "tally": tally})
}

// GetHistory godoc
// @Summary      List recent polls
// @Tags         polls
// @Produce      json
// @Param        limit query int false "Maximum number of polls" default(10)
// @Success      200 {array} Poll
// @Router       /api/v1/polls/history [get]
func (h *PollHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	polls, err := h.polls.ListRecent(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, polls)
}

// HasVoted godoc
// @Summary      Check whether a participant has voted
// @Tags         polls
// @Produce      json
// @Param        id path int true "Poll ID"
// @Param        participantId path string true "Participant ID"
// @Success      200 {object} map[string]bool
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id}/participants/{participantId}/voted [get]
func (h *PollHandler) HasVoted(c *gin.Context) {
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	if _, err := h.polls.GetPoll(uint(pollID)); err != nil {
		respondError(c, err)
		return
	}

	voted, err := h.votes.HasVoted(uint(pollID), c.Param("participantId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"has_voted": voted})
}

// ClosePoll godoc
// @Summary      Close the active poll
// @Description  Ends the active poll early; no-op when none is running
// @Tags         polls
// @Produce      json
// @Success      200 {object} MessageResponse
// @Security     BearerAuth
// @Router       /api/v1/polls/close [post]
func (h *PollHandler) ClosePoll(c *gin.Context) {
	if err := h.polls.ClosePoll(); err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(ws.WSMessage{Type: ws.TypePollClosed})

	c.JSON(http.StatusOK, MessageResponse{Message: "poll closed"})
}
