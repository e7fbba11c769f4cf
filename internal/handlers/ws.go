package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/MUKKASPANDANA/live-polling-system/internal/services"
	"github.com/MUKKASPANDANA/live-polling-system/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler owns the websocket command surface. Each inbound command is a
// request/response exchange: the client names a command plus payload and
// gets exactly one reply, success or failure. Successful writes broadcast
// the resulting state to every connected session before the caller's
// success reply; failures reply to the caller only.
type WSHandler struct {
	hub   *ws.Hub
	auth  *services.AuthService
	polls *services.PollService
	votes *services.VoteService
	tally *services.TallyService
}

func NewWSHandler(hub *ws.Hub, auth *services.AuthService, polls *services.PollService, votes *services.VoteService, tally *services.TallyService) *WSHandler {
	return &WSHandler{hub: hub, auth: auth, polls: polls, votes: votes, tally: tally}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket godoc
// @Summary      WebSocket connection for live poll state
// @Description  Connect via WebSocket to issue poll commands and receive real-time updates
// @Tags         websocket
// @Param        token query string false "Author JWT; connections without one are participants"
// @Router       /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	role := ws.RoleParticipant
	if token := c.Query("token"); token != "" {
		if _, err := h.auth.ValidateToken(token); err == nil {
			role = ws.RoleAuthor
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	sess := h.hub.AddConnection(conn, role)
	defer h.hub.RemoveConnection(conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var cmd ws.ClientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			h.replyError(conn, "", "invalid_input", "malformed command")
			continue
		}
		h.dispatch(conn, sess, cmd)
	}
}

func (h *WSHandler) dispatch(conn *websocket.Conn, sess *ws.Session, cmd ws.ClientCommand) {
	switch cmd.Type {
	case ws.CmdCreatePoll:
		h.handleCreatePoll(conn, sess, cmd)
	case ws.CmdSubmitVote:
		h.handleSubmitVote(conn, sess, cmd)
	case ws.CmdJoin:
		h.handleJoin(conn, cmd)
	case ws.CmdRequestState:
		h.handleRequestState(conn, cmd)
	case ws.CmdClosePoll:
		h.handleClosePoll(conn, sess, cmd)
	default:
		h.replyError(conn, cmd.Ref, "unknown_command", "unknown command: "+cmd.Type)
	}
}

func (h *WSHandler) handleCreatePoll(conn *websocket.Conn, sess *ws.Session, cmd ws.ClientCommand) {
	if sess.Role != ws.RoleAuthor {
		h.replyError(conn, cmd.Ref, "forbidden", "author role required")
		return
	}

	var payload ws.CreatePollPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		h.replyError(conn, cmd.Ref, "invalid_input", "malformed payload")
		return
	}

	poll, err := h.polls.CreatePoll(payload.Question, payload.Options, payload.Duration)
	if err != nil {
		h.replyServiceError(conn, cmd.Ref, err)
		return
	}

	// Everyone learns about the new poll before the author gets the ack.
	h.hub.Broadcast(ws.WSMessage{Type: ws.TypePollOpened, Data: pollPayload(poll, poll.Duration)})
	h.reply(conn, cmd.Ref, pollPayload(poll, poll.Duration))
}

func (h *WSHandler) handleSubmitVote(conn *websocket.Conn, sess *ws.Session, cmd ws.ClientCommand) {
	var payload ws.SubmitVotePayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		h.replyError(conn, cmd.Ref, "invalid_input", "malformed payload")
		return
	}
	if payload.ParticipantID == "" {
		payload.ParticipantID = sess.ParticipantID
	}

	vote, err := h.votes.SubmitVote(payload.PollID, payload.ParticipantID, payload.OptionID)
	if err != nil {
		h.replyServiceError(conn, cmd.Ref, err)
		return
	}

	// The tally is a separate re-runnable read; a failure here never undoes
	// the recorded vote, it only skips this round of fanout.
	if tally, err := h.tally.ComputeTally(payload.PollID); err == nil {
		h.hub.Broadcast(ws.WSMessage{
			Type: ws.TypeTallyUpdated,
			Data: gin.H{"poll_id": payload.PollID, "tally": tally},
		})
	} else {
		log.Printf("ws: tally after vote failed: %v", err)
	}

	h.reply(conn, cmd.Ref, gin.H{"vote": vote})
}

func (h *WSHandler) handleJoin(conn *websocket.Conn, cmd ws.ClientCommand) {
	var payload ws.JoinPayload
	if len(cmd.Data) > 0 {
		if err := json.Unmarshal(cmd.Data, &payload); err != nil {
			h.replyError(conn, cmd.Ref, "invalid_input", "malformed payload")
			return
		}
	}
	if payload.ParticipantID == "" {
		payload.ParticipantID = uuid.NewString()
	}

	h.hub.BindParticipant(conn, payload.ParticipantID)

	poll, remaining, err := h.polls.GetActivePoll()
	if err == nil && poll != nil {
		if tally, terr := h.tally.ComputeTally(poll.ID); terr == nil {
			h.hub.Unicast(conn, ws.WSMessage{
				Type: ws.TypeStateSync,
				Data: gin.H{"poll": pollPayload(poll, remaining), "tally": tally},
			})
		}
	}

	h.reply(conn, cmd.Ref, gin.H{"participant_id": payload.ParticipantID})
}

func (h *WSHandler) handleRequestState(conn *websocket.Conn, cmd ws.ClientCommand) {
	poll, remaining, err := h.polls.GetActivePoll()
	if err != nil {
		h.replyServiceError(conn, cmd.Ref, err)
		return
	}
	if poll == nil {
		h.reply(conn, cmd.Ref, gin.H{"poll": nil})
		return
	}

	tally, err := h.tally.ComputeTally(poll.ID)
	if err != nil {
		h.replyServiceError(conn, cmd.Ref, err)
		return
	}

	h.reply(conn, cmd.Ref, gin.H{"poll": pollPayload(poll, remaining), "tally": tally})
}

func (h *WSHandler) handleClosePoll(conn *websocket.Conn, sess *ws.Session, cmd ws.ClientCommand) {
	if sess.Role != ws.RoleAuthor {
		h.replyError(conn, cmd.Ref, "forbidden", "author role required")
		return
	}

	if err := h.polls.ClosePoll(); err != nil {
		h.replyServiceError(conn, cmd.Ref, err)
		return
	}

	h.hub.Broadcast(ws.WSMessage{Type: ws.TypePollClosed})
	h.reply(conn, cmd.Ref, nil)
}

func (h *WSHandler) reply(conn *websocket.Conn, ref string, data interface{}) {
	h.hub.Unicast(conn, ws.WSMessage{Type: ws.TypeReply, Ref: ref, Data: data})
}

func (h *WSHandler) replyError(conn *websocket.Conn, ref, code, message string) {
	h.hub.Unicast(conn, ws.WSMessage{
		Type:  ws.TypeReply,
		Ref:   ref,
		Error: &ws.ErrorPayload{Code: code, Message: message},
	})
}

func (h *WSHandler) replyServiceError(conn *websocket.Conn, ref string, err error) {
	if svcErr, ok := err.(*services.Error); ok {
		h.replyError(conn, ref, svcErr.Code, svcErr.Message)
		return
	}
	h.replyError(conn, ref, "internal_error", err.Error())
}
