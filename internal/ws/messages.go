package ws

import "encoding/json"

// Message types pushed by the server.
const (
	TypePollOpened   = "poll_opened"
	TypeTallyUpdated = "tally_updated"
	TypeStateSync    = "state_sync"
	TypePollClosed   = "poll_closed"
	TypeReply        = "reply"
)

// Command types accepted from clients. Every command receives exactly one
// reply carrying the command's ref.
const (
	CmdCreatePoll   = "create_poll"
	CmdSubmitVote   = "submit_vote"
	CmdJoin         = "join"
	CmdRequestState = "request_state"
	CmdClosePoll    = "close_poll"
)

// WSMessage is the wire envelope for everything the server sends: events
// (poll_opened, tally_updated, state_sync, poll_closed) and command replies.
// A reply echoes the command's Ref and carries either Data or Error.
type WSMessage struct {
	Type  string        `json:"type"`
	Ref   string        `json:"ref,omitempty"`
	Data  interface{}   `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClientCommand is one inbound request. Data is decoded per command type.
type ClientCommand struct {
	Ref  string          `json:"ref,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CreatePollPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Duration int      `json:"duration"`
}

type SubmitVotePayload struct {
	PollID        uint   `json:"poll_id"`
	ParticipantID string `json:"participant_id"`
	OptionID      uint   `json:"option_id"`
}

type JoinPayload struct {
	ParticipantID string `json:"participant_id"`
}
