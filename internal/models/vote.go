package models

import "time"

// Vote records one participant's choice for one poll. The composite unique
// index is the sole arbiter of duplicate votes: concurrent submissions for
// the same (poll, participant) pair resolve to exactly one inserted row.
type Vote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PollID        uint      `gorm:"not null;uniqueIndex:idx_vote_unique" json:"poll_id"`
	ParticipantID string    `gorm:"size:64;not null;uniqueIndex:idx_vote_unique" json:"participant_id"`
	OptionID      uint      `gorm:"not null;index" json:"option_id"`
	CreatedAt     time.Time `json:"created_at"`
}
