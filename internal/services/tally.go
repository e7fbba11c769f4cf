package services

import (
	"math"

	"github.com/MUKKASPANDANA/live-polling-system/internal/models"

	"gorm.io/gorm"
)

// OptionTally is one row of a poll's derived results, in option display order.
type OptionTally struct {
	OptionID   uint   `json:"option_id"`
	Text       string `json:"text"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// TallyService derives per-option counts and percentages from recorded
// votes. It is a pure read-side projection: nothing is cached between
// calls, and a tally computed while votes are still arriving reflects
// whatever snapshot was visible at read time.
type TallyService struct {
	db    *gorm.DB
	polls *PollService
}

func NewTallyService(db *gorm.DB, polls *PollService) *TallyService {
	return &TallyService{db: db, polls: polls}
}

func (s *TallyService) ComputeTally(pollID uint) ([]OptionTally, error) {
	poll, err := s.polls.GetPoll(pollID)
	if err != nil {
		return nil, err
	}

	var votes []models.Vote
	if err := s.db.Where("poll_id = ?", pollID).Find(&votes).Error; err != nil {
		return nil, storageError(err)
	}

	counts := make(map[uint]int, len(poll.Options))
	for _, v := range votes {
		counts[v.OptionID]++
	}

	total := len(votes)
	tally := make([]OptionTally, len(poll.Options))
	for i, opt := range poll.Options {
		count := counts[opt.ID]
		pct := 0
		if total > 0 {
			// Rounded independently per option; the column may not sum to 100.
			pct = int(math.Round(float64(count) / float64(total) * 100))
		}
		tally[i] = OptionTally{OptionID: opt.ID, Text: opt.Text, Count: count, Percentage: pct}
	}
	return tally, nil
}
