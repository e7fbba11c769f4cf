package services

import (
	"errors"
	"log"
	"strings"

	"github.com/MUKKASPANDANA/live-polling-system/internal/models"

	"gorm.io/gorm"
)

// VoteService validates and records a single participant's vote against the
// currently active poll. Duplicates are rejected by the vote table's unique
// (poll_id, participant_id) index rather than a prior existence check; a
// read-then-write check would race under concurrent submissions.
type VoteService struct {
	db    *gorm.DB
	polls *PollService
}

func NewVoteService(db *gorm.DB, polls *PollService) *VoteService {
	return &VoteService{db: db, polls: polls}
}

// SubmitVote records one vote. Checks run in order: poll exists, poll still
// active, poll not expired (an expired poll is closed here, same lazy reap
// as the lifecycle reads), option belongs to the poll, then the insert.
func (s *VoteService) SubmitVote(pollID uint, participantID string, optionID uint) (*models.Vote, error) {
	if participantID == "" {
		return nil, validationError("participant id is required")
	}

	poll, err := s.polls.GetPoll(pollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsActive {
		return nil, ErrPollNotActive
	}
	if s.polls.Remaining(poll) == 0 {
		// Close by identity: a blanket ClosePoll here could take down a
		// replacement poll created after this poll was reaped.
		if err := s.polls.CloseIfExpired(poll.ID); err != nil {
			return nil, err
		}
		return nil, ErrPollExpired
	}
	if !poll.HasOption(optionID) {
		return nil, ErrUnknownOption
	}

	vote := models.Vote{PollID: pollID, ParticipantID: participantID, OptionID: optionID}
	if err := s.db.Create(&vote).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateVote
		}
		return nil, storageError(err)
	}

	log.Printf("vote: recorded vote on poll %d by %s", pollID, participantID)
	return &vote, nil
}

// HasVoted reports whether the participant already has a vote for the poll.
func (s *VoteService) HasVoted(pollID uint, participantID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("poll_id = ? AND participant_id = ?", pollID, participantID).
		Count(&count).Error
	if err != nil {
		return false, storageError(err)
	}
	return count > 0, nil
}

// FindByPoll returns every vote recorded for the poll.
func (s *VoteService) FindByPoll(pollID uint) ([]models.Vote, error) {
	var votes []models.Vote
	if err := s.db.Where("poll_id = ?", pollID).Find(&votes).Error; err != nil {
		return nil, storageError(err)
	}
	return votes, nil
}

// isDuplicateKey matches the unique-constraint signals of the drivers in
// use: gorm's translated error when available, otherwise the raw postgres
// or sqlite message.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint")
}
