package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/MUKKASPANDANA/live-polling-system/internal/models"

	"gorm.io/gorm"
)

// PollService owns the poll lifecycle: it arbitrates creation, computes
// liveness and performs the single active -> closed transition. Every
// mutation of the "current active poll" goes through mu, so two concurrent
// creates can never both succeed. Expiry is detected lazily on read; there
// is no background timer.
type PollService struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

func NewPollService(db *gorm.DB) *PollService {
	return &PollService{db: db, now: time.Now}
}

// CreatePoll opens a new poll. If the current active poll has already run
// out of time it is reaped here first, so a stale poll never blocks a new
// one and no sweep goroutine is needed.
func (s *PollService) CreatePoll(question string, options []string, duration int) (*models.Poll, error) {
	if question == "" {
		return nil, validationError("question is required")
	}
	if len(options) < 2 {
		return nil, validationError("at least two options are required")
	}
	for _, text := range options {
		if text == "" {
			return nil, validationError("option text must not be empty")
		}
	}
	if duration < 1 {
		return nil, validationError("duration must be at least 1 second")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var active models.Poll
	err := s.db.Where("is_active = ?", true).First(&active).Error
	switch {
	case err == nil:
		if s.remaining(&active) > 0 {
			return nil, ErrActivePollExists
		}
		if err := s.markInactive(active.ID); err != nil {
			return nil, storageError(err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, storageError(err)
	}

	poll := models.Poll{
		Question:  question,
		StartTime: s.now(),
		Duration:  duration,
		IsActive:  true,
	}
	for i, text := range options {
		poll.Options = append(poll.Options, models.Option{Text: text, OrderNum: i})
	}
	if err := s.db.Create(&poll).Error; err != nil {
		return nil, storageError(err)
	}

	log.Printf("poll: created poll %d (%d options, %ds)", poll.ID, len(poll.Options), poll.Duration)
	return &poll, nil
}

// GetActivePoll returns the current poll and its remaining seconds, or
// (nil, 0, nil) when none is running. This is the single source of truth
// for expiry: a poll whose time has run out is closed here as a side effect
// of being read, and reported as absent.
func (s *PollService) GetActivePoll() (*models.Poll, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var poll models.Poll
	err := s.db.Where("is_active = ?", true).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, storageError(err)
	}

	remaining := s.remaining(&poll)
	if remaining == 0 {
		if err := s.markInactive(poll.ID); err != nil {
			return nil, 0, storageError(err)
		}
		log.Printf("poll: poll %d expired, closed on read", poll.ID)
		return nil, 0, nil
	}

	return &poll, remaining, nil
}

// ClosePoll ends the active poll early. It is an idempotent no-op when no
// poll is active.
func (s *PollService) ClosePoll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var poll models.Poll
	err := s.db.Where("is_active = ?", true).First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storageError(err)
	}
	if err := s.markInactive(poll.ID); err != nil {
		return storageError(err)
	}

	log.Printf("poll: closed poll %d", poll.ID)
	return nil
}

// CloseIfExpired closes the given poll only if that exact poll is still
// active and out of time. The re-read under mu makes it safe to call
// redundantly from concurrent callers: a poll already reaped and replaced
// leaves the replacement untouched.
func (s *PollService) CloseIfExpired(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var poll models.Poll
	err := s.db.First(&poll, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storageError(err)
	}
	if !poll.IsActive || s.remaining(&poll) > 0 {
		return nil
	}
	if err := s.markInactive(poll.ID); err != nil {
		return storageError(err)
	}

	log.Printf("poll: poll %d expired, closed on vote", poll.ID)
	return nil
}

// GetPoll loads a poll with its options in display order.
func (s *PollService) GetPoll(id uint) (*models.Poll, error) {
	var poll models.Poll
	err := s.db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_num ASC")
	}).First(&poll, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return &poll, nil
}

// ListRecent returns up to limit polls, newest first.
func (s *PollService) ListRecent(limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = 10
	}
	var polls []models.Poll
	err := s.db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_num ASC")
	}).Order("created_at DESC").Limit(limit).Find(&polls).Error
	if err != nil {
		return nil, storageError(err)
	}
	return polls, nil
}

// Remaining reports the poll's remaining whole seconds, never below zero.
func (s *PollService) Remaining(poll *models.Poll) int {
	return s.remaining(poll)
}

func (s *PollService) remaining(poll *models.Poll) int {
	elapsed := int(s.now().Sub(poll.StartTime) / time.Second)
	if remaining := poll.Duration - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

func (s *PollService) markInactive(id uint) error {
	return s.db.Model(&models.Poll{}).Where("id = ?", id).Update("is_active", false).Error
}
