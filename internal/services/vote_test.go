package services

import (
	"sync"
	"testing"
	"time"

	"github.com/MUKKASPANDANA/live-polling-system/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoteService(t *testing.T) (*VoteService, *PollService, *fakeClock) {
	t.Helper()
	polls, clock, db := newTestPollService(t)
	return NewVoteService(db, polls), polls, clock
}

func TestSubmitVote(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	vote, err := votes.SubmitVote(poll.ID, "alice", poll.Options[0].ID)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, vote.PollID)
	assert.Equal(t, "alice", vote.ParticipantID)
	assert.Equal(t, poll.Options[0].ID, vote.OptionID)

	voted, err := votes.HasVoted(poll.ID, "alice")
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = votes.HasVoted(poll.ID, "bob")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestSubmitVoteDuplicate(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	_, err = votes.SubmitVote(poll.ID, "alice", poll.Options[0].ID)
	require.NoError(t, err)

	// A second vote fails regardless of the chosen option.
	_, err = votes.SubmitVote(poll.ID, "alice", poll.Options[1].ID)
	require.ErrorIs(t, err, ErrDuplicateVote)

	recorded, err := votes.FindByPoll(poll.ID)
	require.NoError(t, err)
	assert.Len(t, recorded, 1)
}

func TestSubmitVoteUnknownPoll(t *testing.T) {
	votes, _, _ := newTestVoteService(t)

	_, err := votes.SubmitVote(999, "alice", 1)
	require.ErrorIs(t, err, ErrPollNotFound)
}

func TestSubmitVoteUnknownOption(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	_, err = votes.SubmitVote(poll.ID, "alice", poll.Options[1].ID+100)
	require.ErrorIs(t, err, ErrUnknownOption)

	recorded, err := votes.FindByPoll(poll.ID)
	require.NoError(t, err)
	assert.Empty(t, recorded)
}

func TestSubmitVoteClosedPoll(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)
	require.NoError(t, polls.ClosePoll())

	_, err = votes.SubmitVote(poll.ID, "alice", poll.Options[0].ID)
	require.ErrorIs(t, err, ErrPollNotActive)
}

func TestSubmitVoteExpiredPollClosesIt(t *testing.T) {
	votes, polls, clock := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 5)
	require.NoError(t, err)

	clock.Advance(6 * time.Second)

	_, err = votes.SubmitVote(poll.ID, "alice", poll.Options[0].ID)
	require.ErrorIs(t, err, ErrPollExpired)

	// The failed vote reaped the poll as a side effect.
	stored, err := polls.GetPoll(poll.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestSubmitVoteExpiredSparesReplacementPoll(t *testing.T) {
	votes, polls, clock := newTestVoteService(t)

	pollA, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 5)
	require.NoError(t, err)

	clock.Advance(6 * time.Second)

	// Interleave a racing create between the vote path's expiry read and
	// its lazy close: the create reaps expired poll A and opens poll B. The
	// stale vote must then leave poll B alone.
	var pollB *models.Poll
	fired := false
	polls.now = func() time.Time {
		now := clock.Now()
		if !fired {
			fired = true
			var createErr error
			pollB, createErr = polls.CreatePoll("Pick a number", []string{"1", "2"}, 10)
			require.NoError(t, createErr)
		}
		return now
	}

	_, err = votes.SubmitVote(pollA.ID, "alice", pollA.Options[0].ID)
	require.ErrorIs(t, err, ErrPollExpired)
	require.NotNil(t, pollB)

	stored, err := polls.GetPoll(pollB.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	active, remaining, err := polls.GetActivePoll()
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, pollB.ID, active.ID)
	assert.Equal(t, 10, remaining)
}

func TestSubmitVoteEmptyParticipant(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	_, err = votes.SubmitVote(poll.ID, "", poll.Options[0].ID)
	require.Error(t, err)
	svcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = votes.SubmitVote(poll.ID, "alice", poll.Options[idx%2].ID)
		}(i)
	}
	wg.Wait()

	successes, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case err == ErrDuplicateVote:
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)

	var count int64
	require.NoError(t, polls.db.Model(&models.Vote{}).Where("poll_id = ?", poll.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConcurrentDistinctVoters(t *testing.T) {
	votes, polls, _ := newTestVoteService(t)

	poll, err := polls.CreatePoll("Pick a color", []string{"Red", "Blue"}, 60)
	require.NoError(t, err)

	participants := []string{"alice", "bob", "carol", "dave", "erin"}
	var wg sync.WaitGroup
	errs := make([]error, len(participants))

	for i, p := range participants {
		wg.Add(1)
		go func(idx int, participant string) {
			defer wg.Done()
			_, errs[idx] = votes.SubmitVote(poll.ID, participant, poll.Options[idx%2].ID)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	recorded, err := votes.FindByPoll(poll.ID)
	require.NoError(t, err)
	assert.Len(t, recorded, len(participants))
}
