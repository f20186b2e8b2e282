package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/exercise-engine/internal/models"
)

type MatchSide string

const (
	MatchSideLeft  MatchSide = "left"
	MatchSideRight MatchSide = "right"
)

func (s MatchSide) IsValid() bool {
	return s == MatchSideLeft || s == MatchSideRight
}

// PendingSelection is the half-built pair waiting for its other side.
type PendingSelection struct {
	Left  *int `json:"left,omitempty"`
	Right *int `json:"right,omitempty"`
}

// MatchCommit is reported when a selection completes a pair.
type MatchCommit struct {
	Pair      models.MatchPair `json:"pair"`
	IsCorrect bool             `json:"is_correct"`
}

// MatchingSession is the learner's pairing state for a matching exercise.
// Each item takes part in at most one committed pair. Committed pairs are
// recorded in the tracker under models.MatchKey(left).
type MatchingSession struct {
	payload *models.MatchingPayload
	tracker *AnswerTracker

	pending PendingSelection
	pairs   []models.MatchPair
}

func NewMatchingSession(payload *models.MatchingPayload, tracker *AnswerTracker) *MatchingSession {
	return &MatchingSession{
		payload: payload,
		tracker: tracker,
	}
}

func (m *MatchingSession) SelectLeft(ctx context.Context, index int) (*MatchCommit, error) {
	return m.Select(ctx, MatchSideLeft, index)
}

func (m *MatchingSession) SelectRight(ctx context.Context, index int) (*MatchCommit, error) {
	return m.Select(ctx, MatchSideRight, index)
}

// Select picks one item. Picking the same side again replaces the pending
// choice; picking the other side commits the pair and submits it.
func (m *MatchingSession) Select(ctx context.Context, side MatchSide, index int) (*MatchCommit, error) {
	switch side {
	case MatchSideLeft:
		if index < 0 || index >= len(m.payload.LeftItems) {
			return nil, fmt.Errorf("%w: left %d", ErrMatchIndexOutOfRange, index)
		}
		if m.leftMatched(index) {
			return nil, fmt.Errorf("%w: left %d", ErrItemAlreadyMatched, index)
		}
		m.pending.Left = lo.ToPtr(index)
	case MatchSideRight:
		if index < 0 || index >= len(m.payload.RightItems) {
			return nil, fmt.Errorf("%w: right %d", ErrMatchIndexOutOfRange, index)
		}
		if m.rightMatched(index) {
			return nil, fmt.Errorf("%w: right %d", ErrItemAlreadyMatched, index)
		}
		m.pending.Right = lo.ToPtr(index)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchSide, side)
	}

	if m.pending.Left == nil || m.pending.Right == nil {
		return nil, nil
	}

	pair := models.MatchPair{Left: *m.pending.Left, Right: *m.pending.Right}
	m.pending = PendingSelection{}
	return m.commit(ctx, pair)
}

// Pair commits left with right in one step, replacing any pair the left
// item already had. The right item must not belong to another pair.
func (m *MatchingSession) Pair(ctx context.Context, left, right int) (*MatchCommit, error) {
	if left < 0 || left >= len(m.payload.LeftItems) {
		return nil, fmt.Errorf("%w: left %d", ErrMatchIndexOutOfRange, left)
	}
	if right < 0 || right >= len(m.payload.RightItems) {
		return nil, fmt.Errorf("%w: right %d", ErrMatchIndexOutOfRange, right)
	}
	if lo.ContainsBy(m.pairs, func(p models.MatchPair) bool { return p.Right == right && p.Left != left }) {
		return nil, fmt.Errorf("%w: right %d", ErrItemAlreadyMatched, right)
	}

	m.pairs = lo.Reject(m.pairs, func(p models.MatchPair, _ int) bool { return p.Left == left })
	m.pending = PendingSelection{}
	return m.commit(ctx, models.MatchPair{Left: left, Right: right})
}

// Submit records a keyed answer for a left item. An answer naming an
// in-range right index is committed through Pair. Any other answer dissolves
// the left item's pair and is recorded with no credit, so the board and the
// tracker never disagree about which items are paired.
func (m *MatchingSession) Submit(ctx context.Context, left int, answer string) (*MatchCommit, error) {
	right, err := strconv.Atoi(strings.TrimSpace(answer))
	if err == nil && m.inRange(left, right) {
		return m.Pair(ctx, left, right)
	}

	m.pairs = lo.Reject(m.pairs, func(p models.MatchPair, _ int) bool { return p.Left == left })
	if m.pending.Left != nil && *m.pending.Left == left {
		m.pending.Left = nil
	}
	if _, err := m.tracker.SubmitAnswer(ctx, models.MatchKey(left), answer); err != nil {
		return nil, err
	}
	return nil, nil
}

func (m *MatchingSession) inRange(left, right int) bool {
	return left >= 0 && left < len(m.payload.LeftItems) &&
		right >= 0 && right < len(m.payload.RightItems)
}

func (m *MatchingSession) commit(ctx context.Context, pair models.MatchPair) (*MatchCommit, error) {
	correct, err := m.tracker.SubmitAnswer(ctx, models.MatchKey(pair.Left), strconv.Itoa(pair.Right))
	if err != nil {
		return nil, err
	}
	m.pairs = append(m.pairs, pair)

	return &MatchCommit{Pair: pair, IsCorrect: correct}, nil
}

// Unmatch dissolves the committed pair of a left item and withdraws any
// recorded answer for it. It reports whether a pair existed.
func (m *MatchingSession) Unmatch(left int) bool {
	// a rejected submission leaves a record without a pair
	m.tracker.RemoveAnswer(models.MatchKey(left))
	if !m.leftMatched(left) {
		return false
	}
	m.pairs = lo.Reject(m.pairs, func(p models.MatchPair, _ int) bool { return p.Left == left })
	return true
}

// Reset drops every pair and the pending selection.
func (m *MatchingSession) Reset() {
	m.pending = PendingSelection{}
	m.pairs = nil
}

func (m *MatchingSession) Pending() PendingSelection {
	return m.pending
}

// Pairs returns the committed pairs in commit order.
func (m *MatchingSession) Pairs() []models.MatchPair {
	return append([]models.MatchPair(nil), m.pairs...)
}

func (m *MatchingSession) UnmatchedLeft() []int {
	return lo.Filter(lo.Range(len(m.payload.LeftItems)), func(i int, _ int) bool {
		return !m.leftMatched(i)
	})
}

func (m *MatchingSession) UnmatchedRight() []int {
	return lo.Filter(lo.Range(len(m.payload.RightItems)), func(j int, _ int) bool {
		return !m.rightMatched(j)
	})
}

func (m *MatchingSession) leftMatched(left int) bool {
	return lo.ContainsBy(m.pairs, func(p models.MatchPair) bool { return p.Left == left })
}

func (m *MatchingSession) rightMatched(right int) bool {
	return lo.ContainsBy(m.pairs, func(p models.MatchPair) bool { return p.Right == right })
}
