package domain

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func hourly(bid, daily, total int64, d time.Duration) Campaign {
	return Campaign{
		ID:          "c1",
		SellerID:    "s",
		Content:     ContentRef{Type: ContentTypePost, ID: "p"},
		Multiplier:  2,
		Pricing:     HourlyPricing{BidPerHour: bid, DailyBudget: daily},
		TotalBudget: total,
		StartAt:     t0,
		EndAt:       t0.Add(d),
		Status:      StatusActive,
	}
}

func TestTimeBoundCompletesBeforeBudget(t *testing.T) {
	c := hourly(500, 0, 2000, 3*time.Hour)

	next, changed := c.Advance(t0.Add(3 * time.Hour))
	assert.True(t, changed)
	assert.Equal(t, StatusCompleted, next.Status)
	assert.Equal(t, int64(1500), next.SpentAmount)
	assert.Equal(t, t0.Add(3*time.Hour), next.EndedAt)

	later, changed := next.Advance(t0.Add(10 * time.Hour))
	assert.False(t, changed)
	assert.Equal(t, next, later)
}

func TestBudgetBoundCompletesBeforeTime(t *testing.T) {
	c := hourly(500, 0, 2000, 10*time.Hour)

	next, _ := c.Advance(t0.Add(3*time.Hour + 59*time.Minute))
	assert.Equal(t, StatusActive, next.Status)

	next, _ = c.Advance(t0.Add(4 * time.Hour))
	assert.Equal(t, StatusCompleted, next.Status)
	assert.Equal(t, int64(2000), next.SpentAmount)
}

func TestAccrualIsIdempotent(t *testing.T) {
	c := hourly(733, 5000, 100000, 72*time.Hour)
	c.Pauses = []PauseInterval{{From: t0.Add(time.Hour), To: t0.Add(90 * time.Minute)}}
	now := t0.Add(17*time.Hour + 13*time.Second)

	first := c.AccruedSpend(now)
	second := c.AccruedSpend(now)
	assert.Equal(t, first, second)

	a, _ := c.Advance(now)
	b, _ := a.Advance(now)
	assert.Equal(t, a.SpentAmount, b.SpentAmount)
}

func TestDailyBudgetClamp(t *testing.T) {
	c := hourly(1000, 5000, 100000, 72*time.Hour)

	assert.Equal(t, int64(5000), c.AccruedSpend(t0.Add(10*time.Hour)), "day one capped at daily budget")
	assert.Equal(t, int64(10000), c.AccruedSpend(t0.Add(30*time.Hour)), "two days started")
}

func TestPausedTimeIsNotBanked(t *testing.T) {
	c := hourly(600, 0, 100000, 10*time.Hour)

	paused, err := c.Pause(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, paused.Status)
	assert.Equal(t, int64(600), paused.SpentAmount)
	assert.Empty(t, c.Pauses, "receiver is not mutated")

	still, _ := paused.Advance(t0.Add(3 * time.Hour))
	assert.Equal(t, int64(600), still.SpentAmount)

	resumed, err := paused.Resume(t0.Add(3 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, resumed.Status)
	assert.Equal(t, t0.Add(10*time.Hour), resumed.EndAt, "end is not extended")

	assert.Equal(t, int64(1200), resumed.AccruedSpend(t0.Add(4*time.Hour)))

	done, _ := resumed.Advance(t0.Add(10 * time.Hour))
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, int64(600*8), done.SpentAmount)
}

func TestResumeAfterEndCompletes(t *testing.T) {
	c := hourly(100, 0, 100000, 2*time.Hour)
	paused, err := c.Pause(t0.Add(time.Hour))
	require.NoError(t, err)

	resumed, err := paused.Resume(t0.Add(5 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resumed.Status)
	assert.Equal(t, int64(100), resumed.SpentAmount)
}

func TestResumeWithExhaustedBudget(t *testing.T) {
	c := hourly(100, 0, 500, 10*time.Hour)
	c.Status = StatusPaused
	c.SpentAmount = 500
	c.Pauses = []PauseInterval{{From: t0.Add(5 * time.Hour)}}

	_, err := c.Resume(t0.Add(6 * time.Hour))
	assert.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestCancelFreezesSpend(t *testing.T) {
	c := hourly(100, 0, 100000, 10*time.Hour)
	cancelled, err := c.Cancel(t0.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(200), cancelled.SpentAmount)
	assert.Equal(t, int64(200), cancelled.AccruedSpend(t0.Add(9*time.Hour)))

	paused, err := c.Pause(t0.Add(time.Hour))
	require.NoError(t, err)
	cancelled, err = paused.Cancel(t0.Add(4 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(100), cancelled.SpentAmount)
	assert.Equal(t, t0.Add(4*time.Hour), cancelled.Pauses[0].To)
}

func TestInvalidTransitions(t *testing.T) {
	c := hourly(100, 0, 100000, time.Hour)
	done, _ := c.Advance(t0.Add(2 * time.Hour))
	require.Equal(t, StatusCompleted, done.Status)

	_, err := done.Resume(t0.Add(3 * time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = done.Pause(t0.Add(3 * time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = done.Cancel(t0.Add(3 * time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = c.Resume(t0.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidTransition, "active campaign cannot resume")

	// Pausing an expired campaign completes it first.
	_, err = c.Pause(t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStateMachineEdges(t *testing.T) {
	assert.True(t, CanTransition(StatusActive, StatusPaused))
	assert.True(t, CanTransition(StatusActive, StatusCompleted))
	assert.True(t, CanTransition(StatusActive, StatusCancelled))
	assert.True(t, CanTransition(StatusPaused, StatusActive))
	assert.True(t, CanTransition(StatusPaused, StatusCancelled))
	assert.False(t, CanTransition(StatusPaused, StatusCompleted))
	for _, to := range []Status{StatusActive, StatusPaused, StatusCompleted, StatusCancelled} {
		assert.False(t, CanTransition(StatusCompleted, to))
		assert.False(t, CanTransition(StatusCancelled, to))
	}
}

func TestFlatFeeAccruesProRata(t *testing.T) {
	c := Campaign{
		ID:          "promo",
		Pricing:     FlatFeePricing{Fee: 999},
		TotalBudget: 999,
		StartAt:     t0,
		EndAt:       t0.Add(72 * time.Hour),
		Status:      StatusActive,
	}
	assert.Equal(t, int64(0), c.AccruedSpend(t0.Add(-time.Hour)), "nothing before start")
	assert.Equal(t, int64(333), c.AccruedSpend(t0.Add(24*time.Hour)))

	done, _ := c.Advance(t0.Add(72 * time.Hour))
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, int64(999), done.SpentAmount)
	assert.Equal(t, int64(0), done.DailyBudget())
}

func TestBudgetInvariantHolds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		c := hourly(r.Int63n(5000)+1, r.Int63n(20000), r.Int63n(50000)+1, time.Duration(r.Intn(96)+1)*time.Hour)
		now := t0
		for step := 0; step < 10; step++ {
			now = now.Add(time.Duration(r.Intn(600)) * time.Minute)
			switch r.Intn(4) {
			case 0:
				if next, err := c.Pause(now); err == nil {
					c = next
				}
			case 1:
				if next, err := c.Resume(now); err == nil {
					c = next
				}
			default:
				c, _ = c.Advance(now)
			}
			require.NoError(t, c.CheckInvariants())
			require.GreaterOrEqual(t, c.SpentAmount, int64(0))
			require.LessOrEqual(t, c.SpentAmount, c.TotalBudget)
		}
	}
}

func TestCheckInvariants(t *testing.T) {
	c := hourly(100, 0, 1000, time.Hour)
	require.NoError(t, c.CheckInvariants())

	c.SpentAmount = 1001
	assert.ErrorIs(t, c.CheckInvariants(), ErrInvariantViolation)

	c.SpentAmount = 0
	c.Pricing = nil
	assert.ErrorIs(t, c.CheckInvariants(), ErrInvariantViolation)
}

func TestAccrualDoesNotOverflowOnLargeBids(t *testing.T) {
	const bid = int64(5_000_000_000_000)
	c := hourly(bid, 0, bid*720, 720*time.Hour)

	assert.Equal(t, bid*10, c.AccruedSpend(t0.Add(10*time.Hour)))
	assert.Equal(t, bid/2, c.AccruedSpend(t0.Add(30*time.Minute)))
	assert.Equal(t, bid*720, c.AccruedSpend(t0.Add(720*time.Hour)))

	daily := hourly(bid, bid*5, bid*720, 720*time.Hour)
	assert.Equal(t, bid*5, daily.AccruedSpend(t0.Add(10*time.Hour)))
	assert.Equal(t, bid*10, daily.AccruedSpend(t0.Add(34*time.Hour)))
}

func TestMulCents(t *testing.T) {
	v, ok := MulCents(999, 720)
	assert.True(t, ok)
	assert.Equal(t, int64(719280), v)

	_, ok = MulCents(math.MaxInt64/2, 3)
	assert.False(t, ok)
	_, ok = MulCents(-1, 3)
	assert.False(t, ok)
}
