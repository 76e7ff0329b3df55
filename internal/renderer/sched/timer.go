package sched

import "time"

// timerState tracks a countdown's lifecycle.
type timerState uint8

const (
	timerDisarmed timerState = iota
	timerArmed
	timerFiring
)

// countdown is a one-shot countdown timer owned by the scheduler
// goroutine. Arm and Cancel are not safe for concurrent use; only
// the event loop touches them.
//
// Cancel fully drains a pending fire so a stale expiry can never be
// mistaken for a fresh one after re-arming.
type countdown struct {
	timer *time.Timer
	state timerState
}

// newCountdown creates a disarmed countdown.
func newCountdown() *countdown {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return &countdown{timer: t}
}

// C returns the expiry channel for the event loop select.
func (c *countdown) C() <-chan time.Time {
	return c.timer.C
}

// Arm starts the countdown, replacing any pending expiry.
func (c *countdown) Arm(d time.Duration) {
	c.Cancel()
	c.timer.Reset(d)
	c.state = timerArmed
}

// Cancel stops the countdown and drains any already-delivered expiry.
func (c *countdown) Cancel() {
	if !c.timer.Stop() {
		select {
		case <-c.timer.C:
		default:
		}
	}
	c.state = timerDisarmed
}

// Fired marks the expiry consumed; callers then either Arm again or
// leave the countdown disarmed.
func (c *countdown) Fired() {
	c.state = timerFiring
}

// Armed returns true while a fire is pending.
func (c *countdown) Armed() bool {
	return c.state == timerArmed
}
