package physics

import "github.com/milk9111/collide2d/common"

// Clock turns variable frame times into a whole number of fixed steps. Time
// beyond MaxSteps steps in one frame is dropped so a slow frame cannot
// snowball.
type Clock struct {
	Step     float64
	MaxSteps int

	acc     float64
	dropped float64
}

func NewClock(step float64, maxSteps int) *Clock {
	if step <= 0 {
		step = common.FixedStep
	}
	if maxSteps <= 0 {
		maxSteps = common.MaxCatchUpSteps
	}
	return &Clock{Step: step, MaxSteps: maxSteps}
}

// Advance adds frame seconds and returns how many steps to run now.
func (c *Clock) Advance(frame float64) int {
	if c == nil || frame <= 0 {
		return 0
	}
	c.acc += frame
	n := int(c.acc / c.Step)
	if n > c.MaxSteps {
		c.dropped += c.acc - float64(c.MaxSteps)*c.Step
		n = c.MaxSteps
		c.acc = 0
		return n
	}
	c.acc -= float64(n) * c.Step
	return n
}

// Alpha is the fraction of a step left in the accumulator, for interpolating
// drawn positions.
func (c *Clock) Alpha() float64 {
	if c == nil || c.Step <= 0 {
		return 0
	}
	return common.Clamp(c.acc/c.Step, 0, 1)
}

// Dropped returns the total seconds discarded by the catch-up cap.
func (c *Clock) Dropped() float64 {
	if c == nil {
		return 0
	}
	return c.dropped
}

func (c *Clock) Reset() {
	if c == nil {
		return
	}
	c.acc = 0
	c.dropped = 0
}
