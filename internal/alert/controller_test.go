package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArmShowsWarning(t *testing.T) {
	c := New(time.Hour)
	assert.False(t, c.Visible(), "starts hidden")

	c.Arm()
	assert.True(t, c.Visible())
}

func TestAutoDismiss(t *testing.T) {
	c := New(30 * time.Millisecond)
	c.Arm()

	assert.True(t, c.Visible())
	assert.Eventually(t, func() bool { return !c.Visible() },
		time.Second, 5*time.Millisecond, "warning must auto-dismiss")
}

func TestManualDismissCancelsTimer(t *testing.T) {
	c := New(30 * time.Millisecond)
	c.Arm()
	c.Dismiss()

	assert.False(t, c.Visible())

	// The cancelled timer must not flip anything later.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, c.Visible())
}

func TestDismissWhileHiddenIsANoOp(t *testing.T) {
	c := New(time.Hour)
	c.Dismiss()
	assert.False(t, c.Visible())
}

func TestRearmRestartsCountdown(t *testing.T) {
	c := New(60 * time.Millisecond)

	c.Arm()
	time.Sleep(40 * time.Millisecond)
	c.Arm() // restart, must not stack a second timer

	// Past the first arm's deadline, inside the second's.
	time.Sleep(40 * time.Millisecond)
	assert.True(t, c.Visible(), "dismiss must count from the second arm")

	assert.Eventually(t, func() bool { return !c.Visible() },
		time.Second, 5*time.Millisecond)
}

func TestArmAfterDismissShowsAgain(t *testing.T) {
	c := New(time.Hour)
	c.Arm()
	c.Dismiss()
	c.Arm()
	assert.True(t, c.Visible())
}
