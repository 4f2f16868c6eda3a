package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testQuiet = 40 * time.Millisecond

type settleRecorder struct {
	mu     sync.Mutex
	values []string
	times  []time.Time
}

func (r *settleRecorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	r.times = append(r.times, time.Now())
}

func (r *settleRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestBuffer_RapidInputSettlesOnce(t *testing.T) {
	rec := &settleRecorder{}
	b := New(testQuiet, rec.record)
	defer b.Stop()

	b.SetRaw("a")
	b.SetRaw("ab")
	last := time.Now()
	b.SetRaw("abc")

	assert.Equal(t, "abc", b.Raw())
	assert.Equal(t, "", b.Settled())
	assert.True(t, b.Pending())

	assert.Eventually(t, func() bool { return b.Settled() == "abc" }, time.Second, 5*time.Millisecond)
	// give any stray timers time to fire
	time.Sleep(3 * testQuiet)

	assert.Equal(t, []string{"abc"}, rec.snapshot())
	rec.mu.Lock()
	assert.GreaterOrEqual(t, rec.times[0].Sub(last), testQuiet)
	rec.mu.Unlock()
	assert.False(t, b.Pending())
}

func TestBuffer_SettlesAfterEachQuietWindow(t *testing.T) {
	rec := &settleRecorder{}
	b := New(testQuiet, rec.record)
	defer b.Stop()

	b.SetRaw("dev")
	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	b.SetRaw("design")
	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"dev", "design"}, rec.snapshot())
	assert.Equal(t, "design", b.Settled())
}

func TestBuffer_UnchangedValueDoesNotNotify(t *testing.T) {
	rec := &settleRecorder{}
	b := New(testQuiet, rec.record)
	defer b.Stop()

	b.SetRaw("go")
	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	b.SetRaw("go")
	assert.Eventually(t, func() bool { return !b.Pending() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"go"}, rec.snapshot())
}

func TestBuffer_ResetCancelsPending(t *testing.T) {
	rec := &settleRecorder{}
	b := New(testQuiet, rec.record)
	defer b.Stop()

	b.SetRaw("marketing")
	b.Reset("")
	time.Sleep(3 * testQuiet)

	assert.Equal(t, "", b.Raw())
	assert.Equal(t, "", b.Settled())
	assert.Empty(t, rec.snapshot())
}

func TestBuffer_StopIgnoresLaterInput(t *testing.T) {
	rec := &settleRecorder{}
	b := New(testQuiet, rec.record)

	b.SetRaw("a")
	b.Stop()
	b.SetRaw("b")
	time.Sleep(3 * testQuiet)

	assert.Empty(t, rec.snapshot())
	assert.Equal(t, "", b.Settled())
}

func TestNew_DefaultQuiet(t *testing.T) {
	b := New(0, nil)
	assert.Equal(t, DefaultQuiet, b.quiet)
}
