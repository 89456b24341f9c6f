package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AfterFunc(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{})

	s.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestScheduler_AfterFuncStop(t *testing.T) {
	s := NewScheduler()
	var n atomic.Int32

	timer := s.AfterFunc(50*time.Millisecond, func() { n.Add(1) })
	assert.True(t, timer.Stop())

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, n.Load())
}

func TestScheduler_Every(t *testing.T) {
	s := NewScheduler()
	var n atomic.Int32

	timer := s.Every(5*time.Millisecond, func() { n.Add(1) })
	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	time.Sleep(20 * time.Millisecond)
	after := n.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}
