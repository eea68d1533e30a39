package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(4, 64, nil)
	defer p.Close()

	var n atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, p.AddTask(func() { n.Add(1) }))
	}
	p.Wait()
	assert.Equal(t, int32(50), n.Load())
}

func TestPoolRecoversPanics(t *testing.T) {
	p := NewPool(1, 4, nil)
	defer p.Close()

	var ran atomic.Bool
	require.NoError(t, p.AddTask(func() { panic("boom") }))
	require.NoError(t, p.AddTask(func() { ran.Store(true) }))
	p.Wait()
	assert.True(t, ran.Load(), "worker survives a panicking task")
}

func TestPoolQueueFull(t *testing.T) {
	p := NewPool(1, 1, nil)
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.AddTask(func() { close(started); <-block }))
	<-started
	require.NoError(t, p.AddTask(func() {}))
	assert.ErrorIs(t, p.AddTask(func() {}), ErrQueueFull)
	close(block)
	p.Wait()
}

func TestPoolClose(t *testing.T) {
	p := NewPool(2, 8, nil)
	var n atomic.Int32
	require.NoError(t, p.AddTask(func() { n.Add(1) }))
	require.NoError(t, p.Close())
	assert.Equal(t, int32(1), n.Load(), "queued work finishes before Close returns")
	assert.ErrorIs(t, p.AddTask(func() {}), ErrClosed)
	assert.NoError(t, p.Close())
}
