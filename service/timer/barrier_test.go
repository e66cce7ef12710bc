package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarrier_SingleParticipant(t *testing.T) {
	b := New()
	p := b.Register()
	for i := uint64(1); i <= 5; i++ {
		tick, err := b.Advance(p)
		assert.NoError(t, err)
		assert.Equal(t, i, tick)
		assert.Equal(t, i, b.Current())
	}
}

func TestBarrier_WaitsForAllParticipants(t *testing.T) {
	b := New()
	p1 := b.Register()
	p2 := b.Register()

	done := make(chan uint64)
	go func() {
		tick, _ := b.Advance(p1)
		done <- tick
	}()

	select {
	case <-done:
		t.Fatal("advance returned before every participant arrived")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, uint64(0), b.Current())

	tick, err := b.Advance(p2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), tick)
	assert.Equal(t, uint64(1), <-done)
}

func TestBarrier_Lockstep(t *testing.T) {
	const participants = 5
	const ticks = 200
	var listened []uint64
	b := New(WithTickListener(func(tick uint64) { listened = append(listened, tick) }))
	handles := make([]*Participant, participants)
	for i := range handles {
		handles[i] = b.Register()
	}
	observed := make([][]uint64, participants)
	var wg sync.WaitGroup
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < ticks; n++ {
				before := b.Current()
				tick, err := b.Advance(handles[i])
				assert.NoError(t, err)
				assert.Equal(t, before+1, tick)
				observed[i] = append(observed[i], tick)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, uint64(ticks), b.Current())
	for i := range observed {
		assert.Len(t, observed[i], ticks)
		for n, tick := range observed[i] {
			assert.Equal(t, uint64(n+1), tick, "participant %d skipped a tick", i)
		}
	}
	assert.Len(t, listened, ticks)
}

func TestBarrier_UnregisterReleasesPeers(t *testing.T) {
	b := New()
	p1 := b.Register()
	p2 := b.Register()

	done := make(chan uint64)
	go func() {
		tick, _ := b.Advance(p1)
		done <- tick
	}()
	time.Sleep(20 * time.Millisecond)
	b.Unregister(p2)
	assert.Equal(t, uint64(1), <-done)
	assert.Equal(t, 1, b.Participants())

	b.Unregister(p2)
	assert.Equal(t, 1, b.Participants())

	_, err := b.Advance(p2)
	assert.ErrorIs(t, err, ErrUnknownParticipant)
	_, err = b.Advance(nil)
	assert.ErrorIs(t, err, ErrUnknownParticipant)
}

func TestBarrier_UnregisterAfterArrival(t *testing.T) {
	b := New()
	p1 := b.Register()
	p2 := b.Register()
	p3 := b.Register()

	done := make(chan uint64, 1)
	go func() {
		tick, _ := b.Advance(p1)
		done <- tick
	}()
	time.Sleep(20 * time.Millisecond)
	// p1 arrived; p3 leaves; p2 still owes this tick
	b.Unregister(p3)
	select {
	case <-done:
		t.Fatal("tick completed without p2")
	case <-time.After(20 * time.Millisecond):
	}
	tick, err := b.Advance(p2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), tick)
	assert.Equal(t, uint64(1), <-done)
}

func TestBarrier_StartStop(t *testing.T) {
	var started []uint64
	b := New(WithTickListener(func(tick uint64) { started = append(started, tick) }))
	p1 := b.Register()
	_ = b.Register()

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	assert.Equal(t, []uint64{0}, started)

	errCh := make(chan error)
	go func() {
		_, err := b.Advance(p1)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("stop did not release the waiting participant")
	}
	assert.True(t, b.Stopped())
	_, err := b.Advance(p1)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, uint64(0), b.Current())
}

func TestBarrier_OnTickRunsBeforeRelease(t *testing.T) {
	b := New()
	var prepared uint64
	b.OnTick(func(tick uint64) { prepared = tick })
	b.OnTick(nil)
	handles := []*Participant{b.Register(), b.Register()}

	var wg sync.WaitGroup
	seen := make([][]uint64, len(handles))
	for i, p := range handles {
		wg.Add(1)
		go func(i int, p *Participant) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				tick, err := b.Advance(p)
				assert.NoError(t, err)
				assert.Equal(t, tick, prepared)
				seen[i] = append(seen[i], prepared)
			}
		}(i, p)
	}
	wg.Wait()
	assert.Equal(t, seen[0], seen[1])
	assert.Len(t, seen[0], 20)
}
