package waiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaver-shell/jobctl/internal/jobtable"
	"github.com/beaver-shell/jobctl/internal/jobtypes"
	"github.com/beaver-shell/jobctl/internal/reaper"
)

// fakeBus is a deterministic sigbus.Notifier for tests: each Wait call
// blocks until the test explicitly wakes it, so tests can drive the
// waiter's retry loop one step at a time.
type fakeBus struct {
	mu     sync.Mutex
	wakeCh chan struct{}
}

func newFakeBus() *fakeBus {
	return &fakeBus{wakeCh: make(chan struct{}, 8)}
}

func (b *fakeBus) wake() {
	select {
	case b.wakeCh <- struct{}{}:
	default:
	}
}

func (b *fakeBus) Wait(ctx context.Context) error {
	select {
	case <-b.wakeCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestWaitForJob_ReturnsImmediatelyIfAlreadyDone(t *testing.T) {
	tbl := jobtable.New()
	job := &jobtypes.Job{
		Processes: []*jobtypes.Process{{Pid: 0, State: jobtypes.ProcessDone, Status: 0}},
		State:     jobtypes.JobDone,
	}

	w := New(newFakeBus(), reaper.New(tbl))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, w.WaitForJob(ctx, job, false))
}

func TestWaitForJob_ReturnsOnStopWhenRequested(t *testing.T) {
	tbl := jobtable.New()
	job := &jobtypes.Job{
		Processes: []*jobtypes.Process{{Pid: 0, State: jobtypes.ProcessStopped}},
		State:     jobtypes.JobStopped,
	}

	w := New(newFakeBus(), reaper.New(tbl))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, w.WaitForJob(ctx, job, true))
}

func TestWaitForJob_BlocksUntilStateChanges(t *testing.T) {
	tbl := jobtable.New()
	job := &jobtypes.Job{
		Processes: []*jobtypes.Process{{Pid: 0, State: jobtypes.ProcessRunning}},
		State:     jobtypes.JobRunning,
	}

	bus := newFakeBus()
	w := New(bus, reaper.New(tbl))

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		done <- w.WaitForJob(ctx, job, false)
	}()

	// Give the waiter time to enter its first blocking Wait call.
	time.Sleep(20 * time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("WaitForJob returned early with err=%v before the job changed state", err)
	default:
	}

	job.Processes[0].State = jobtypes.ProcessDone
	job.Recompute()
	bus.wake()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForJob did not return after the job became DONE")
	}
}

func TestWaitForJob_CtxCancelled(t *testing.T) {
	tbl := jobtable.New()
	job := &jobtypes.Job{
		Processes: []*jobtypes.Process{{Pid: 0, State: jobtypes.ProcessRunning}},
		State:     jobtypes.JobRunning,
	}

	w := New(newFakeBus(), reaper.New(tbl))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WaitForJob(ctx, job, false)
	assert.ErrorIs(t, err, context.Canceled)
}
