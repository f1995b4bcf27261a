package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func exitedStatus(code int) waitStatus     { return waitStatus(code << 8) }
func stoppedStatus(sig int) waitStatus     { return waitStatus(0x7f | (sig << 8)) }
func signaledStatus(sig int, core bool) waitStatus {
	s := waitStatus(sig)
	if core {
		s |= 0x80
	}
	return s
}
func continuedStatus() waitStatus { return waitStatus(0xffff) }

type waitEvent struct {
	pid int
	ws  waitStatus
	err error
}

// sequencedWait4 returns a wait4Func that replays events in order, then
// reports "no more pending events" (pid 0, nil error) forever after.
func sequencedWait4(events []waitEvent) wait4Func {
	i := 0
	return func(pid, options int) (int, waitStatus, error) {
		if i >= len(events) {
			return 0, 0, nil
		}
		e := events[i]
		i++
		return e.pid, e.ws, e.err
	}
}

func tableWithProcess(pid int, name string, events []waitEvent) (*Table, int) {
	table := New(withWait4(sequencedWait4(events)))
	j := NewJob([]*Process{{PID: pid, Name: name, State: ProcessRunning}}, false)
	_ = table.SetActive(j)
	n, _ := table.AddJob(false)
	return table, n
}

// T5 / scenario 1 (partial): a Done event updates process and aggregate
// job state and sets StatusChanged.
func TestDoWaitMarksProcessAndJobDone(t *testing.T) {
	table, n := tableWithProcess(42, "sleep 1", []waitEvent{
		{pid: 42, ws: exitedStatus(0)},
	})

	table.DoWait()

	j, ok := table.Get(n)
	require.True(t, ok)
	assert.Equal(t, JobDone, j.State)
	assert.True(t, j.StatusChanged)
	assert.Equal(t, ProcessDone, j.Processes[0].State)
}

// scenario 2: a stop event marks the job Stopped and dirties the flag.
func TestDoWaitMarksJobStopped(t *testing.T) {
	table, n := tableWithProcess(43, "vi", []waitEvent{
		{pid: 43, ws: stoppedStatus(int(unix.SIGTSTP))},
	})

	table.DoWait()

	j, _ := table.Get(n)
	assert.Equal(t, JobStopped, j.State)
	assert.True(t, j.StatusChanged)
}

// I2: a multi-process job is Running iff any process is running, else
// Stopped iff any is stopped, else Done.
func TestDoWaitAggregatesMultiProcessJob(t *testing.T) {
	events := []waitEvent{
		{pid: 2, ws: stoppedStatus(int(unix.SIGTSTP))},
	}
	table := New(withWait4(sequencedWait4(events)))
	j := NewJob([]*Process{
		{PID: 1, Name: "producer", State: ProcessRunning},
		{PID: 2, Name: "consumer", State: ProcessRunning},
	}, false)
	_ = table.SetActive(j)
	n, _ := table.AddJob(false)

	table.DoWait()

	got, _ := table.Get(n)
	assert.Equal(t, JobRunning, got.State, "job is Running: process 2 stopped, process 1 still running")
}

// R2: calling DoWait twice with no new events is a no-op the second time.
func TestDoWaitTwiceWithNoNewEventsIsNoop(t *testing.T) {
	table, n := tableWithProcess(44, "sleep 1", []waitEvent{
		{pid: 44, ws: exitedStatus(3)},
	})

	table.DoWait()
	j, _ := table.Get(n)
	j.StatusChanged = false // simulate the printer having cleared it

	table.DoWait()
	assert.False(t, j.StatusChanged)
}

// A reaped pid with no owning job (e.g. after disown) is ignored, and the
// drain continues to any further events.
func TestDoWaitIgnoresUnclaimedPID(t *testing.T) {
	table, n := tableWithProcess(45, "sleep 1", []waitEvent{
		{pid: 999, ws: exitedStatus(0)},
		{pid: 45, ws: exitedStatus(0)},
	})

	table.DoWait()

	j, ok := table.Get(n)
	require.True(t, ok)
	assert.Equal(t, JobDone, j.State)
}

// scenario 5: WCONTINUED is rejected at runtime with EINVAL; the reaper
// drops the flag permanently and completes the drain without surfacing an
// error.
func TestDoWaitDropsWContinuedOnEinval(t *testing.T) {
	table, n := tableWithProcess(46, "sleep 1", nil)
	table.wait4 = func(pid, opts int) (int, waitStatus, error) {
		if opts&unix.WCONTINUED != 0 {
			return -1, 0, unix.EINVAL
		}
		return 0, 0, nil
	}
	var sinkErr error
	table.errorSink = func(err error) { sinkErr = err }

	table.DoWait()

	assert.NoError(t, sinkErr)
	assert.Equal(t, 0, table.waitOpts&unix.WCONTINUED)
	j, ok := table.Get(n)
	require.True(t, ok)
	assert.Equal(t, JobRunning, j.State)
}

func TestDoWaitStopsOnECHILD(t *testing.T) {
	table := New(withWait4(func(pid, opts int) (int, waitStatus, error) {
		return -1, 0, unix.ECHILD
	}))
	table.DoWait() // must return, not loop forever
}

func TestDoWaitRetriesOnEINTR(t *testing.T) {
	calls := 0
	table, n := tableWithProcess(47, "sleep 1", nil)
	table.wait4 = func(pid, opts int) (int, waitStatus, error) {
		calls++
		if calls == 1 {
			return -1, 0, unix.EINTR
		}
		if calls == 2 {
			return 47, exitedStatus(0), nil
		}
		return 0, 0, nil
	}

	table.DoWait()

	j, ok := table.Get(n)
	require.True(t, ok)
	assert.Equal(t, JobDone, j.State)
}

func TestDoWaitReportsUnexpectedError(t *testing.T) {
	boom := errors.New("boom")
	table := New(withWait4(func(pid, opts int) (int, waitStatus, error) {
		return -1, 0, boom
	}))
	var got error
	table.errorSink = func(err error) { got = err }

	table.DoWait()

	require.Error(t, got)
	assert.ErrorIs(t, got, boom)
}
