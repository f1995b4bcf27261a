package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeSignals is a deterministic stand-in for internal/sigctl.Controller.
// Each WaitForSigchld call pops one scripted event and, if present,
// delivers it to the table before invoking onWake, mimicking a SIGCHLD
// arriving while the caller was asleep.
type fakeSignals struct {
	table       *Table
	events      []waitEvent
	blocks      int
	unblocks    int
	wakeupCalls int
}

func (f *fakeSignals) BlockSigchldAndSighup()   { f.blocks++ }
func (f *fakeSignals) UnblockSigchldAndSighup() { f.unblocks++ }

func (f *fakeSignals) WaitForSigchld(ctx context.Context, onWake func()) {
	f.wakeupCalls++
	if len(f.events) > 0 {
		e := f.events[0]
		f.events = f.events[1:]
		f.table.wait4 = sequencedWait4([]waitEvent{e})
	} else {
		f.table.wait4 = sequencedWait4(nil)
	}
	onWake()
}

// scenario 6: a stopped job is resumed and eventually finishes; current
// and previous are untouched by WaitForJob itself.
func TestWaitForJobScenario6(t *testing.T) {
	table := New()
	j := NewJob([]*Process{{PID: 50, Name: "vi", State: ProcessStopped, WaitStatus: stoppedStatus(int(unix.SIGTSTP))}}, false)
	require.NoError(t, table.SetActive(j))
	n, _ := table.AddJob(false)
	j.State = JobStopped

	prevCurrent, prevPrevious := table.Current(), table.Previous()

	signals := &fakeSignals{table: table, events: []waitEvent{
		{pid: 50, ws: continuedStatus()},
		{pid: 50, ws: exitedStatus(0)},
	}}

	require.NoError(t, table.WaitForJob(context.Background(), signals, n, false))

	got, ok := table.Get(n)
	require.True(t, ok)
	assert.Equal(t, JobDone, got.State)
	assert.Equal(t, prevCurrent, table.Current())
	assert.Equal(t, prevPrevious, table.Previous())
	assert.Equal(t, 1, signals.blocks)
	assert.Equal(t, 1, signals.unblocks)
}

func TestWaitForJobReturnsImmediatelyIfAlreadyDone(t *testing.T) {
	table := New()
	j := NewJob([]*Process{{PID: 1, Name: "true", State: ProcessDone, WaitStatus: exitedStatus(0)}}, false)
	require.NoError(t, table.SetActive(j))
	n, _ := table.AddJob(false)

	signals := &fakeSignals{table: table}
	require.NoError(t, table.WaitForJob(context.Background(), signals, n, false))

	assert.Equal(t, 0, signals.wakeupCalls)
	assert.Equal(t, 1, signals.blocks)
	assert.Equal(t, 1, signals.unblocks)
}

func TestWaitForJobReturnOnStopStopsAtStopped(t *testing.T) {
	table, n := tableWithProcess(60, "vi", nil)
	signals := &fakeSignals{table: table, events: []waitEvent{
		{pid: 60, ws: stoppedStatus(int(unix.SIGTSTP))},
	}}

	require.NoError(t, table.WaitForJob(context.Background(), signals, n, true))

	got, _ := table.Get(n)
	assert.Equal(t, JobStopped, got.State)
	assert.Equal(t, 1, signals.wakeupCalls)
}

func TestWaitForJobWithoutReturnOnStopKeepsWaitingThroughStop(t *testing.T) {
	table, n := tableWithProcess(61, "vi", nil)
	signals := &fakeSignals{table: table, events: []waitEvent{
		{pid: 61, ws: stoppedStatus(int(unix.SIGTSTP))},
		{pid: 61, ws: continuedStatus()},
		{pid: 61, ws: exitedStatus(0)},
	}}

	require.NoError(t, table.WaitForJob(context.Background(), signals, n, false))

	got, _ := table.Get(n)
	assert.Equal(t, JobDone, got.State)
	assert.Equal(t, 3, signals.wakeupCalls)
}

func TestWaitForJobUnknownJob(t *testing.T) {
	table := New()
	signals := &fakeSignals{table: table}
	assert.ErrorIs(t, table.WaitForJob(context.Background(), signals, 9, false), ErrNoSuchJob)
}

func TestWaitForJobCtxCancelled(t *testing.T) {
	table, n := tableWithProcess(62, "sleep 100", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	signals := &fakeSignals{table: table}
	err := table.WaitForJob(ctx, signals, n, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, signals.blocks)
	assert.Equal(t, 1, signals.unblocks)
}
