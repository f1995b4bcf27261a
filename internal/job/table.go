package job

import (
	"errors"
	"fmt"
)

// ActiveSlot is the reserved index that holds the job under construction
// before it is published with AddJob. It is never a valid, user-visible
// job number.
const ActiveSlot = 0

// All selects every job when passed to PrintJobStatus.
const All = -1

var (
	// ErrActiveSlotOccupied is returned by SetActive when a job is
	// already parked in the active slot.
	ErrActiveSlotOccupied = errors.New("job: active slot already occupied")
	// ErrNoActiveJob is returned by AddJob when the active slot is empty.
	ErrNoActiveJob = errors.New("job: no active job to add")
	// ErrNoSuchJob is returned by operations given a job number that
	// does not name an extant job.
	ErrNoSuchJob = errors.New("job: no such job")
)

// wait4Func abstracts the OS waitpid call so the reaper can be exercised
// in tests without a real child process tree.
type wait4Func func(pid, options int) (wpid int, ws waitStatus, err error)

// Table is the sparse, indexed collection of jobs described in the design:
// slot 0 is the active slot, slots 1.. are user-visible job numbers.
// A Table is single-owner and is not safe for concurrent use from more
// than one goroutine at a time; the shell driver is expected to serialize
// access to it the way the reference implementation's single-threaded
// event loop does.
type Table struct {
	slots    []*Job
	current  int
	previous int

	waitOpts      int
	wait4         wait4Func
	errorSink     func(error)
	termsigOffset int
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithErrorSink overrides where non-recoverable waitpid errors are
// reported. The default writes nothing; callers should normally supply
// one that logs to stderr the way the shell driver does.
func WithErrorSink(sink func(error)) Option {
	return func(t *Table) { t.errorSink = sink }
}

// WithTermsigOffset overrides the constant added to a signal number when
// expressing it as an exit status. Defaults to 384, the conventional
// shell value.
func WithTermsigOffset(offset int) Option {
	return func(t *Table) { t.termsigOffset = offset }
}

// withWait4 injects a fake waitpid for testing. Unexported: production
// callers always get the real syscall.
func withWait4(fn wait4Func) Option {
	return func(t *Table) { t.wait4 = fn }
}

// New creates an initialized job table with the active slot present and
// empty. Unlike the reference implementation's process-wide singleton,
// New returns an owned handle the caller threads through explicitly,
// matching Go's preference for explicit dependency injection over global
// mutable state.
func New(opts ...Option) *Table {
	t := &Table{
		slots:         make([]*Job, 1),
		waitOpts:      defaultWaitOpts,
		errorSink:     func(error) {},
		termsigOffset: 384,
	}
	t.wait4 = t.osWait4
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetActive parks job in the active slot. The slot must be empty.
func (t *Table) SetActive(j *Job) error {
	if t.slots[ActiveSlot] != nil {
		return ErrActiveSlotOccupied
	}
	t.slots[ActiveSlot] = j
	return nil
}

// AddJob moves the job out of the active slot into the lowest free index
// >= 1 (appending if none is free), then updates the current/previous
// labels: the new job becomes current if makeCurrent is set or there is
// no current job yet; otherwise it becomes previous if there is no
// previous job yet; otherwise the labels are unchanged.
func (t *Table) AddJob(makeCurrent bool) (int, error) {
	j := t.slots[ActiveSlot]
	if j == nil {
		return 0, ErrNoActiveJob
	}
	t.slots[ActiveSlot] = nil

	for i := 1; i < len(t.slots); i++ {
		if t.slots[i] == nil {
			t.slots[i] = j
			t.afterAdd(i, makeCurrent)
			return i, nil
		}
	}

	t.slots = append(t.slots, j)
	n := len(t.slots) - 1
	t.afterAdd(n, makeCurrent)
	return n, nil
}

func (t *Table) afterAdd(n int, makeCurrent bool) {
	if makeCurrent || t.current == 0 {
		t.setCurrent(n)
	} else if t.previous == 0 {
		t.previous = n
	}
}

// Get returns the job at index n, or false if the slot is out of range or
// empty.
func (t *Table) Get(n int) (*Job, bool) {
	if n < 0 || n >= len(t.slots) || t.slots[n] == nil {
		return nil, false
	}
	return t.slots[n], true
}

// Remove clears slot n, compacts the table, and re-derives current and
// previous per the selector policy.
func (t *Table) Remove(n int) error {
	if _, ok := t.Get(n); !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchJob, n)
	}
	t.slots[n] = nil
	t.trim()

	switch n {
	case t.current:
		t.current = t.previous
		t.previous = t.findNext(t.current)
	case t.previous:
		t.previous = t.findNext(t.current)
	}
	return nil
}

// RemoveAll clears every slot and zeroes the current/previous labels
// unconditionally. The loop clears slots directly rather than through
// Remove, so no per-removal label adjustment happens; the explicit
// zeroing at the end is what resets both labels.
func (t *Table) RemoveAll() {
	for i := 1; i < len(t.slots); i++ {
		t.slots[i] = nil
	}
	t.trim()
	t.current, t.previous = 0, 0
}

// Count returns the number of extant (non-active-slot) jobs.
func (t *Table) Count() int {
	n := 0
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i] != nil {
			n++
		}
	}
	return n
}

// StoppedCount returns the number of extant jobs whose aggregate state is
// Stopped.
func (t *Table) StoppedCount() int {
	n := 0
	for i := 1; i < len(t.slots); i++ {
		if j := t.slots[i]; j != nil && j.State == JobStopped {
			n++
		}
	}
	return n
}

// Numbers returns every extant job number in ascending order.
func (t *Table) Numbers() []int {
	var ns []int
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i] != nil {
			ns = append(ns, i)
		}
	}
	return ns
}

// Current returns the current job number, or 0 if none.
func (t *Table) Current() int { return t.current }

// Previous returns the previous job number, or 0 if none.
func (t *Table) Previous() int { return t.previous }

// trim implements the compaction rule: truncate to one past the last
// non-empty slot, and additionally release backing capacity down to that
// length when the table has grown to more than 20 slots and less than
// half of its capacity is in use. This is a memory hint only; it changes
// no observable behavior.
func (t *Table) trim() {
	tail := len(t.slots)
	for tail > 0 && t.slots[tail-1] == nil {
		tail--
	}
	newLen := tail
	if newLen == 0 {
		newLen = 1 // slot 0 always exists
	}

	if cap(t.slots) > 20 && cap(t.slots)/2 > newLen {
		shrunk := make([]*Job, newLen)
		copy(shrunk, t.slots[:newLen])
		t.slots = shrunk
		return
	}
	t.slots = t.slots[:newLen]
}
