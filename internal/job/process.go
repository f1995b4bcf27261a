// Package job implements the job-control core of the shell: a table of
// asynchronously executing pipelines, a non-blocking reaper that reconciles
// job state with the OS, the POSIX current/previous job policy, and the
// status strings the jobs/fg/bg/wait builtins print.
package job

import "golang.org/x/sys/unix"

// ProcessState is the three-state lifecycle of a single child process.
type ProcessState int

const (
	ProcessRunning ProcessState = iota
	ProcessStopped
	ProcessDone
)

func (s ProcessState) String() string {
	switch s {
	case ProcessRunning:
		return "running"
	case ProcessStopped:
		return "stopped"
	case ProcessDone:
		return "done"
	default:
		return "unknown"
	}
}

// Process is a snapshot of one child in a pipeline.
//
// NeverForked distinguishes a process that was absorbed into the shell
// itself (e.g. a builtin run as the last stage of a pipeline, in a
// subshell that never actually forked) from a real pid. Overloading PID==0
// for both "never forked" and "waitpid returned no event" would conflate
// two unrelated meanings, so the two are kept as separate fields per the
// job-control design notes.
type Process struct {
	PID         int
	NeverForked bool

	// WaitStatus is the last raw status returned by waitpid for this
	// process. Only meaningful when NeverForked is false.
	WaitStatus unix.WaitStatus

	// DirectStatus holds the exit status directly when NeverForked is
	// true; there is no wait status to decode in that case.
	DirectStatus int

	State ProcessState
	Name  string
}

// NewForkedProcess describes a process the executor actually started.
func NewForkedProcess(pid int, name string) *Process {
	return &Process{PID: pid, Name: name, State: ProcessRunning}
}

// NewAbsorbedProcess describes a process that never forked, such as a
// builtin run as the last stage of a background pipeline; its exit status
// is known synchronously and stored directly.
func NewAbsorbedProcess(name string, status int) *Process {
	return &Process{NeverForked: true, DirectStatus: status, Name: name, State: ProcessDone}
}
