package job

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// waitStatus is the decoded status golang.org/x/sys/unix hands back from
// Wait4; it carries the exited/signaled/stopped/continued tag and the
// exit code / signal / core-dump bits needed at the boundary, matching
// the "keep the raw status opaque, decode late" design note.
type waitStatus = unix.WaitStatus

const defaultWaitOpts = unix.WUNTRACED | unix.WNOHANG | unix.WCONTINUED

// osWait4 is the production wait4Func, calling the real syscall via
// golang.org/x/sys/unix.
func (t *Table) osWait4(pid, options int) (int, waitStatus, error) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(pid, &ws, options, nil)
	return wpid, ws, err
}

// DoWait drains every currently pending child-status event without
// blocking. It is safe to call whether or not SIGCHLD is blocked, and is
// a no-op if nothing changed since the last call (R2).
func (t *Table) DoWait() {
	for {
		wpid, ws, err := t.wait4(-1, t.waitOpts)
		if err != nil {
			switch {
			case err == unix.EINTR:
				continue
			case err == unix.ECHILD:
				return
			case err == unix.EINVAL && t.waitOpts&unix.WCONTINUED != 0:
				// Some platforms define WCONTINUED but reject it at
				// runtime; drop it permanently and retry, per the
				// documented Bash workaround.
				t.waitOpts &^= unix.WCONTINUED
				continue
			default:
				t.errorSink(fmt.Errorf("waitpid: %w", err))
				return
			}
		}
		if wpid == 0 {
			return
		}

		job, proc := t.findByPID(wpid)
		if job == nil {
			// Reaped a pid no job claims, e.g. it was disowned. Expected;
			// keep draining.
			continue
		}

		proc.WaitStatus = ws
		switch {
		case ws.Exited(), ws.Signaled():
			proc.State = ProcessDone
		case ws.Stopped():
			proc.State = ProcessStopped
		case ws.Continued():
			proc.State = ProcessRunning
		}

		if job.recomputeState() {
			job.StatusChanged = true
		}
	}
}

// findByPID locates the job and process record for pid by linear scan,
// matching the reference implementation's simple table walk (the table is
// small and this runs once per reaped event, not per tick).
func (t *Table) findByPID(pid int) (*Job, *Process) {
	for _, j := range t.slots {
		if j == nil {
			continue
		}
		for _, p := range j.Processes {
			if !p.NeverForked && p.PID == pid {
				return j, p
			}
		}
	}
	return nil, nil
}
