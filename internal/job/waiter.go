package job

import "context"

// SignalController is the signal-subsystem contract wait_for_job needs:
// block/unblock SIGCHLD+SIGHUP around a check-then-sleep loop, and an
// atomic sleep-until-SIGCHLD primitive that re-enters the reaper before
// returning (see internal/sigctl).
type SignalController interface {
	BlockSigchldAndSighup()
	UnblockSigchldAndSighup()
	WaitForSigchld(ctx context.Context, onWake func())
}

// WaitForJob suspends the caller until job n reaches Done, or Done/Stopped
// if returnOnStop is set. It returns immediately if the job already
// satisfies the target state. SIGCHLD and SIGHUP are blocked for the
// duration except while actually asleep, so no wakeup between the check
// and the sleep is lost and no SIGHUP handler can interleave with a
// partial state update.
func (t *Table) WaitForJob(ctx context.Context, signals SignalController, n int, returnOnStop bool) error {
	j, ok := t.Get(n)
	if !ok {
		return ErrNoSuchJob
	}

	signals.BlockSigchldAndSighup()
	defer signals.UnblockSigchldAndSighup()

	for {
		if j.State == JobDone {
			return nil
		}
		if returnOnStop && j.State == JobStopped {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		signals.WaitForSigchld(ctx, t.DoWait)
	}
}
