package job

// calcStatus derives an exit status from a process's raw wait status, per
// the shell convention that a signal-derived status is offset by
// termsigOffset so it can never collide with an exit code in 0..255 or a
// shell-internal status.
func calcStatus(p *Process, termsigOffset int) int {
	if p.NeverForked {
		return p.DirectStatus
	}
	ws := p.WaitStatus
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return int(ws.Signal()) + termsigOffset
	case ws.Stopped():
		return int(ws.StopSignal()) + termsigOffset
	default:
		panic("job: calcStatus called on a process with no terminal status")
	}
}

// CalcStatusOfJob returns the reportable exit status of a Done or Stopped
// job: for Done, the last process's status; for Stopped, the last stopped
// process's status (scanning from the end). Calling this on a Running job
// is a programming error and panics, mirroring the reference
// implementation's assert(false).
func (t *Table) CalcStatusOfJob(j *Job) int {
	switch j.State {
	case JobDone:
		return calcStatus(j.lastProcess(), t.termsigOffset)
	case JobStopped:
		if p := j.lastStoppedProcess(); p != nil {
			return calcStatus(p, t.termsigOffset)
		}
		panic("job: Stopped job has no stopped process")
	default:
		panic("job: CalcStatusOfJob called on a Running job")
	}
}
