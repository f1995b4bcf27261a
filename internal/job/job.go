package job

// JobState is the aggregate state of a job, derived from its member
// processes: Running if any process is running, else Stopped if any is
// stopped, else Done.
type JobState int

const (
	JobRunning JobState = iota
	JobStopped
	JobDone
)

func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "running"
	case JobStopped:
		return "stopped"
	case JobDone:
		return "done"
	default:
		return "unknown"
	}
}

// Job is an ordered pipeline of processes plus the aggregate state derived
// from them. Index len(Processes)-1 is the last process: its exit status
// is the job's exit status.
type Job struct {
	Processes []*Process
	State     JobState

	// StatusChanged is a sticky flag set whenever State changes and
	// cleared only by the printer, so a caller sampling job state
	// between prints can tell whether anything happened since the last
	// report.
	StatusChanged bool

	// Loop marks a pipeline whose last command feeds back into its
	// first. Display-only; it does not affect state derivation.
	Loop bool
}

// NewJob builds a job from a non-empty list of processes. The caller
// (the executor) is responsible for populating PIDs/names before handing
// the job to a Table via SetActive.
func NewJob(processes []*Process, loop bool) *Job {
	if len(processes) == 0 {
		panic("job: NewJob called with no processes")
	}
	j := &Job{Processes: processes, Loop: loop}
	j.recomputeState()
	return j
}

// recomputeState re-derives State from the member processes, per the I2
// invariant: Running iff any process is Running; else Stopped iff any is
// Stopped; else Done.
func (j *Job) recomputeState() bool {
	old := j.State
	anyRunning, anyStopped := false, false
	for _, p := range j.Processes {
		switch p.State {
		case ProcessRunning:
			anyRunning = true
		case ProcessStopped:
			anyStopped = true
		}
	}
	switch {
	case anyRunning:
		j.State = JobRunning
	case anyStopped:
		j.State = JobStopped
	default:
		j.State = JobDone
	}
	return j.State != old
}

// lastProcess returns the last process in the pipeline, whose status is
// the job's exit status.
func (j *Job) lastProcess() *Process {
	return j.Processes[len(j.Processes)-1]
}

// lastStoppedProcess scans from the end for the most recently stopped
// process, matching get_job_status_string's/calc_status_of_job's scan
// order in the reference implementation.
func (j *Job) lastStoppedProcess() *Process {
	for i := len(j.Processes) - 1; i >= 0; i-- {
		if j.Processes[i].State == ProcessStopped {
			return j.Processes[i]
		}
	}
	return nil
}
