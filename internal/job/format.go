package job

import (
	"strconv"
	"strings"
)

// SignalNamer maps a signal number to its symbolic name without the "SIG"
// prefix (e.g. 20 -> "TSTP"), the way internal/sigctl.SignalName does.
type SignalNamer func(signum int) string

// processStatusString renders a single process's status the way POSIX
// jobs/fg/bg output requires: "Running", "Stopped(SIG<name>)",
// "Done"/"Done(n)", or "Killed (SIG<name>[: core dumped])".
func processStatusString(p *Process, namer SignalNamer) string {
	switch p.State {
	case ProcessRunning:
		return "Running"
	case ProcessStopped:
		return "Stopped(SIG" + namer(int(p.WaitStatus.StopSignal())) + ")"
	case ProcessDone:
		if p.NeverForked {
			return doneString(p.DirectStatus)
		}
		ws := p.WaitStatus
		if ws.Exited() {
			return doneString(ws.ExitStatus())
		}
		sig := ws.Signal()
		name := namer(int(sig))
		if ws.CoreDump() {
			return "Killed (SIG" + name + ": core dumped)"
		}
		return "Killed (SIG" + name + ")"
	default:
		panic("job: processStatusString called on a process with unset state")
	}
}

func doneString(exitStatus int) string {
	if exitStatus == 0 {
		return "Done"
	}
	return "Done(" + strconv.Itoa(exitStatus) + ")"
}

// jobStatusString renders a job's status: Running jobs render as
// "Running"; Stopped jobs render as the status of the last stopped
// process; Done jobs render as the status of the last process.
func jobStatusString(j *Job, namer SignalNamer) string {
	switch j.State {
	case JobRunning:
		return "Running"
	case JobStopped:
		p := j.lastStoppedProcess()
		if p == nil {
			panic("job: Stopped job has no stopped process")
		}
		return processStatusString(p, namer)
	case JobDone:
		return processStatusString(j.lastProcess(), namer)
	default:
		panic("job: jobStatusString called on a job with unset state")
	}
}

// jobName is the job's display name: the sole process's name if there is
// only one, otherwise every process's name joined by " | ", prefixed with
// "| " when the pipeline loops back on itself.
func jobName(j *Job) string {
	if len(j.Processes) == 1 {
		return j.Processes[0].Name
	}
	names := make([]string, len(j.Processes))
	for i, p := range j.Processes {
		names[i] = p.Name
	}
	joined := strings.Join(names, " | ")
	if j.Loop {
		return "| " + joined
	}
	return joined
}
