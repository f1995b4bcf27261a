package job

import (
	"fmt"
	"io"
)

// PrintJobStatus renders the status of job n (or every job, if n is All)
// to w, in the POSIX job-wise or verbose process-wise format. If
// changedOnly is set, jobs whose StatusChanged is false are skipped. A
// nonexistent job number is silently skipped; it is not an error.
//
// The printer is the sole collector of completed jobs: after printing a
// Done job, PrintJobStatus removes it from the table, which is what lets
// "wait" and "$?" observe completion before the slot disappears.
func (t *Table) PrintJobStatus(n int, changedOnly, verbose, posix bool, namer SignalNamer, w io.Writer) error {
	if n == All {
		for i := 1; i < len(t.slots); i++ {
			if err := t.PrintJobStatus(i, changedOnly, verbose, posix, namer, w); err != nil {
				return err
			}
		}
		return nil
	}

	j, ok := t.Get(n)
	if !ok || (changedOnly && !j.StatusChanged) {
		return nil
	}

	marker := ' '
	switch n {
	case t.current:
		marker = '+'
	case t.previous:
		marker = '-'
	}

	if !verbose {
		if _, err := fmt.Fprintf(w, "[%d] %c %-20s %s\n", n, marker, jobStatusString(j, namer), jobName(j)); err != nil {
			return err
		}
	} else if err := t.printVerbose(j, n, marker, posix, namer, w); err != nil {
		return err
	}

	j.StatusChanged = false
	if j.State == JobDone {
		return t.Remove(n)
	}
	return nil
}

func (t *Table) printVerbose(j *Job, n int, marker rune, posix bool, namer SignalNamer, w io.Writer) error {
	loopPipe := ' '
	if j.Loop {
		loopPipe = '|'
	}

	first := j.Processes[0]
	if _, err := fmt.Fprintf(w, "[%d] %c %5d %-20s %c %s\n",
		n, marker, pidOf(first), processStatusString(first, namer), loopPipe, first.Name); err != nil {
		return err
	}

	for _, p := range j.Processes[1:] {
		status := processStatusString(p, namer)
		if posix {
			status = ""
		}
		if _, err := fmt.Fprintf(w, "      %5d %-20s | %s\n", pidOf(p), status, p.Name); err != nil {
			return err
		}
	}
	return nil
}

func pidOf(p *Process) int {
	if p.NeverForked {
		return 0
	}
	return p.PID
}
