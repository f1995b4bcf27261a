package shell

import (
	"fmt"
	"os"
	"syscall"

	"myshell/internal/job"
	"myshell/internal/sigctl"
)

func (s *Shell) executeBuiltin(args []string) (bool, error) {
	switch args[0] {
	case "cd":
		return true, s.changeDirectory(args[1:])
	case "exit":
		s.exit()
		return true, nil
	case "history":
		return true, s.showHistory()
	case "jobs":
		return true, s.listJobs(args[1:])
	case "fg":
		return true, s.foregroundJob(args[1:])
	case "bg":
		return true, s.backgroundJob(args[1:])
	case "wait":
		return true, s.waitBuiltin(args[1:])
	case "disown":
		return true, s.disownJob(args[1:])
	default:
		return false, nil
	}
}

func (s *Shell) changeDirectory(args []string) error {
	var dir string
	if len(args) == 0 {
		dir = s.config.HomeDir
	} else {
		dir = args[0]
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	return nil
}

func (s *Shell) exit() {
	s.Close()
	os.Exit(0)
}

func (s *Shell) showHistory() error {
	for i, e := range s.history.GetAll() {
		fmt.Printf("%d  [%d]  %s\n", i+1, e.Status, e.Command)
	}
	return nil
}

// listJobs implements the "jobs" builtin: "jobs -l" selects the verbose,
// process-wise format (spec §4.7); "jobs -p" prints only the total and
// stopped job counts, the way yash's job_count/stopped_job_count feed a
// prompt or status line rather than a full listing.
func (s *Shell) listJobs(args []string) error {
	verbose := false
	countOnly := false
	for _, a := range args {
		switch a {
		case "-l":
			verbose = true
		case "-p":
			countOnly = true
		}
	}
	s.jobs.DoWait()
	if countOnly {
		fmt.Printf("%d total, %d stopped\n", s.jobs.Count(), s.jobs.StoppedCount())
		return nil
	}
	return s.jobs.PrintJobStatus(job.All, false, verbose, s.config.PosixlyCorrect, sigctl.SignalName, os.Stdout)
}

// foregroundJob implements "fg [%job]": resumes a stopped job with
// SIGCONT if needed, makes it current, and blocks until it finishes or
// stops again. Reattaching the job's I/O to the controlling terminal via
// tcsetpgrp is out of scope (Non-goals).
func (s *Shell) foregroundJob(args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	n, err := s.resolveJobNumber(arg)
	if err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	j, ok := s.jobs.Get(n)
	if !ok {
		return fmt.Errorf("fg: %d: no such job", n)
	}
	if err := s.jobs.SetCurrent(n); err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	if j.State == job.JobStopped {
		resumeJob(j)
	}

	if err := s.jobs.WaitForJob(s.ctx, s.signals, n, true); err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	j, ok = s.jobs.Get(n)
	if !ok {
		return nil
	}
	if j.State == job.JobStopped {
		return s.jobs.PrintJobStatus(n, false, false, s.config.PosixlyCorrect, sigctl.SignalName, os.Stdout)
	}
	return s.jobs.Remove(n)
}

// backgroundJob implements "bg [%job]": resumes a stopped job with
// SIGCONT and lets it keep running asynchronously. Backgrounding the
// current or previous job resets the current/previous labels (P3).
func (s *Shell) backgroundJob(args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	n, err := s.resolveJobNumber(arg)
	if err != nil {
		return fmt.Errorf("bg: %w", err)
	}
	j, ok := s.jobs.Get(n)
	if !ok {
		return fmt.Errorf("bg: %d: no such job", n)
	}
	if j.State != job.JobStopped {
		return fmt.Errorf("bg: job %d is not stopped", n)
	}
	if n == s.jobs.Current() || n == s.jobs.Previous() {
		if err := s.jobs.SetCurrent(n); err != nil {
			return fmt.Errorf("bg: %w", err)
		}
	}
	resumeJob(j)
	fmt.Printf("[%d] %s &\n", n, jobFirstProcessName(j))
	return nil
}

// waitBuiltin implements "wait [%job]": with no argument, waits for every
// job extant at the time of the call to finish; with an argument, waits
// only for that job. Per P4, waiting never changes current/previous,
// which WaitForJob already guarantees by construction.
func (s *Shell) waitBuiltin(args []string) error {
	if len(args) == 0 {
		for _, n := range s.jobs.Numbers() {
			if err := s.jobs.WaitForJob(s.ctx, s.signals, n, false); err != nil {
				return fmt.Errorf("wait: %w", err)
			}
			_ = s.jobs.Remove(n)
		}
		return nil
	}

	n, err := s.resolveJobNumber(args[0])
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if _, ok := s.jobs.Get(n); !ok {
		return fmt.Errorf("wait: %d: no such job", n)
	}
	if err := s.jobs.WaitForJob(s.ctx, s.signals, n, false); err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	return s.jobs.Remove(n)
}

// disownJob implements "disown %job": removes a job from the table
// without waiting for it — the documented reason a reaped pid can go
// unclaimed (spec §7 "Missing process").
func (s *Shell) disownJob(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("disown: missing job number")
	}
	n, err := s.resolveJobNumber(args[0])
	if err != nil {
		return fmt.Errorf("disown: %w", err)
	}
	if err := s.jobs.Remove(n); err != nil {
		return fmt.Errorf("disown: %w", err)
	}
	return nil
}

// resumeJob sends SIGCONT to every process in j last observed stopped. It
// doesn't itself update j's state; the next DoWait drain observes the
// resulting transition.
func resumeJob(j *job.Job) {
	for _, p := range j.Processes {
		if p.State == job.ProcessStopped && !p.NeverForked {
			_ = syscall.Kill(p.PID, syscall.SIGCONT)
		}
	}
}

func jobFirstProcessName(j *job.Job) string {
	if len(j.Processes) == 0 {
		return ""
	}
	return j.Processes[0].Name
}
