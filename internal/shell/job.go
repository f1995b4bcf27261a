package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"myshell/internal/job"
)

// pipeline is one or more pipe-connected commands parsed from a single
// input line, plus whether the whole pipeline should run in the
// background.
type pipeline struct {
	stages     [][]string
	background bool
}

// parsePipeline tokenizes a line into pipeline stages on "|", honoring
// quoting via go-shellquote the way the teacher's alternate entrypoint
// does, and strips a trailing "&".
func parsePipeline(line string) (*pipeline, error) {
	line = strings.TrimSpace(line)
	background := false
	if strings.HasSuffix(line, "&") {
		background = true
		line = strings.TrimSpace(strings.TrimSuffix(line, "&"))
	}

	rawStages := strings.Split(line, "|")
	stages := make([][]string, 0, len(rawStages))
	for _, raw := range rawStages {
		argv, err := shellquote.Split(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("syntax error near unexpected token `|'")
		}
		stages = append(stages, argv)
	}
	return &pipeline{stages: stages, background: background}, nil
}

// startPipeline forks every stage of p, wiring the stdout of each stage to
// the stdin of the next with os.Pipe, then publishes the resulting job to
// the job table (as the active slot, then AddJob). The core does its own
// waitpid-based reaping (internal/job.Table.DoWait), so the pipeline's
// *exec.Cmd values are never Wait()ed here; only their PIDs matter once
// they're running.
func (s *Shell) startPipeline(p *pipeline) (int, error) {
	cmds := make([]*exec.Cmd, len(p.stages))
	var prevRead *os.File
	var pipesToClose []*os.File

	for i, argv := range p.stages {
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Env = os.Environ()

		if i == 0 {
			if !p.background {
				cmd.Stdin = os.Stdin
			}
		} else {
			cmd.Stdin = prevRead
		}

		last := i == len(p.stages)-1
		if last {
			if !p.background {
				cmd.Stdout = os.Stdout
				cmd.Stderr = os.Stderr
			}
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				closeAll(pipesToClose)
				return 0, fmt.Errorf("pipe: %w", err)
			}
			cmd.Stdout = w
			pipesToClose = append(pipesToClose, w, r)
			prevRead = r
		}
		if !last {
			cmd.Stderr = os.Stderr
		}

		cmds[i] = cmd
	}

	procs := make([]*job.Process, len(cmds))
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			closeAll(pipesToClose)
			return 0, fmt.Errorf("%s: %w", p.stages[i][0], err)
		}
		procs[i] = job.NewForkedProcess(cmd.Process.Pid, strings.Join(p.stages[i], " "))
	}
	// Each pipe endpoint is now owned by exactly one already-started
	// child; the parent holds no further use for either end.
	closeAll(pipesToClose)

	j := job.NewJob(procs, false)
	if err := s.jobs.SetActive(j); err != nil {
		return 0, err
	}
	return s.jobs.AddJob(!p.background)
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// resolveJobNumber parses a job-control argument such as "%2", "2", "%+"
// (current) or "%-" (previous). An empty argument means "current".
func (s *Shell) resolveJobNumber(arg string) (int, error) {
	arg = strings.TrimPrefix(arg, "%")
	switch arg {
	case "", "+":
		if n := s.jobs.Current(); n != 0 {
			return n, nil
		}
		return 0, fmt.Errorf("no current job")
	case "-":
		if n := s.jobs.Previous(); n != 0 {
			return n, nil
		}
		return 0, fmt.Errorf("no previous job")
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, fmt.Errorf("invalid job number: %q", arg)
		}
		return n, nil
	}
}

// notifyBackgroundStart prints the bash-style "[n] pid" banner used when a
// pipeline is launched in the background; it is not one of the POSIX
// status formats the printer produces, since no status is known for a job
// that has only just started.
func (s *Shell) notifyBackgroundStart(w io.Writer, n int, j *job.Job) {
	fmt.Fprintf(w, "[%d] %d\n", n, j.Processes[len(j.Processes)-1].PID)
}
