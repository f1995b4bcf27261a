// Package shell drives the job-control core (myshell/internal/job): it
// reads lines, forks pipelines, and dispatches the POSIX job builtins
// (jobs, fg, bg, wait, disown) into the core's table, printer, and
// blocking waiter.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"myshell/internal/config"
	"myshell/internal/history"
	"myshell/internal/job"
	pluginpkg "myshell/internal/plugin"
	"myshell/internal/sigctl"
)

// Shell is one interactive session: one job table, one signal controller,
// one history, one line editor.
type Shell struct {
	config  *config.Config
	history *history.History
	plugins []pluginpkg.Plugin

	jobs    *job.Table
	signals *sigctl.Controller

	reader    *readline.Instance
	sessionID uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a shell from cfg. The returned Shell owns a job table seeded
// with cfg's termsig offset and an stderr-reporting error sink, and a
// signal controller listening for SIGCHLD/SIGHUP for the lifetime of the
// process.
func New(cfg *config.Config) (*Shell, error) {
	hist, err := history.New(cfg.HistoryLogFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing history: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: cfg.HistoryFile,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing readline: %w", err)
	}

	sessionID := uuid.New()
	signals := sigctl.New()
	ctx, cancel := context.WithCancel(context.Background())

	errorSink := func(err error) {
		fmt.Fprintf(os.Stderr, "myshell[%s]: %v\n", sessionID, err)
	}

	return &Shell{
		config:  cfg,
		history: hist,
		jobs: job.New(
			job.WithErrorSink(errorSink),
			job.WithTermsigOffset(cfg.TermsigOffset),
		),
		signals:   signals,
		reader:    rl,
		sessionID: sessionID,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Close releases the readline instance and stops signal delivery.
func (s *Shell) Close() {
	s.cancel()
	s.signals.Close()
	_ = s.reader.Close()
}

// Run is the REPL: read a line, reap and announce any background jobs
// that finished since the last prompt, dispatch it, repeat until EOF,
// interrupt-with-empty-line, or SIGHUP.
func (s *Shell) Run() {
	for {
		s.jobs.DoWait()
		s.announceFinishedBackgroundJobs()

		select {
		case <-s.signals.HUP():
			return
		default:
		}

		line, err := s.reader.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		status := 0
		if err := s.Execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = 1
		}
		s.history.Add(line, status)
	}
}

// Execute dispatches one input line: builtins first, then an external
// pipeline.
func (s *Shell) Execute(input string) error {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	if ok, err := s.executeBuiltin(fields); ok {
		return err
	}
	if ok, err := s.executePlugin(fields); ok {
		return err
	}
	return s.runExternal(input)
}

// LoadPlugin opens a Go plugin (built with -buildmode=plugin, such as
// plugins/examples) and registers it, making its Name() available as a
// command that runs ahead of external pipeline dispatch.
func (s *Shell) LoadPlugin(path string) error {
	p, err := pluginpkg.Load(path)
	if err != nil {
		return err
	}
	s.plugins = append(s.plugins, p)
	return nil
}

// executePlugin dispatches to a loaded plugin whose Name() matches the
// command word, if any, handing it a snapshot of the current job table so
// a plugin can report or act on job-control state without importing
// internal/job itself.
func (s *Shell) executePlugin(args []string) (bool, error) {
	for _, p := range s.plugins {
		if p.Name() == args[0] {
			ctx := pluginpkg.Context{
				SessionID:      s.sessionID.String(),
				StoppedJobs:    s.jobs.StoppedCount(),
				TotalJobs:      s.jobs.Count(),
				PosixlyCorrect: s.config.PosixlyCorrect,
			}
			ctx.RunningJobs = ctx.TotalJobs - ctx.StoppedJobs
			return true, p.Execute(args[1:], ctx)
		}
	}
	return false, nil
}

// runExternal parses input as a (possibly backgrounded, possibly piped)
// pipeline, starts it, and either waits for it in the foreground or
// reports its job number immediately if backgrounded.
func (s *Shell) runExternal(input string) error {
	p, err := parsePipeline(input)
	if err != nil {
		return err
	}

	n, err := s.startPipeline(p)
	if err != nil {
		return err
	}

	if p.background {
		j, _ := s.jobs.Get(n)
		s.notifyBackgroundStart(os.Stdout, n, j)
		return nil
	}

	if err := s.jobs.WaitForJob(s.ctx, s.signals, n, true); err != nil {
		return err
	}

	j, ok := s.jobs.Get(n)
	if !ok {
		return nil
	}
	if j.State == job.JobStopped {
		return s.jobs.PrintJobStatus(n, false, false, s.config.PosixlyCorrect, sigctl.SignalName, os.Stdout)
	}
	// A foreground job that ran to completion isn't reported the way a
	// background job is; reclaim its slot directly rather than through
	// the printer.
	return s.jobs.Remove(n)
}

// announceFinishedBackgroundJobs prints (and reclaims) every job whose
// status has changed since it was last reported, e.g.
// "[1] + Done                 sleep 10", just before the next prompt.
func (s *Shell) announceFinishedBackgroundJobs() {
	_ = s.jobs.PrintJobStatus(job.All, true, false, s.config.PosixlyCorrect, sigctl.SignalName, os.Stdout)
}
