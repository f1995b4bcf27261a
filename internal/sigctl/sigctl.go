// Package sigctl implements the signal-subsystem primitives the job
// package's blocking waiter depends on: blocking/unblocking SIGCHLD and
// SIGHUP around a check-then-sleep window, an atomic sleep-until-SIGCHLD,
// and signal-number-to-name lookup.
//
// Go's runtime multiplexes OS signals across threads and delivers them to
// a process-wide channel rather than running a handler on whichever
// thread happened to be interrupted, so a real sigprocmask(SIG_BLOCK, ...)
// per the reference implementation would not mean what it means in C and
// would race with the runtime's own signal-forwarding goroutine. Blocking
// is instead emulated with a mutex-guarded flag: while "blocked", incoming
// SIGHUP is queued instead of forwarded, and SIGCHLD delivery is
// inherently loss-free because signal.Notify's channel is buffered, so no
// wakeup between a caller's check and its sleep is ever dropped.
package sigctl

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Controller owns the SIGCHLD/SIGHUP notification channels for one shell
// process. Callers should construct exactly one and share it.
type Controller struct {
	raw  chan os.Signal
	chld chan struct{}
	hup  chan struct{}

	mu         sync.Mutex
	blocked    bool
	pendingHup bool
}

// New starts listening for SIGCHLD and SIGHUP and returns a Controller.
// Call Close to stop listening.
func New() *Controller {
	c := &Controller{
		raw:  make(chan os.Signal, 8),
		chld: make(chan struct{}, 1),
		hup:  make(chan struct{}, 1),
	}
	signal.Notify(c.raw, syscall.SIGCHLD, syscall.SIGHUP)
	go c.pump()
	return c
}

// Close stops signal delivery to this controller.
func (c *Controller) Close() {
	signal.Stop(c.raw)
}

func (c *Controller) pump() {
	for sig := range c.raw {
		switch sig {
		case syscall.SIGCHLD:
			nonBlockingSend(c.chld)
		case syscall.SIGHUP:
			c.mu.Lock()
			if c.blocked {
				c.pendingHup = true
			} else {
				nonBlockingSend(c.hup)
			}
			c.mu.Unlock()
		}
	}
}

func nonBlockingSend(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// BlockSigchldAndSighup begins queuing SIGHUP instead of forwarding it.
// SIGCHLD is always safe to receive (the channel is buffered), so nothing
// needs to change for it; the name is kept symmetric with
// UnblockSigchldAndSighup and with the reference implementation's pairing.
func (c *Controller) BlockSigchldAndSighup() {
	c.mu.Lock()
	c.blocked = true
	c.mu.Unlock()
}

// UnblockSigchldAndSighup resumes forwarding SIGHUP, delivering any
// SIGHUP that arrived while blocked.
func (c *Controller) UnblockSigchldAndSighup() {
	c.mu.Lock()
	c.blocked = false
	if c.pendingHup {
		c.pendingHup = false
		nonBlockingSend(c.hup)
	}
	c.mu.Unlock()
}

// WaitForSigchld blocks until a SIGCHLD is delivered or ctx is done. After
// a SIGCHLD it invokes onWake (the reaper) before returning, so the reaper
// is re-entered from inside the sleep the way the reference
// implementation's sleep primitive does; if ctx is done first it returns
// without calling onWake.
func (c *Controller) WaitForSigchld(ctx context.Context, onWake func()) {
	select {
	case <-c.chld:
	case <-ctx.Done():
		return
	}
	if onWake != nil {
		onWake()
	}
}

// HUP returns the channel that receives a value for every SIGHUP not
// currently suppressed by BlockSigchldAndSighup, for the driver's
// exit-on-hangup handling.
func (c *Controller) HUP() <-chan struct{} { return c.hup }

// SignalName maps a signal number to its symbolic name without the "SIG"
// prefix (e.g. syscall.SIGTSTP -> "TSTP"), for the "Stopped(SIG%s)" and
// "Killed (SIG%s)" status strings.
func SignalName(signum int) string {
	if name, ok := signalNames[syscall.Signal(signum)]; ok {
		return name
	}
	return syscall.Signal(signum).String()
}

var signalNames = map[syscall.Signal]string{
	syscall.SIGHUP:    "HUP",
	syscall.SIGINT:    "INT",
	syscall.SIGQUIT:   "QUIT",
	syscall.SIGILL:    "ILL",
	syscall.SIGTRAP:   "TRAP",
	syscall.SIGABRT:   "ABRT",
	syscall.SIGBUS:    "BUS",
	syscall.SIGFPE:    "FPE",
	syscall.SIGKILL:   "KILL",
	syscall.SIGUSR1:   "USR1",
	syscall.SIGSEGV:   "SEGV",
	syscall.SIGUSR2:   "USR2",
	syscall.SIGPIPE:   "PIPE",
	syscall.SIGALRM:   "ALRM",
	syscall.SIGTERM:   "TERM",
	syscall.SIGCHLD:   "CHLD",
	syscall.SIGCONT:   "CONT",
	syscall.SIGSTOP:   "STOP",
	syscall.SIGTSTP:   "TSTP",
	syscall.SIGTTIN:   "TTIN",
	syscall.SIGTTOU:   "TTOU",
	syscall.SIGURG:    "URG",
	syscall.SIGXCPU:   "XCPU",
	syscall.SIGXFSZ:   "XFSZ",
	syscall.SIGVTALRM: "VTALRM",
	syscall.SIGPROF:   "PROF",
	syscall.SIGWINCH:  "WINCH",
	syscall.SIGIO:     "IO",
	syscall.SIGSYS:    "SYS",
}
