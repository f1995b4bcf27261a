package tests

import (
	"testing"

	"myshell/internal/config"
	"myshell/internal/shell"
)

func TestShellInitialization(t *testing.T) {
	cfg := &config.Config{}
	sh, err := shell.New(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize shell: %v", err)
	}
	if sh == nil {
		t.Fatal("Shell is nil after initialization")
	}
	defer sh.Close()
}

// TestShellJobsBuiltinOnEmptyTable exercises the "jobs" builtin through
// the full driver with no jobs running, the way a freshly started
// interactive session would.
func TestShellJobsBuiltinOnEmptyTable(t *testing.T) {
	cfg := &config.Config{}
	sh, err := shell.New(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize shell: %v", err)
	}
	defer sh.Close()

	if err := sh.Execute("jobs"); err != nil {
		t.Fatalf("jobs on an empty table returned an error: %v", err)
	}
	if err := sh.Execute("jobs -p"); err != nil {
		t.Fatalf("jobs -p on an empty table returned an error: %v", err)
	}
}

// TestShellFgOnMissingJobErrors checks that fg/bg/wait/disown against a
// job number that doesn't exist surface an error instead of panicking.
func TestShellFgOnMissingJobErrors(t *testing.T) {
	cfg := &config.Config{}
	sh, err := shell.New(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize shell: %v", err)
	}
	defer sh.Close()

	for _, cmd := range []string{"fg %1", "bg %1", "wait %1", "disown %1"} {
		if err := sh.Execute(cmd); err == nil {
			t.Errorf("%q against a nonexistent job should have errored", cmd)
		}
	}
}
