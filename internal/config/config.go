package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config holds the ambient settings the shell driver and job-control core
// read at startup: where to keep history, where "cd" with no argument
// lands, whether POSIX-strict output is required, and the constant added
// to a signal number when it's expressed as an exit status.
type Config struct {
	HistoryFile    string `yaml:"history_file"`
	HistoryLogFile string `yaml:"history_log_file"`
	HomeDir        string `yaml:"home_dir"`
	PosixlyCorrect bool   `yaml:"posixly_correct"`
	TermsigOffset  int    `yaml:"termsig_offset"`
}

// defaultTermsigOffset is the conventional shell value (0x180) chosen so
// signal-derived statuses never collide with exit codes 0-255.
const defaultTermsigOffset = 384

// Load reads a YAML config file and fills in defaults for anything left
// unset. A missing file is not an error: the shell should still start
// with sensible defaults, the same way it falls back to $HOME when
// home_dir is blank.
func Load(file string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, err
	}

	if cfg.HomeDir == "" {
		cfg.HomeDir, err = os.UserHomeDir()
		if err != nil {
			return nil, err
		}
	}

	if cfg.HistoryFile == "" {
		cfg.HistoryFile = filepath.Join(cfg.HomeDir, ".myshell_history")
	}

	if cfg.HistoryLogFile == "" {
		cfg.HistoryLogFile = filepath.Join(cfg.HomeDir, ".myshell_history.log")
	}

	if cfg.TermsigOffset == 0 {
		cfg.TermsigOffset = defaultTermsigOffset
	}

	return cfg, nil
}
