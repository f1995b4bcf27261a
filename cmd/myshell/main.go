// Command myshell is an interactive POSIX-flavored shell built around the
// job-control core in myshell/internal/job.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"myshell/internal/config"
	"myshell/internal/shell"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		posix      bool
		plugins    []string
	)

	cmd := &cobra.Command{
		Use:   "myshell",
		Short: "An interactive shell with POSIX job control",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if posix {
				cfg.PosixlyCorrect = true
			}

			s, err := shell.New(cfg)
			if err != nil {
				return fmt.Errorf("initializing shell: %w", err)
			}
			defer s.Close()

			for _, p := range plugins {
				if err := s.LoadPlugin(p); err != nil {
					fmt.Fprintf(os.Stderr, "myshell: plugin %s: %v\n", p, err)
				}
			}

			s.Run()
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yml", "path to the shell's YAML config file")
	cmd.Flags().BoolVar(&posix, "posix", false, "suppress per-process status strings on verbose job continuation lines")
	cmd.Flags().StringSliceVar(&plugins, "plugin", nil, "path to a Go plugin (-buildmode=plugin) to load at startup")

	return cmd
}
