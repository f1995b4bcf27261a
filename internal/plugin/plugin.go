package plugin

import (
	"fmt"
	"plugin"
)

// Context is the job-control state a plugin is handed on every invocation:
// enough to let a plugin built for this shell report or act on job counts
// without reaching into internal/job directly (plugins only ever see the
// stable, exported surface a Go plugin binary was compiled against).
type Context struct {
	SessionID      string
	RunningJobs    int
	StoppedJobs    int
	TotalJobs      int
	PosixlyCorrect bool
}

// Plugin is a command a shell binary loads dynamically via -buildmode=plugin.
// Execute receives the calling shell's job-control snapshot alongside its
// arguments, the way a builtin would query internal/job.Table directly.
type Plugin interface {
	Name() string
	Execute(args []string, ctx Context) error
}

// Load opens the plugin at path (built with -buildmode=plugin) and looks
// up its exported "Plugin" symbol.
func Load(path string) (Plugin, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin: %w", err)
	}

	symPlugin, err := p.Lookup("Plugin")
	if err != nil {
		return nil, fmt.Errorf("plugin does not export 'Plugin' symbol: %w", err)
	}

	plug, ok := symPlugin.(Plugin)
	if !ok {
		return nil, fmt.Errorf("plugin does not implement Plugin interface")
	}

	return plug, nil
}
