package main

import (
	"fmt"

	"myshell/internal/plugin"
)

// ExamplePlugin demonstrates the plugin.Plugin contract by reporting the
// job-control snapshot it was handed rather than ignoring it.
type ExamplePlugin struct{}

func (p *ExamplePlugin) Name() string {
	return "example"
}

func (p *ExamplePlugin) Execute(args []string, ctx plugin.Context) error {
	fmt.Printf("example: session %s: %d job(s), %d stopped (args: %v)\n",
		ctx.SessionID, ctx.TotalJobs, ctx.StoppedJobs, args)
	return nil
}

var Plugin ExamplePlugin
