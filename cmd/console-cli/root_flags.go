package main

import (
	"flag"
	"fmt"
	"io"
)

type rootArgs struct {
	configPath string
	statePath  string
	noPersist  bool
	overrides  []string
}

func parseRootArgs(args []string, output io.Writer) (rootArgs, error) {
	fs := flag.NewFlagSet("console-cli", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	var root rootArgs
	var overrides stringSlice
	fs.StringVar(&root.configPath, "config", "", "Path to config.toml (default ~/.console-cli/config.toml)")
	fs.StringVar(&root.statePath, "state", "", "Path to the preference database (overrides state_path)")
	fs.BoolVar(&root.noPersist, "no-persist", false, "Keep preferences in memory only")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, err
	}
	if fs.NArg() > 0 {
		return rootArgs{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if root.statePath != "" {
		overrides = append(overrides, "state_path="+root.statePath)
	}
	if root.noPersist {
		overrides = append(overrides, "persist=false")
	}
	root.overrides = append([]string{}, overrides...)
	return root, nil
}
