package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

type AppFlags struct {
	GlobalConfigFile string
	Mode             string
	File             string
	OutputDir        string
	Targets          []string
	Clean            bool
}

func ParseFlags() AppFlags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) AppFlags {
	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	modeFlag := fs.String("mode", "", "Run mode: ingest, download, process, upload or report (overrides config file if set)")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	fileFlag := fs.String("file", "", "Input file for process/upload runs. Requires exactly one target.")
	fileFlagAlias := fs.String("f", "", "Alias for -file")

	outputFlag := fs.String("output", "", "Output directory for normalized lists, or for reports in report mode")
	outputFlagAlias := fs.String("o", "", "Alias for -output")

	targetsFlag := fs.String("targets", "", "Comma separated target IDs to run (default: all configured targets)")
	targetsFlagAlias := fs.String("t", "", "Alias for -targets")

	clean := fs.Bool("clean", false, "Remove leftover downloads before the run")

	_ = fs.Parse(args)

	flags := AppFlags{
		GlobalConfigFile: firstNonEmpty(*globalConfigFile, *globalConfigFileAlias),
		Mode:             strings.ToLower(firstNonEmpty(*modeFlag, *modeFlagAlias)),
		File:             firstNonEmpty(*fileFlag, *fileFlagAlias),
		OutputDir:        firstNonEmpty(*outputFlag, *outputFlagAlias),
		Clean:            *clean,
	}

	for _, id := range strings.Split(firstNonEmpty(*targetsFlag, *targetsFlagAlias), ",") {
		if id = strings.TrimSpace(id); id != "" {
			flags.Targets = append(flags.Targets, id)
		}
	}

	return flags
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[FATAL] "+format+"\n", args...)
	os.Exit(1)
}
