// Command folioctl queries quotes, currencies and portfolio summaries from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	a := newApp(os.Stdout, os.Stderr)
	for _, c := range a.commands() {
		commander.Register(c, "")
	}

	flag.Parse()
	code := commander.Execute(context.Background())
	a.close()
	os.Exit(int(code))
}
