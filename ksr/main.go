// Command ksr is the point of sale of a small shop: catalog, cash register,
// sales history and dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/kasir/cmd"
	"github.com/google/subcommands"
	_ "time/tzdata"
)

func main() {
	name := path.Base(os.Args[0])
	cmd.Completion(flag.CommandLine).Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// unknown commands may be extensions
	if sub := flag.Arg(0); sub != "" && !cmd.Has(sub) && sub != "help" && sub != "flags" && sub != "commands" {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
