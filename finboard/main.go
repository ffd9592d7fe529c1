package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/ewallis/finboard/cmd"
)

func main() {
	// Shell completion, a no-op outside a completion request.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"serve":          {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"accounts":       {},
			"add-account":    {},
			"delete-account": {},
			"check":          {},
			"tx":             {},
			"revert":         {},
			"transactions":   {},
			"holdings":       {},
			"add-holding":    {},
			"sync":           {},
			"fetch":          {},
			"advise":         {},
			"demo":           {},
		},
		Flags: map[string]complete.Predictor{"config": predict.Files("*.yaml")},
	}
	completion.Complete("finboard")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
