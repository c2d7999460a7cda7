package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MacroPower/synclab/internal/cli"
)

const (
	cmdName = "synclab"

	shortDesc = "Concurrency coordination primitives and their checks."
	longDesc  = `synclab drives a set of concurrency coordination primitives with many
goroutines and checks that each one keeps its invariant.

The primitives are a safe counter, a bounded buffer, a start/completion
barrier, lazy initialisation and an atomic snapshot store. Several scenarios
also run a deliberately broken baseline so the failure it demonstrates can be
seen next to the working version.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
