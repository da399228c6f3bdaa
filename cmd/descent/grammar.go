package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golangsnmp/descent"
)

const grammarUsage = `descent grammar - Print the JSON grammar rules

Usage:
  descent grammar

Rules are listed in definition order. Clauses are tried top to bottom and
the first one that matches wins. Rules ending in -tail are generated
continuations of a repetition.
`

func (c *cli) cmdGrammar(args []string) int {
	fs := flag.NewFlagSet("grammar", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, grammarUsage) }

	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, grammarUsage)
		return exitOK
	}

	fmt.Print(descent.GrammarText())
	return exitOK
}
