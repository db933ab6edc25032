package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"meinsql/repl"
	"meinsql/table"
)

func main() {
	os.Exit(run())
}

func run() int {
	noColor := pflag.Bool("no-color", false, "disable colorized diagnostics")
	pflag.Parse()

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "must provide a database filename")
		return 1
	}
	filename := pflag.Arg(0)

	tbl, err := table.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open database: %v\n", err)
		return 1
	}

	cfg := repl.Config{
		NoColor: *noColor,
		Out:     os.Stdout,
		In:      os.Stdin,
	}
	replErr := repl.Run(cfg, tbl)

	if err := tbl.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "could not close database: %v\n", err)
		return 1
	}
	if replErr != nil {
		fmt.Fprintf(os.Stderr, "repl error: %v\n", replErr)
		return 1
	}
	return 0
}
