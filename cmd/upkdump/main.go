package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/upkg"
	"github.com/wippyai/upkg/errors"
	"github.com/wippyai/upkg/upk"
)

type options struct {
	format      string
	table       string
	lenient     bool
	validate    bool
	verbose     bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.format, "format", formatYAML, "Output format (yaml, summary)")
	flag.StringVar(&o.table, "table", tableImports, "Table to dump (imports, exports, names, generations, all)")
	flag.BoolVar(&o.lenient, "lenient", false, "Decode even if the package tag does not match")
	flag.BoolVar(&o.validate, "validate", false, "Check object references and export bounds after decoding")
	flag.BoolVar(&o.verbose, "v", false, "Debug logging to stderr")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: upkdump [flags] <file>")
		fmt.Fprintln(os.Stderr, "       upkdump -table all -format summary <file>")
		fmt.Fprintln(os.Stderr, "       upkdump -i <file>  (interactive mode)")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	log := newLogger(o.verbose)
	defer func() { _ = log.Sync() }()
	upk.SetLogger(log)

	if o.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(path, o.parseOptions()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Stdout, path, o); err != nil {
		log.Debug("dump failed", zap.String("file", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (o options) parseOptions() []upk.Option {
	var opts []upk.Option
	if o.lenient {
		opts = append(opts, upk.WithoutTagCheck())
	}
	return opts
}

func run(w io.Writer, path string, o options) error {
	if err := checkOutput(o.format, o.table); err != nil {
		return err
	}

	open := upkg.Open
	if o.validate {
		open = upkg.OpenValidate
	}
	p, err := open(path, o.parseOptions()...)
	if err != nil {
		return err
	}

	switch o.format {
	case formatSummary:
		return writeSummary(w, p, o.table)
	default:
		return writeYAML(w, p, o.table)
	}
}

func checkOutput(format, table string) error {
	switch format {
	case formatYAML, formatSummary:
	default:
		return errors.InvalidInput(errors.PhaseOutput, fmt.Sprintf("unknown format %q", format))
	}
	switch table {
	case tableImports, tableExports, tableNames, tableGenerations, tableAll:
	default:
		return errors.InvalidInput(errors.PhaseOutput, fmt.Sprintf("unknown table %q", table))
	}
	return nil
}
