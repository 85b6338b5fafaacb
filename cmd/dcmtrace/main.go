package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"

	dt "github.com/b71729/dcmtrace"
)

/*
===============================================================================
    dcmtrace: trace the elements of a DICOM file
===============================================================================
*/

func usage(w io.Writer, name string) {
	fmt.Fprintf(w, "usage: %s <file.dcm> (further arguments are ignored)\n", name)
	fmt.Fprintln(w, "environment:")
	fmt.Fprintln(w, "  DCMTRACE_LOGLEVEL        debug / info / warn / error / fatal / none (default info)")
	fmt.Fprintln(w, "  DCMTRACE_LOGFORMAT       console / json (default console)")
	fmt.Fprintf(w, "  DCMTRACE_IMAGEPATH       P5 output path (default %s)\n", dt.DefaultImagePath)
	fmt.Fprintln(w, "  DCMTRACE_EXTRACTPIXELS   write the first Pixel Data as an image (default true)")
	fmt.Fprintf(w, "  DCMTRACE_MAXVALUELENGTH  skip values longer than this (default %d)\n", dt.DefaultMaxValueLength)
	fmt.Fprintln(w, "  DCMTRACE_ANNOTATE        append dictionary keywords (default false)")
	fmt.Fprintln(w, "  DCMTRACE_METRICSFILE     write walk statistics in Prometheus text format")
}

// run is main without the os.Exit, returning the exit code
func run(args []string, stdout io.Writer, stderr zapcore.WriteSyncer) int {
	name := filepath.Base(args[0])
	if len(args) < 2 || args[1] == "--help" || args[1] == "-h" {
		usage(stderr, name)
		return 1
	}

	cfg, err := dt.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := dt.SetLoggingLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	dt.OverrideConfig(cfg)
	log := dt.NewLogger(cfg.LogFormat, stderr)
	defer log.Sync()
	dt.SetLogger(log)
	if len(args) > 2 {
		dt.Debugf("ignoring %d extra argument(s)", len(args)-2)
	}

	parser := dt.NewParser(stdout, cfg)
	res, err := parser.FromFile(args[1])
	if err != nil {
		var cannotOpen *dt.CannotOpen
		if errors.As(err, &cannotOpen) {
			fmt.Fprintln(stderr, "cannot open file")
			dt.Debugf("%v", err)
			return 1
		}
		dt.Errorf("writing trace: %v", err)
		return 1
	}
	dt.Debugf("walk finished: %d lines, %s, stopped at offset %d, image written: %t",
		res.TraceLines, res.TransferSyntax, res.EndOffset, res.ImageWritten)

	if cfg.MetricsFile != "" {
		if err := parser.Stats().WriteTextfile(cfg.MetricsFile); err != nil {
			dt.Warnf("writing metrics to %s: %v", cfg.MetricsFile, err)
			return 0
		}
		dt.Infof("wrote metrics to %s", cfg.MetricsFile)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args, os.Stdout, zapcore.Lock(os.Stderr)))
}
