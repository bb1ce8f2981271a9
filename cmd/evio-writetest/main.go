// Command evio-writetest writes a run of fixed-size events to an evio
// file and reports basic throughput, as a thin external collaborator
// for exercising the writer package end to end. It is not part of the
// core library.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jlab-evio/evio/writer"
)

const (
	exitOK       = 0
	exitArgError = 1
	exitIOError  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("evio-writetest", flag.ContinueOnError)
	out := fs.String("o", "", "output file path (required)")
	totalBytes := fs.Int64("s", 0, "total bytes to write across all events (required unless -n is set)")
	eventBytes := fs.Int("b", 4096, "size in bytes of each event")
	repeat := fs.Int("n", 0, "number of events to write; overrides -s if set")
	sync := fs.Bool("sync", false, "fsync the output file before closing")
	debug := fs.Bool("debug", false, "log per-event progress")

	if err := fs.Parse(args); err != nil {
		return exitArgError
	}
	if *out == "" || (*totalBytes <= 0 && *repeat <= 0) || *eventBytes <= 0 {
		fmt.Fprintln(os.Stderr, "usage: evio-writetest -o path (-s total_bytes | -n repeat) [-b event_bytes] [--sync] [--debug]")
		return exitArgError
	}

	n := *repeat
	if n <= 0 {
		n = int(*totalBytes / int64(*eventBytes))
		if n == 0 {
			n = 1
		}
	}

	w, err := writer.New(writer.WithBaseName(*out))
	if err != nil {
		log.Printf("evio-writetest: opening writer: %v", err)
		return exitIOError
	}

	event := make([]byte, *eventBytes)
	start := time.Now()

	for i := 0; i < n; i++ {
		if err := w.AddEvent(event); err != nil {
			log.Printf("evio-writetest: writing event %d: %v", i, err)
			return exitIOError
		}
		if *debug {
			log.Printf("evio-writetest: wrote event %d/%d", i+1, n)
		}
	}

	if *sync {
		if err := w.Sync(); err != nil {
			log.Printf("evio-writetest: fsync: %v", err)
			return exitIOError
		}
	}

	if err := w.Close(); err != nil {
		log.Printf("evio-writetest: closing writer: %v", err)
		return exitIOError
	}

	elapsed := time.Since(start)
	log.Printf("evio-writetest: wrote %d events (%d bytes each) in %s", n, *eventBytes, elapsed)

	return exitOK
}
