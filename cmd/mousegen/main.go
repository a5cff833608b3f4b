// Command mousegen reverses cursor files (XCursor, Windows CUR/ANI,
// Mousecape .cape) into per-frame PNGs plus metadata.
//
// Usage:
//
//	mousegen dump [-d <output-dir>] <cursor-file>...
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bibata/cursorkit/dump"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("cmd", "mousegen").Logger()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = runDump(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "mousegen: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  mousegen dump [-d <output-dir>] <cursor-file>...
`)
}

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	outDir := fs.String("d", ".", "output directory for extracted PNGs and metadata")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "mousegen: dump requires at least one <cursor-file>")
		os.Exit(1)
	}

	dispatcher := dump.NewDispatcher()

	var failures int
	for _, path := range fs.Args() {
		metas, err := dispatcher.Dump(path, *outDir)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("dump: skipping file")
			failures++
			continue
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		metaPath := filepath.Join(*outDir, base+".json")
		if err := dump.WriteMetadata(metaPath, metas); err != nil {
			log.Error().Err(err).Str("file", path).Msg("dump: writing metadata")
			failures++
			continue
		}
		log.Info().Str("file", path).Int("cursors", len(metas)).Msg("dumped")
	}

	if failures > 0 {
		return fmt.Errorf("mousegen: %d file(s) failed", failures)
	}
	return nil
}
