// Command bibata builds platform cursor themes from pre-rendered bitmaps
// or SVG sources.
//
// Usage:
//
//	bibata svgsize <target-size> <viewbox-size> <svg-dir>
//	bibata wincur [--all-cursors] <bitmaps-dir>
//	bibata render [<base-path>] [--standard-sizes] [--windows-cursors]
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("cmd", "bibata").Logger()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "svgsize":
		err = runSvgsize(os.Args[2:])
	case "wincur":
		err = runWincur(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "bibata: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		if isArgError(err) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  bibata svgsize <target-size> <viewbox-size> <svg-dir>
  bibata wincur [--all-cursors] <bitmaps-dir>
  bibata render [<base-path>] [--standard-sizes] [--windows-cursors]

Run "bibata <command> -h" for command-specific options.
`)
}

// argError marks a failure as an argument/usage error (exit code 1) rather
// than an I/O or data-format error (exit code 2).
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

func isArgError(err error) bool {
	_, ok := err.(*argError)
	return ok
}

func argErrorf(format string, a ...interface{}) error {
	return &argError{fmt.Errorf(format, a...)}
}
