package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var (
	widthAttrRe   = regexp.MustCompile(`(<svg[^>]*\s)width="[^"]*"`)
	heightAttrRe  = regexp.MustCompile(`(<svg[^>]*\s)height="[^"]*"`)
	viewBoxAttrRe = regexp.MustCompile(`(<svg[^>]*\s)viewBox="[^"]*"`)
)

// runSvgsize rewrites every *.svg file under svgDir so its root <svg>
// element declares width/height = targetSize and viewBox = "0 0
// viewboxSize viewboxSize".
func runSvgsize(args []string) error {
	fs := flag.NewFlagSet("svgsize", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return argErrorf("svgsize: usage: bibata svgsize <target-size> <viewbox-size> <svg-dir>")
	}

	targetSize, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return argErrorf("svgsize: invalid target-size %q: %v", fs.Arg(0), err)
	}
	viewboxSize, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return argErrorf("svgsize: invalid viewbox-size %q: %v", fs.Arg(1), err)
	}
	svgDir := fs.Arg(2)

	entries, err := os.ReadDir(svgDir)
	if err != nil {
		return argErrorf("svgsize: %v", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".svg" {
			continue
		}
		path := filepath.Join(svgDir, e.Name())
		if err := resizeSVGFile(path, targetSize, viewboxSize); err != nil {
			log.Error().Err(err).Str("file", path).Msg("svgsize: skipping file")
			continue
		}
	}
	return nil
}

func resizeSVGFile(path string, targetSize, viewboxSize int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	widthVal := fmt.Sprintf(`width="%d"`, targetSize)
	heightVal := fmt.Sprintf(`height="%d"`, targetSize)
	viewBoxVal := fmt.Sprintf(`viewBox="0 0 %d %d"`, viewboxSize, viewboxSize)

	out := widthAttrRe.ReplaceAll(data, []byte("${1}"+widthVal))
	out = heightAttrRe.ReplaceAll(out, []byte("${1}"+heightVal))
	out = viewBoxAttrRe.ReplaceAll(out, []byte("${1}"+viewBoxVal))

	return os.WriteFile(path, out, 0o644)
}
