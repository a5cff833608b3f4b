package mousecape

import (
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strconv"
)

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
`

const plistFooter = "</plist>\n"

// plistDict renders an ordered key/value sequence as a <dict> element,
// writing keys in the order appended rather than relying on map iteration.
type plistDict struct {
	keys []string
	vals []func(w io.Writer, indent string) error
}

func (d *plistDict) addString(key, val string) {
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, func(w io.Writer, indent string) error {
		_, err := fmt.Fprintf(w, "%s<string>%s</string>\n", indent, escapeXML(val))
		return err
	})
}

func (d *plistDict) addBool(key string, val bool) {
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, func(w io.Writer, indent string) error {
		tag := "false"
		if val {
			tag = "true"
		}
		_, err := fmt.Fprintf(w, "%s<%s/>\n", indent, tag)
		return err
	})
}

func (d *plistDict) addReal(key string, val float64) {
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, func(w io.Writer, indent string) error {
		_, err := fmt.Fprintf(w, "%s<real>%s</real>\n", indent, strconv.FormatFloat(val, 'g', -1, 64))
		return err
	})
}

func (d *plistDict) addInt(key string, val int) {
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, func(w io.Writer, indent string) error {
		_, err := fmt.Fprintf(w, "%s<integer>%d</integer>\n", indent, val)
		return err
	})
}

func (d *plistDict) addArray(key string, items []func(w io.Writer, indent string) error) {
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, func(w io.Writer, indent string) error {
		if _, err := fmt.Fprintf(w, "%s<array>\n", indent); err != nil {
			return err
		}
		for _, item := range items {
			if err := item(w, indent+"\t"); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s</array>\n", indent)
		return err
	})
}

func (d *plistDict) addDict(key string, inner *plistDict) {
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, func(w io.Writer, indent string) error {
		return inner.write(w, indent)
	})
}

func (d *plistDict) write(w io.Writer, indent string) error {
	if _, err := fmt.Fprintf(w, "%s<dict>\n", indent); err != nil {
		return err
	}
	for i, key := range d.keys {
		if _, err := fmt.Fprintf(w, "%s\t<key>%s</key>\n", indent, escapeXML(key)); err != nil {
			return err
		}
		if err := d.vals[i](w, indent+"\t"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</dict>\n", indent)
	return err
}

func escapeXML(s string) string {
	var out []byte
	for _, r := range s {
		switch r {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			out = append(out, "&quot;"...)
		case '\'':
			out = append(out, "&apos;"...)
		default:
			out = append(out, string(r)...)
		}
	}
	return string(out)
}

func dataElement(data []byte) func(w io.Writer, indent string) error {
	return func(w io.Writer, indent string) error {
		encoded := base64.StdEncoding.EncodeToString(data)
		if _, err := fmt.Fprintf(w, "%s<data>\n", indent); err != nil {
			return err
		}
		for i := 0; i < len(encoded); i += 68 {
			end := i + 68
			if end > len(encoded) {
				end = len(encoded)
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, encoded[i:end]); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s</data>\n", indent)
		return err
	}
}

// Encode writes t as a Mousecape .cape XML property list to w, with
// lexically ordered keys at every dict level and cursors sorted by name.
func Encode(w io.Writer, t Theme) error {
	root := &plistDict{}
	root.addString("Author", t.Author)
	root.addBool("HiDPI", t.HiDPI)
	root.addString("Identifier", t.Identifier)
	root.addString("Name", t.Name)
	root.addReal("Version", t.Version)

	cursors := make([]Cursor, len(t.Cursors))
	copy(cursors, t.Cursors)
	sort.Slice(cursors, func(i, j int) bool { return cursors[i].Name < cursors[j].Name })

	cursorsDict := &plistDict{}
	for _, c := range cursors {
		if err := validateCursor(c); err != nil {
			return fmt.Errorf("mousecape: cursor %q: %w", c.Name, err)
		}
		inner := &plistDict{}
		inner.addInt("FrameCount", c.FrameCount)
		inner.addReal("FrameDuration", c.FrameDuration)
		inner.addReal("HotSpotX", c.HotSpotX)
		inner.addReal("HotSpotY", c.HotSpotY)
		inner.addReal("PointsHigh", c.PointsHigh)
		inner.addReal("PointsWide", c.PointsWide)

		reps := make([]func(w io.Writer, indent string) error, len(c.Representations))
		for i, rep := range c.Representations {
			reps[i] = dataElement(rep)
		}
		inner.addArray("Representations", reps)

		cursorsDict.addDict(c.Name, inner)
	}
	root.addDict("Cursors", cursorsDict)

	if _, err := io.WriteString(w, plistHeader); err != nil {
		return err
	}
	if err := root.write(w, ""); err != nil {
		return err
	}
	_, err := io.WriteString(w, plistFooter)
	return err
}

func validateCursor(c Cursor) error {
	if c.FrameCount <= 0 {
		return fmt.Errorf("%w: FrameCount must be positive", ErrMissingKey)
	}
	if len(c.Representations) == 0 {
		return fmt.Errorf("%w: no Representations", ErrMissingKey)
	}
	return nil
}
