package mousecape

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decode parses a Mousecape .cape XML property list from r, using a
// streaming, token-at-a-time traversal (encoding/xml.Decoder.Token) rather
// than unmarshaling into a generic tree: the root dict's scalar keys are
// read directly, and the "Cursors" dict's children are recognized by
// position (the dict immediately preceded by a <key>Cursors</key> sibling)
// and decoded one cursor at a time as they stream past.
func Decode(r io.Reader) (Theme, error) {
	dec := xml.NewDecoder(r)
	p := &plistParser{dec: dec}

	if err := p.skipToRootDict(); err != nil {
		return Theme{}, err
	}

	var t Theme
	if err := p.readRootDict(&t); err != nil {
		return Theme{}, err
	}
	return t, nil
}

type plistParser struct {
	dec *xml.Decoder
}

// skipToRootDict advances past <?xml?>, <!DOCTYPE>, and <plist> to the
// opening <dict> tag.
func (p *plistParser) skipToRootDict() error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return fmt.Errorf("%w: no root dict found", ErrNotPlist)
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local == "plist" {
				continue
			}
			if se.Name.Local == "dict" {
				return nil
			}
			return fmt.Errorf("%w: unexpected root element %q", ErrNotPlist, se.Name.Local)
		}
	}
}

// readRootDict consumes key/value pairs until the matching </dict>,
// populating known theme fields and dispatching "Cursors" to readCursors.
func (p *plistParser) readRootDict(t *Theme) error {
	for {
		key, done, err := p.nextKey()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		switch key {
		case "Author":
			t.Author, err = p.readString()
		case "HiDPI":
			t.HiDPI, err = p.readBool()
		case "Identifier":
			t.Identifier, err = p.readString()
		case "Name":
			t.Name, err = p.readString()
		case "Version":
			t.Version, err = p.readReal()
		case "Cursors":
			t.Cursors, err = p.readCursors()
		default:
			err = p.skipValue()
		}
		if err != nil {
			return err
		}
	}
}

// readCursors expects the value of the "Cursors" key to be a dict whose
// own keys are cursor names and whose values are per-cursor dicts.
func (p *plistParser) readCursors() ([]Cursor, error) {
	if err := p.expectStart("dict"); err != nil {
		return nil, err
	}
	var cursors []Cursor
	for {
		name, done, err := p.nextKey()
		if err != nil {
			return nil, err
		}
		if done {
			return cursors, nil
		}
		c, err := p.readCursor(name)
		if err != nil {
			return nil, err
		}
		cursors = append(cursors, c)
	}
}

func (p *plistParser) readCursor(name string) (Cursor, error) {
	c := Cursor{Name: name}
	if err := p.expectStart("dict"); err != nil {
		return c, err
	}
	for {
		key, done, err := p.nextKey()
		if err != nil {
			return c, err
		}
		if done {
			return c, nil
		}
		switch key {
		case "PointsWide":
			c.PointsWide, err = p.readReal()
		case "PointsHigh":
			c.PointsHigh, err = p.readReal()
		case "HotSpotX":
			c.HotSpotX, err = p.readReal()
		case "HotSpotY":
			c.HotSpotY, err = p.readReal()
		case "FrameCount":
			var n float64
			n, err = p.readReal()
			c.FrameCount = int(n)
		case "FrameDuration":
			c.FrameDuration, err = p.readReal()
		case "Representations":
			c.Representations, err = p.readDataArray()
		default:
			err = p.skipValue()
		}
		if err != nil {
			return c, err
		}
	}
}

func (p *plistParser) readDataArray() ([][]byte, error) {
	if err := p.expectStart("array"); err != nil {
		return nil, err
	}
	var out [][]byte
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case xml.StartElement:
			if v.Name.Local != "data" {
				if err := p.skipElement(v); err != nil {
					return nil, err
				}
				continue
			}
			text, err := p.readCharData()
			if err != nil {
				return nil, err
			}
			raw, err := base64.StdEncoding.DecodeString(stripWhitespace(text))
			if err != nil {
				return nil, fmt.Errorf("mousecape: decoding <data>: %w", err)
			}
			out = append(out, raw)
		case xml.EndElement:
			return out, nil
		}
	}
}

// nextKey reads the next <key> element's text, or reports done=true when
// the enclosing dict's </dict> is reached.
func (p *plistParser) nextKey() (key string, done bool, err error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", false, err
		}
		switch v := tok.(type) {
		case xml.StartElement:
			if v.Name.Local == "key" {
				text, err := p.readCharData()
				return text, false, err
			}
			return "", false, fmt.Errorf("%w: expected <key>, got <%s>", ErrNotPlist, v.Name.Local)
		case xml.EndElement:
			if v.Name.Local == "dict" {
				return "", true, nil
			}
		}
	}
}

// valueToken returns the next token, skipping the whitespace-only character
// data that separates elements in an indented plist.
func (p *plistParser) valueToken() (xml.Token, error) {
	for {
		tok, err := p.dec.Token()
		if cd, ok := tok.(xml.CharData); ok && err == nil && strings.TrimSpace(string(cd)) == "" {
			continue
		}
		return tok, err
	}
}

func (p *plistParser) expectStart(name string) error {
	tok, err := p.valueToken()
	if err != nil {
		return err
	}
	se, ok := tok.(xml.StartElement)
	if !ok || se.Name.Local != name {
		return fmt.Errorf("%w: expected <%s>", ErrNotPlist, name)
	}
	return nil
}

func (p *plistParser) readString() (string, error) {
	if err := p.expectStart("string"); err != nil {
		return "", err
	}
	return p.readCharData()
}

func (p *plistParser) readReal() (float64, error) {
	tok, err := p.valueToken()
	if err != nil {
		return 0, err
	}
	se, ok := tok.(xml.StartElement)
	if !ok || (se.Name.Local != "real" && se.Name.Local != "integer") {
		return 0, fmt.Errorf("%w: expected <real> or <integer>", ErrNotPlist)
	}
	text, err := p.readCharData()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}

func (p *plistParser) readBool() (bool, error) {
	tok, err := p.valueToken()
	if err != nil {
		return false, err
	}
	se, ok := tok.(xml.StartElement)
	if !ok {
		return false, fmt.Errorf("%w: expected bool element", ErrNotPlist)
	}
	switch se.Name.Local {
	case "true":
		return true, p.expectSelfEnd(se)
	case "false":
		return false, p.expectSelfEnd(se)
	}
	return false, fmt.Errorf("%w: unexpected bool element <%s>", ErrNotPlist, se.Name.Local)
}

func (p *plistParser) expectSelfEnd(se xml.StartElement) error {
	tok, err := p.dec.Token()
	if err != nil {
		return err
	}
	if end, ok := tok.(xml.EndElement); ok && end.Name.Local == se.Name.Local {
		return nil
	}
	return fmt.Errorf("%w: malformed <%s>", ErrNotPlist, se.Name.Local)
}

// readCharData accumulates character data until the enclosing element ends.
func (p *plistParser) readCharData() (string, error) {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", err
		}
		switch v := tok.(type) {
		case xml.CharData:
			sb.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return sb.String(), nil
			}
			depth--
		}
	}
}

// skipValue discards one plist value element, used for keys this reader
// does not need.
func (p *plistParser) skipValue() error {
	tok, err := p.valueToken()
	if err != nil {
		return err
	}
	se, ok := tok.(xml.StartElement)
	if !ok {
		return fmt.Errorf("%w: expected a value element", ErrNotPlist)
	}
	return p.skipElement(se)
}

func (p *plistParser) skipElement(se xml.StartElement) error {
	depth := 1
	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func stripWhitespace(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
