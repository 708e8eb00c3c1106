// Package props serializes a string mapping to and from the line-oriented
// properties text format (`key=value`, one entry per line, standard escaping
// for separators, whitespace and non-ASCII). It wraps magiconair/properties;
// values are opaque, so ${ref} expansion is disabled on both directions.
package props

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/magiconair/properties"
)

// Encoding selects the character encoding of the serialized form.
type Encoding int

const (
	// UTF8 writes values verbatim in UTF-8. The default.
	UTF8 Encoding = iota
	// Latin1 is ISO-8859-1 with \uXXXX escapes for anything outside it.
	Latin1
)

// ParseEncoding maps a config-file encoding name to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "iso-8859-1", "latin1":
		return Latin1, nil
	default:
		return UTF8, fmt.Errorf("unsupported encoding %q", name)
	}
}

func (e Encoding) String() string {
	if e == Latin1 {
		return "iso-8859-1"
	}
	return "utf-8"
}

func (e Encoding) lib() properties.Encoding {
	if e == Latin1 {
		return properties.ISO_8859_1
	}
	return properties.UTF8
}

// Marshal serializes the mapping, keys sorted for stable output. A non-empty
// comments block is written first, one `# ` line per input line.
func Marshal(m map[string]string, comments string, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if comments != "" {
		for _, line := range strings.Split(comments, "\n") {
			buf.WriteString("# ")
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}

	p := properties.NewProperties()
	p.DisableExpansion = true

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, _, err := p.Set(k, m[k]); err != nil {
			return nil, fmt.Errorf("setting %q: %w", k, err)
		}
	}

	if _, err := p.Write(&buf, enc.lib()); err != nil {
		return nil, fmt.Errorf("serializing properties: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses serialized properties text back into a mapping.
// Comment and blank lines are skipped by the format itself.
func Unmarshal(data []byte, enc Encoding) (map[string]string, error) {
	l := &properties.Loader{Encoding: enc.lib(), DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing properties: %w", err)
	}
	return p.Map(), nil
}
