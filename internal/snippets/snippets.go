// Package snippets models editor snippet collections as ordered JSON objects.
//
// A Set maps snippet names to their definitions. Definitions are kept as raw
// JSON and never validated; only the top-level keys matter here, and values
// are re-encoded in canonical form on output. Key order is
// the order in which names first appeared, so a merged file lists the extra
// snippets first and the generated ones after them.
package snippets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned when a document parses as JSON but is not an object.
var ErrNotObject = errors.New("snippet document is not a JSON object")

// Set is an ordered mapping from snippet name to snippet definition.
type Set struct {
	m *orderedmap.OrderedMap[string, json.RawMessage]
}

// New returns an empty Set.
func New() *Set {
	return &Set{m: orderedmap.New[string, json.RawMessage]()}
}

// Parse decodes a JSON object into a Set. A name that appears twice keeps its
// first position and its last definition.
func Parse(data []byte) (*Set, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	s := New()
	if err := json.Unmarshal(data, s.m); err != nil {
		return nil, err
	}
	return s, nil
}

// Len reports the number of snippets in the set.
func (s *Set) Len() int {
	return s.m.Len()
}

// Get returns the definition stored under name.
func (s *Set) Get(name string) (json.RawMessage, bool) {
	return s.m.Get(name)
}

// Has reports whether name is defined.
func (s *Set) Has(name string) bool {
	_, ok := s.m.Get(name)
	return ok
}

// Put stores def under name. An existing name keeps its position.
func (s *Set) Put(name string, def json.RawMessage) {
	s.m.Set(name, def)
}

// Names returns the snippet names in order.
func (s *Set) Names() []string {
	names := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Merge returns the union of base and override. Where both define a name the
// definition from override wins; the comparison is shallow, definitions are
// replaced whole. Neither input is modified.
func Merge(base, override *Set) *Set {
	merged := New()
	for pair := base.m.Oldest(); pair != nil; pair = pair.Next() {
		merged.Put(pair.Key, pair.Value)
	}
	for pair := override.m.Oldest(); pair != nil; pair = pair.Next() {
		merged.Put(pair.Key, pair.Value)
	}
	return merged
}

// Overlap returns the names defined in both a and b, in a's order.
func Overlap(a, b *Set) []string {
	var names []string
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		if b.Has(pair.Key) {
			names = append(names, pair.Key)
		}
	}
	return names
}

// ─── Encoding ────────────────────────────────────────────────────────────────

// Marshal renders s as a JSON object indented by two spaces. Definitions are
// re-encoded rather than copied: string escapes are decoded, so non-ASCII text
// and the characters <, > and & come out as-is, and numbers take their
// canonical form (1.50 becomes 1.5, 1e2 becomes 100.0). The output has no
// trailing newline, so identical sets always produce identical bytes.
func Marshal(s *Set) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')

	first := true
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			compact.WriteByte(',')
		}
		first = false

		appendString(&compact, pair.Key)
		compact.WriteByte(':')

		value := pair.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		if err := appendDefinition(&compact, value); err != nil {
			return nil, fmt.Errorf("encode snippet %q: %w", pair.Key, err)
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func appendDefinition(dst *bytes.Buffer, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := appendValue(dst, dec); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after definition")
	}
	return nil
}

// appendValue copies the next value from dec to dst, keeping object key order.
func appendValue(dst *bytes.Buffer, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		begin, end := byte(v), byte('}')
		if v == '[' {
			end = ']'
		}
		dst.WriteByte(begin)
		for first := true; dec.More(); first = false {
			if !first {
				dst.WriteByte(',')
			}
			if begin == '{' {
				key, err := dec.Token()
				if err != nil {
					return err
				}
				appendString(dst, key.(string))
				dst.WriteByte(':')
			}
			if err := appendValue(dst, dec); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		dst.WriteByte(end)
	case string:
		appendString(dst, v)
	case json.Number:
		n, err := canonicalNumber(v)
		if err != nil {
			return err
		}
		dst.WriteString(n)
	case bool:
		dst.WriteString(strconv.FormatBool(v))
	case nil:
		dst.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %v", tok)
	}
	return nil
}

// appendString quotes s escaping only what JSON requires: quote, backslash
// and control characters. Everything else, including U+2028 and U+2029, is
// written verbatim.
func appendString(dst *bytes.Buffer, s string) {
	dst.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			dst.WriteString(`\"`)
		case '\\':
			dst.WriteString(`\\`)
		case '\n':
			dst.WriteString(`\n`)
		case '\r':
			dst.WriteString(`\r`)
		case '\t':
			dst.WriteString(`\t`)
		case '\b':
			dst.WriteString(`\b`)
		case '\f':
			dst.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(dst, `\u%04x`, r)
				continue
			}
			dst.WriteRune(r)
		}
	}
	dst.WriteByte('"')
}

// canonicalNumber keeps integers exact and prints floats in shortest
// round-trip form: fixed notation with at least one decimal for exponents in
// [-4, 16), scientific notation otherwise.
func canonicalNumber(n json.Number) (string, error) {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		i, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return "", fmt.Errorf("invalid number %s", text)
		}
		return i.String(), nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return "", err
	}

	if exp := decimalExponent(f); exp < -4 || exp >= 16 {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}
	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed, nil
}

func decimalExponent(f float64) int {
	if f == 0 {
		return 0
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	return exp
}
