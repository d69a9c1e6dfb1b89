package template

import (
	"fmt"
	"strings"
)

// Ref is one parsed placeholder reference from a template.
//
// Raw holds the exact source span, braces included, and Start/End its
// byte offsets, so a renderer can splice replacements without touching
// any surrounding bytes. Vault and Item are empty when the placeholder
// does not name them; Field is never empty after a successful parse.
type Ref struct {
	Raw   string
	Start int
	End   int
	Vault string
	Item  string
	Field string
}

// ParseError reports a malformed placeholder body. The span and offset
// point at the exact source text so diagnostics can quote it.
type ParseError struct {
	Span   string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid placeholder %s at offset %d: %s", e.Span, e.Offset, e.Reason)
}

// Scanner finds placeholder references in template text, in the manner
// of bufio.Scanner:
//
//	s := template.NewScanner(text)
//	for s.Scan() {
//	    ref := s.Ref()
//	    ...
//	}
//	if err := s.Err(); err != nil { ... }
//
// Scanning is lazy and strictly left to right. Placeholders are
// delimited by {{ and }}, never nest, and have no escape syntax: a
// stray {{ inside a body stays part of the body, and a {{ with no
// closing }} before end of text is not a placeholder at all. To
// rescan, construct a new Scanner over the same text.
type Scanner struct {
	text string
	pos  int
	ref  Ref
	err  *ParseError
}

// NewScanner returns a Scanner positioned before the first placeholder.
func NewScanner(text string) *Scanner {
	return &Scanner{text: text}
}

// Scan advances to the next placeholder. It returns false when the text
// is exhausted or a malformed placeholder was found; Err tells the two
// apart.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	rel := strings.Index(s.text[s.pos:], "{{")
	if rel < 0 {
		return false
	}
	start := s.pos + rel

	bodyStart := start + 2
	bodyLen := strings.Index(s.text[bodyStart:], "}}")
	if bodyLen < 0 {
		// Unterminated open delimiter: literal text, not a placeholder.
		return false
	}
	end := bodyStart + bodyLen + 2

	ref, perr := parseBody(s.text[bodyStart : bodyStart+bodyLen])
	if perr != nil {
		perr.Span = s.text[start:end]
		perr.Offset = start
		s.err = perr
		return false
	}

	ref.Raw = s.text[start:end]
	ref.Start = start
	ref.End = end
	s.ref = ref
	s.pos = end
	return true
}

// Ref returns the placeholder found by the last successful Scan.
func (s *Scanner) Ref() Ref {
	return s.ref
}

// Err returns the parse error that stopped the scan, or nil if the
// scan ended because the text ran out.
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// parseBody splits a placeholder body on periods. One segment names a
// field, two name item.field, three name vault.item.field. Segments
// are taken verbatim, whitespace included.
func parseBody(body string) (Ref, *ParseError) {
	if body == "" {
		return Ref{}, &ParseError{Reason: "empty placeholder"}
	}

	segments := strings.Split(body, ".")
	if len(segments) > 3 {
		return Ref{}, &ParseError{
			Reason: fmt.Sprintf("%d segments; a placeholder names at most vault.item.field", len(segments)),
		}
	}
	for _, segment := range segments {
		if segment == "" {
			return Ref{}, &ParseError{Reason: "empty segment"}
		}
	}

	switch len(segments) {
	case 1:
		return Ref{Field: segments[0]}, nil
	case 2:
		return Ref{Item: segments[0], Field: segments[1]}, nil
	default:
		return Ref{Vault: segments[0], Item: segments[1], Field: segments[2]}, nil
	}
}

// ParseAll eagerly collects every placeholder in the text. It is the
// convenience form of Scanner for callers that want the full list up
// front, such as dry runs.
func ParseAll(text string) ([]Ref, error) {
	scanner := NewScanner(text)
	var refs []Ref
	for scanner.Scan() {
		refs = append(refs, scanner.Ref())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}
