package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/opsync/pkg/provider"
)

// RefError attaches the failing placeholder and its source line to a
// resolution error so a template author can find it without counting
// offsets.
type RefError struct {
	Ref  Ref
	Line int
	Err  error
}

func (e *RefError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Ref.Raw, e.Err)
}

func (e *RefError) Unwrap() error {
	return e.Err
}

// Render replaces every placeholder in text with the value returned by
// resolve, preserving all other bytes exactly. Replacement works on the
// scanned span offsets, so values containing {{ or }} are never
// re-interpreted.
//
// On a parse error Render stops at once. Resolution failures are
// collected across the whole template and returned joined, so one run
// surfaces every broken placeholder, except a provider-unavailable
// error which aborts immediately. Any error means no output text: the
// caller must not write a partial file.
func Render(text string, resolve func(Ref) (string, error)) (string, error) {
	scanner := NewScanner(text)

	var out strings.Builder
	out.Grow(len(text))

	var failures []error
	last := 0

	for scanner.Scan() {
		ref := scanner.Ref()
		out.WriteString(text[last:ref.Start])
		last = ref.End

		value, err := resolve(ref)
		if err != nil {
			if provider.IsUnavailable(err) {
				return "", err
			}
			failures = append(failures, &RefError{Ref: ref, Line: lineAt(text, ref.Start), Err: err})
			continue
		}
		out.WriteString(value)
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(failures) > 0 {
		return "", errors.Join(failures...)
	}

	out.WriteString(text[last:])
	return out.String(), nil
}

// lineAt returns the 1-based line number of the byte at offset.
func lineAt(text string, offset int) int {
	return 1 + strings.Count(text[:offset], "\n")
}
