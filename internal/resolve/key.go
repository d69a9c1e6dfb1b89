package resolve

import (
	"fmt"
	"strings"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/template"
)

// Key is a fully resolved lookup: everything the provider needs to
// fetch one field. Keys are plain comparable values; two lookups are
// the same lookup exactly when their Keys are equal field for field.
type Key struct {
	Account string
	Vault   string
	Item    string
	Field   string
}

// String renders the key in placeholder notation for diagnostics.
func (k Key) String() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{k.Vault, k.Item, k.Field} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	s := strings.Join(parts, ".")
	if k.Account != "" {
		s += " (account " + k.Account + ")"
	}
	return s
}

// id returns an unambiguous flight key for singleflight. A separator
// that cannot occur in the fields keeps ("a.b", "c") distinct from
// ("a", "b.c").
func (k Key) id() string {
	return k.Account + "\x00" + k.Vault + "\x00" + k.Item + "\x00" + k.Field
}

// KeyFor merges a placeholder reference with its target's defaults.
// Each coordinate merges on its own: the reference wins when it names
// a vault or item, the target fills the gap when it does not. The
// account only ever comes from the target, the field only ever from
// the reference. A key without an item cannot be looked up, so that
// case is an error rather than a guess.
func KeyFor(target config.Target, ref template.Ref) (Key, error) {
	key := Key{
		Account: target.Account,
		Vault:   ref.Vault,
		Item:    ref.Item,
		Field:   ref.Field,
	}
	if key.Vault == "" {
		key.Vault = target.Vault
	}
	if key.Item == "" {
		key.Item = target.Item
	}
	if key.Item == "" {
		return Key{}, &MissingItemError{Target: target.Name, Ref: ref}
	}
	return key, nil
}

// MissingItemError reports that neither the placeholder nor its target
// names an item. Ref is zero when the target itself had no placeholder,
// as with a file target missing its item.
type MissingItemError struct {
	Target string
	Ref    template.Ref
}

func (e *MissingItemError) Error() string {
	if e.Ref.Raw == "" {
		return fmt.Sprintf("target '%s' names no item", e.Target)
	}
	return fmt.Sprintf("%s does not name an item and target '%s' sets no default", e.Ref.Raw, e.Target)
}

// LookupError reports a provider lookup that failed for one key. It
// carries the key so diagnostics can say exactly which coordinates
// were asked for after all defaults were applied.
type LookupError struct {
	Key Key
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup failed for %s: %v", e.Key, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
