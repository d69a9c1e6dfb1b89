package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Value stores one secret encrypted at rest in memory. The zero value is
// not usable; construct with NewValue.
//
// memguard enclaves have no Destroy of their own: Destroy here marks the
// Value unusable and drops the reference, and memguard.Purge at process
// exit wipes whatever remains.
type Value struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy() and blocks use after destroy
	destroyed bool
}

// NewValue seals data into a protected memory region. memguard wipes the
// input slice as part of sealing, so callers must pass a copy if they still
// need the bytes.
func NewValue(data []byte) *Value {
	if len(data) == 0 {
		// memguard rejects zero-length buffers; an empty secret is
		// representable without an enclave.
		return &Value{}
	}
	return &Value{enclave: memguard.NewEnclave(data)}
}

// Reveal decrypts the value and returns it as a string. The locked buffer
// used for decryption is wiped before returning; the returned string is
// ordinary Go memory, ready for substitution into rendered output.
func (v *Value) Reveal() (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.destroyed || v.enclave == nil {
		return "", nil
	}

	locked, err := v.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Destroy marks the value unusable. Idempotent; after Destroy, Reveal
// returns an empty string.
func (v *Value) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.destroyed {
		return
	}

	v.enclave = nil
	v.destroyed = true
}
