// Package secure keeps resolved secret values protected while they sit in
// the run cache.
//
// Between the provider lookup and the moment a value is substituted into an
// output file, the plaintext is held in a memguard enclave:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock
//   - Guarded against buffer overflow via guard pages
//
// # Usage
//
//	v := secure.NewValue([]byte("my-secret"))
//	defer v.Destroy()
//
//	plaintext, err := v.Reveal()
//	if err != nil {
//	    // enclave could not be opened
//	}
//
// Reveal returns an ordinary Go string because the value's final destination
// is a rendered file; protection ends where substitution begins. Call
// memguard.Purge in main's exit path to wipe all enclaves at once.
//
// # Platform Behavior
//
// Memory locking varies by platform. Linux needs RLIMIT_MEMLOCK headroom;
// macOS and Windows work out of the box. When mlock fails the library falls
// back to standard allocation.
package secure
