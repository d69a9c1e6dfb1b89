// Package fakes provides test doubles for opsync provider interfaces.
//
// Fakes are test doubles with working in-memory implementations that
// take shortcuts compared to production code. They are more realistic
// than mocks but simpler than real implementations, which makes them
// the right tool for exercising resolution and run logic without a
// 1Password account.
//
// Usage:
//
//	fake := fakes.NewFakeProvider("1password").
//	    WithSecret("Production", "db", "password", "s3cret").
//	    WithDocument("Production", "Deploy Key", []byte("-----BEGIN..."))
//	resolver := resolve.NewResolver(fake, logger)
package fakes
