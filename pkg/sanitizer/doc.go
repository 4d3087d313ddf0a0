// Package sanitizer normalizes user-supplied text before validation and storage.
//
// Every function is idempotent and tolerant of bad input: it returns an empty
// value rather than an error, leaving rejection to the validator.
package sanitizer
