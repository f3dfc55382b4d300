// Package sanitizer normalizes user supplied strings before validation and
// storage. Every function is idempotent and returns empty values instead of
// errors for unusable input.
package sanitizer
