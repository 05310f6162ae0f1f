//go:build debug

package vicsek

// debug enables per-step invariant checks.
const debug = true
