//go:build !debug

package vicsek

const debug = false
