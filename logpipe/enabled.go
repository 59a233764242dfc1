//go:build !nolog

package logpipe

// Enabled is false when built with the nolog tag, which turns every logging
// call into a no-op.
const Enabled = true
