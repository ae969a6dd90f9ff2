// Package cli holds the command implementations behind cmd/recipient: the
// backend stack selected by configuration and the interactive edit loop.
package cli
