// Package tui renders the recipient edit screen for terminals.
package tui
