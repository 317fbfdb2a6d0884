// Package cli holds the wiring shared by the switchboard commands.
package cli
