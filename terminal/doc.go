// Package terminal adapts a tcell screen to the starfield: screen setup with a
// forced or detected color mode, an event pump that turns terminal resizes into
// surface-pixel viewport notifications, and emergency restoration on crash.
//
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
