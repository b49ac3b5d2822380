// Package ui renders command results for the terminal.
//
// Styling is applied through a lipgloss renderer bound to the output writer,
// so redirected output stays plain text.
package ui
