// Package tui provides the terminal user interface for st.
//
// It handles:
//   - Console output and the rotating debug log (Splog)
//   - Interactive prompts and branch pickers (survey and bubbletea)
//   - Submit progress with a spinner
package tui
