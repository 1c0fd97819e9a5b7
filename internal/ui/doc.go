// Package ui provides semantic text formatting for CLI output.
//
// Formatters colorize content when the terminal supports it and fall back to
// plain decorations (backticks, quotes, parentheses) when NO_COLOR is set or
// the terminal is dumb:
//
//	ui.Code.Sprint("gitenc encrypt")   // Commands
//	ui.Path.Sprint("config/.env")      // File paths
//	ui.Highlight.Sprint(key)           // User values
//	ui.Tick() + " done"                // Status markers
package ui
