// Package cli provides output formatting, signal handling, and error
// types shared by the railguard command.
package cli
