package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return "\x1b[32m"
	case statusWarn:
		return "\x1b[33m"
	case statusError:
		return "\x1b[31m"
	default:
		return "\x1b[34m"
	}
}

// renderStatusLine formats one "  label:  [KIND] message" row with the label
// padded so the status column lines up.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	var line strings.Builder
	line.WriteString("  ")
	line.WriteString(fmt.Sprintf("%-20s", label+":"))
	line.WriteString(" [")
	line.WriteString(kind.label())
	line.WriteString("]")
	if message != "" {
		line.WriteString(" ")
		line.WriteString(message)
	}
	if colorize {
		return kind.color() + line.String() + ansiReset
	}
	return line.String()
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if colorize {
		blue := statusInfo.color()
		return []string{blue + heading + ansiReset, blue + rule + ansiReset}
	}
	return []string{heading, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
