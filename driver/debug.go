// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"fmt"
	"strings"
)

// Severity is the type of validation message severities.
type Severity int

// Severities, from most to least severe.
const (
	SCorruption Severity = iota
	SError
	SWarning
	SInfo
	SMessage
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SCorruption:
		return "corruption"
	case SError:
		return "error"
	case SWarning:
		return "warning"
	case SInfo:
		return "info"
	case SMessage:
		return "message"
	}
	return "invalid"
}

// ParseSeverity parses the name of a Severity.
// It is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	for sev := SCorruption; sev <= SMessage; sev++ {
		if strings.EqualFold(s, sev.String()) {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("driver: unknown severity %q", s)
}

// Message is a validation message.
type Message struct {
	Severity Severity
	ID       int
	Desc     string
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("[%s #%d] %s", m.Severity, m.ID, m.Desc)
}

// Debugger is the interface that a GPU implements when
// opened with Options.Debug set.
// It provides access to the validation layer.
type Debugger interface {
	// SetBreakOnSeverity sets whether messages of the
	// given severity cause a break (e.g., a debugger
	// breakpoint or a panic) when reported.
	SetBreakOnSeverity(s Severity, enable bool) error

	// Messages returns the stored messages.
	Messages() []Message

	// ClearMessages removes all stored messages.
	ClearMessages()
}
