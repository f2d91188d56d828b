package sections

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContractViolation marks report shapes the view code cannot render correctly.
	ErrContractViolation = errors.New("report contract violation")
	ErrUnknownMode       = errors.New("unknown view mode")
	ErrUnknownColumn     = errors.New("unknown column")
)

// ContractError pinpoints the section, row and column of a contract violation.
// Row is 1-based; zero means the whole section.
type ContractError struct {
	Section string
	Row     int
	Column  string
	Reason  string
}

func (e *ContractError) Error() string {
	var b strings.Builder
	b.WriteString(ErrContractViolation.Error())
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Section != "" {
		fmt.Fprintf(&b, " (section %q", e.Section)
		if e.Row > 0 {
			fmt.Fprintf(&b, ", row %d", e.Row)
		}
		if e.Column != "" {
			fmt.Fprintf(&b, ", column %q", e.Column)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}
