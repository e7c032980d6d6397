// Package journal renders ledger entries as plain text and writes them out.
package journal

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledgerize-dev/ledgerize/internal/model"
)

const indent = "    "

// Render formats one entry. A recognized entry starts with a blank line and
// carries the "*" cleared mark; a non-empty comment adds a "; comment" line.
// Every entry ends with a blank line.
//
//	2021/03/01 * UWM Restaurant Ops
//	    ; UWM RESTAU MILWAUKEE
//	    Assets:Checking  -5.00
//	    Expenses:Food:DiningOut
func Render(e *model.Entry) string {
	var b strings.Builder

	if e.Recognized() {
		fmt.Fprintf(&b, "\n%s * %s\n", e.Date, e.Description)
	} else {
		fmt.Fprintf(&b, "%s %s\n", e.Date, e.Description)
	}
	if e.Comment != "" {
		fmt.Fprintf(&b, "%s; %s\n", indent, e.Comment)
	}

	for _, p := range e.Postings() {
		switch p := p.(type) {
		case model.AmountPosting:
			fmt.Fprintf(&b, "%s%s  %s\n", indent, p.Account, p.Amount)
		case model.BarePosting:
			fmt.Fprintf(&b, "%s%s\n", indent, p.Account)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// RenderUnknown formats the diagnostic left in place of a row whose
// transaction type the institution does not define.
func RenderUnknown(row int, value string) string {
	return fmt.Sprintf("; ??? unknown transaction type %q (row %d)\n\n", value, row)
}

// WriteEntries renders entries to w in order.
func WriteEntries(w io.Writer, entries []*model.Entry) error {
	for i, e := range entries {
		if _, err := io.WriteString(w, Render(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i+1, err)
		}
	}
	return nil
}
