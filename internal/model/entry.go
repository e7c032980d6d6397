package model

import "errors"

// ErrDuplicateBare is returned when a second bare posting is added to an entry.
var ErrDuplicateBare = errors.New("entry already has a bare posting")

// Posting is one line of an entry. It is either an AmountPosting or a BarePosting.
type Posting interface {
	AccountName() string
	isPosting()
}

// AmountPosting attributes a signed amount to an account.
type AmountPosting struct {
	Account string
	Amount  string // text token, e.g. "-5.00" or "$12.34"
}

// BarePosting is the balancing leg; its amount is implied by the ledger tool.
type BarePosting struct {
	Account string
}

func (p AmountPosting) AccountName() string { return p.Account }
func (p BarePosting) AccountName() string   { return p.Account }

func (AmountPosting) isPosting() {}
func (BarePosting) isPosting()   {}

// Entry is one transaction on its way to ledger text.
type Entry struct {
	Date        string // "YYYY/MM/DD", year width as given by the source
	Description string
	Comment     string // empty = no comment

	postings   []Posting
	recognized bool
}

// NewEntry creates an unrecognized entry with its primary posting.
func NewEntry(date, description, account, amount string) *Entry {
	return &Entry{
		Date:        date,
		Description: description,
		postings:    []Posting{AmountPosting{Account: account, Amount: amount}},
	}
}

// Postings returns a copy of the entry's postings in order.
func (e *Entry) Postings() []Posting {
	out := make([]Posting, len(e.postings))
	copy(out, e.postings)
	return out
}

// Primary returns the first amount-bearing posting.
func (e *Entry) Primary() (AmountPosting, bool) {
	for _, p := range e.postings {
		if ap, ok := p.(AmountPosting); ok {
			return ap, true
		}
	}
	return AmountPosting{}, false
}

// AddPosting appends a posting. At most one BarePosting is allowed.
func (e *Entry) AddPosting(p Posting) error {
	if _, ok := p.(BarePosting); ok && e.hasBare() {
		return ErrDuplicateBare
	}
	e.postings = append(e.postings, p)
	return nil
}

func (e *Entry) hasBare() bool {
	for _, p := range e.postings {
		if _, ok := p.(BarePosting); ok {
			return true
		}
	}
	return false
}

// Recognized reports whether a rule has been applied to the entry.
func (e *Entry) Recognized() bool {
	return e.recognized
}

// Apply recognizes the entry with rule r: the current description moves to
// the comment, the rule's description replaces it and a bare posting for the
// rule's account is appended. Apply is a no-op on a recognized entry or on an
// entry that already carries a bare posting, and reports whether it mutated.
func (e *Entry) Apply(r Rule) bool {
	if e.recognized || e.hasBare() {
		return false
	}
	e.Comment = e.Description
	e.Description = r.Description
	e.postings = append(e.postings, BarePosting{Account: r.Account})
	e.recognized = true
	return true
}
