package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerize-dev/ledgerize/internal/accounts"
	"github.com/ledgerize-dev/ledgerize/internal/model"
	"github.com/ledgerize-dev/ledgerize/internal/normalize"
)

// Layout describes an institution's export: which columns hold the date,
// description and amount, and how the amount's sign is derived. Amount
// names a single signed column; Credit and Debit name a pair of which
// exactly one is populated per row.
type Layout struct {
	Institution string `yaml:"name"`

	Date        string `yaml:"date"`
	Description string `yaml:"description"`

	Amount string `yaml:"amount,omitempty"`
	Credit string `yaml:"credit,omitempty"`
	Debit  string `yaml:"debit,omitempty"`

	// Type optionally names a discriminator column; its value must be one
	// of CreditTypes or DebitTypes (case-insensitive).
	Type        string   `yaml:"type,omitempty"`
	CreditTypes []string `yaml:"credit_types,omitempty"`
	DebitTypes  []string `yaml:"debit_types,omitempty"`

	// Category optionally names a bank category column used for fallback.
	Category        string `yaml:"category,omitempty"`
	CategoryPrefix  string `yaml:"category_prefix,omitempty"`
	FallbackAccount string `yaml:"fallback_account,omitempty"`
}

// Validate checks that the layout can derive every entry field.
func (l *Layout) Validate() error {
	if l.Institution == "" {
		return errors.New("layout has no name")
	}
	if l.Date == "" || l.Description == "" {
		return fmt.Errorf("layout %s: date and description columns are required", l.Institution)
	}
	pair := l.Credit != "" || l.Debit != ""
	switch {
	case l.Amount != "" && pair:
		return fmt.Errorf("layout %s: amount and credit/debit are exclusive", l.Institution)
	case l.Amount == "" && (l.Credit == "" || l.Debit == ""):
		return fmt.Errorf("layout %s: needs an amount column or both credit and debit columns", l.Institution)
	}
	if l.Type != "" && (len(l.CreditTypes) == 0 || len(l.DebitTypes) == 0) {
		return fmt.Errorf("layout %s: type column needs credit_types and debit_types", l.Institution)
	}
	if l.FallbackAccount != "" {
		if err := accounts.Validate(l.FallbackAccount); err != nil {
			return fmt.Errorf("layout %s: fallback account: %w", l.Institution, err)
		}
	}
	return nil
}

// Name returns the institution identifier.
func (l *Layout) Name() string { return l.Institution }

// Adapt builds an entry from rec.
func (l *Layout) Adapt(rec Record, account string) (*model.Entry, error) {
	if err := rec.Check(); err != nil {
		return nil, err
	}

	rawDate, err := rec.Field(l.Date)
	if err != nil {
		return nil, err
	}
	date, err := normalize.Date(rawDate)
	if err != nil {
		return nil, &model.MalformedRowError{Row: rec.Row, Field: l.Date, Err: err}
	}

	desc, err := rec.Field(l.Description)
	if err != nil {
		return nil, err
	}
	// A line break would end the entry header early in the ledger text.
	if strings.ContainsAny(desc, "\r\n") {
		return nil, &model.MalformedRowError{Row: rec.Row, Field: l.Description, Err: errors.New("description contains a line break")}
	}

	amount, err := l.amount(rec)
	if err != nil {
		return nil, err
	}

	return model.NewEntry(date, desc, account, amount), nil
}

func (l *Layout) amount(rec Record) (string, error) {
	if l.Amount != "" {
		raw, err := rec.Field(l.Amount)
		if err != nil {
			return "", err
		}
		amt, err := normalize.Amount(raw)
		if err != nil {
			return "", &model.MalformedRowError{Row: rec.Row, Field: l.Amount, Err: err}
		}
		return amt, nil
	}

	credit, err := rec.Field(l.Credit)
	if err != nil {
		return "", err
	}
	debit, err := rec.Field(l.Debit)
	if err != nil {
		return "", err
	}
	hasCredit := strings.TrimSpace(credit) != ""
	hasDebit := strings.TrimSpace(debit) != ""

	if l.Type != "" {
		isCredit, err := l.discriminate(rec)
		if err != nil {
			return "", err
		}
		switch {
		case isCredit && !hasCredit:
			return "", &model.MalformedRowError{Row: rec.Row, Field: l.Credit, Err: errors.New("credit row without a credit amount")}
		case !isCredit && !hasDebit:
			return "", &model.MalformedRowError{Row: rec.Row, Field: l.Debit, Err: errors.New("debit row without a debit amount")}
		}
	}

	switch {
	case hasCredit && hasDebit:
		return "", &model.MalformedRowError{Row: rec.Row, Field: l.Credit, Err: errors.New("both credit and debit are populated")}
	case hasCredit:
		amt, err := normalize.Amount(credit)
		if err != nil {
			return "", &model.MalformedRowError{Row: rec.Row, Field: l.Credit, Err: err}
		}
		return amt, nil
	case hasDebit:
		amt, err := normalize.Amount(debit)
		if err != nil {
			return "", &model.MalformedRowError{Row: rec.Row, Field: l.Debit, Err: err}
		}
		// Debit columns hold magnitudes; a value already negative stays as is.
		if !strings.HasPrefix(amt, "-") {
			amt = normalize.Negate(amt)
		}
		return amt, nil
	default:
		return "", &model.MalformedRowError{Row: rec.Row, Field: l.Credit, Err: errors.New("neither credit nor debit is populated")}
	}
}

func (l *Layout) discriminate(rec Record) (bool, error) {
	raw, err := rec.Field(l.Type)
	if err != nil {
		return false, err
	}
	v := strings.TrimSpace(raw)
	for _, t := range l.CreditTypes {
		if strings.EqualFold(v, t) {
			return true, nil
		}
	}
	for _, t := range l.DebitTypes {
		if strings.EqualFold(v, t) {
			return false, nil
		}
	}
	return false, &model.UnknownTransactionTypeError{Row: rec.Row, Field: l.Type, Value: v}
}

// Fallback returns the account derived from the category column when the
// layout has one and the row fills it, otherwise the fixed fallback.
func (l *Layout) Fallback(rec Record) string {
	fallback := l.FallbackAccount
	if fallback == "" {
		fallback = accounts.DefaultFallback
	}
	if l.Category == "" {
		return fallback
	}
	cat, _ := rec.Lookup(l.Category)
	return accounts.FromCategory(l.CategoryPrefix, cat, fallback)
}
