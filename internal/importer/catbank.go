package importer

// CatBank exports carry separate Credit and Debit columns and a Type column
// of CREDIT or DEBIT. Unrecognized rows go to the fixed fallback account.
//
//	Date,Description,Type,Credit,Debit
//	3/1/2021,PAYROLL ACME,CREDIT,1200.00,
func CatBank(opts Options) *Layout {
	return &Layout{
		Institution:     "catbank",
		Date:            "Date",
		Description:     "Description",
		Credit:          "Credit",
		Debit:           "Debit",
		Type:            "Type",
		CreditTypes:     []string{"CREDIT"},
		DebitTypes:      []string{"DEBIT"},
		FallbackAccount: opts.FallbackAccount,
	}
}
