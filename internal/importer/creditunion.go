package importer

// CreditUnion exports write negative amounts in parentheses and include the
// bank's own Category, which names the fallback account.
//
//	Posted Date,Description,Amount,Category
//	3/1/2021,UWM RESTAU MILWAUKEE,(5.00),Dining Out
func CreditUnion(opts Options) *Layout {
	return &Layout{
		Institution:     "creditunion",
		Date:            "Posted Date",
		Description:     "Description",
		Amount:          "Amount",
		Category:        "Category",
		CategoryPrefix:  opts.CategoryPrefix,
		FallbackAccount: opts.FallbackAccount,
	}
}
