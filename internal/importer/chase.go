package importer

// Chase checking exports carry one signed Amount column.
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//	DEBIT,01/03/2025,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,5230.18,
func Chase(opts Options) *Layout {
	return &Layout{
		Institution:     "chase",
		Date:            "Posting Date",
		Description:     "Description",
		Amount:          "Amount",
		FallbackAccount: opts.FallbackAccount,
	}
}
