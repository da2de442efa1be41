package extract

import (
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// Summarize folds the entry lists into a Summary. Flags and sums only
// consider active entries; mortgage and deposit-right sums come from the
// encumbrance section.
func Summarize(ownership, encumbrance []Entry) Summary {
	summary := Summary{
		TotalOwnership:   len(ownership),
		TotalEncumbrance: len(encumbrance),
	}

	for _, entry := range ownership {
		if entry.Cancelled {
			summary.CancelledCount++
			continue
		}
		summary.ActiveOwnership++
		if entry.Purpose == taxonomy.RightOwnershipTransfer {
			summary.OwnershipTransferCount++
		}
		summary.markPresence(entry.Purpose)
	}

	for _, entry := range encumbrance {
		if entry.Cancelled {
			summary.CancelledCount++
			continue
		}
		summary.ActiveEncumbrance++
		switch entry.Purpose {
		case taxonomy.RightMortgage:
			summary.MortgageTotal = addAmounts(summary.MortgageTotal, entry.Amount)
		case taxonomy.RightDepositRight:
			summary.DepositRightTotal = addAmounts(summary.DepositRightTotal, entry.Amount)
		}
		summary.markPresence(entry.Purpose)
	}

	summary.TotalClaims = addAmounts(summary.MortgageTotal, summary.DepositRightTotal)
	return summary
}

// markPresence sets the flag corresponding to an active right type.
func (summary *Summary) markPresence(purpose taxonomy.RightType) {
	switch purpose {
	case taxonomy.RightSeizure:
		summary.HasSeizure = true
	case taxonomy.RightProvisionalSeizure:
		summary.HasProvisionalSeizure = true
	case taxonomy.RightProvisionalDisposition:
		summary.HasProvisionalDisposition = true
	case taxonomy.RightAuctionOrder:
		summary.HasAuctionOrder = true
	case taxonomy.RightTrust:
		summary.HasTrust = true
	case taxonomy.RightProvisionalRegistration:
		summary.HasProvisionalRegistration = true
	case taxonomy.RightLeaseRegistration:
		summary.HasLeaseRegistration = true
	case taxonomy.RightWarningRegistration:
		summary.HasWarningRegistration = true
	case taxonomy.RightRedemption:
		summary.HasRedemption = true
	}
}
