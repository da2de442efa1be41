package validate

import (
	"math"

	"github.com/coolbeans/deungi/pkg/extract"
	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// tally is the validator's own recount of the summary statistics. It must
// not be derived from extract.Summarize.
type tally struct {
	ownershipTotal    int
	ownershipActive   int
	encumbranceTotal  int
	encumbranceActive int
	cancelled         int
	transfers         int
	mortgageSum       int64
	depositRightSum   int64
	activeByRightType map[taxonomy.RightType]int
}

func recount(registry *extract.Registry) *tally {
	recounted := &tally{
		ownershipTotal:    len(registry.Ownership),
		encumbranceTotal:  len(registry.Encumbrance),
		activeByRightType: make(map[taxonomy.RightType]int),
	}

	for entryIndex := range registry.Ownership {
		entry := &registry.Ownership[entryIndex]
		if entry.Cancelled {
			recounted.cancelled++
			continue
		}
		recounted.ownershipActive++
		recounted.activeByRightType[entry.Purpose]++
	}
	recounted.transfers = recounted.activeByRightType[taxonomy.RightOwnershipTransfer]

	for entryIndex := range registry.Encumbrance {
		entry := &registry.Encumbrance[entryIndex]
		if entry.Cancelled {
			recounted.cancelled++
			continue
		}
		recounted.encumbranceActive++
		recounted.activeByRightType[entry.Purpose]++
		if entry.Purpose == taxonomy.RightMortgage {
			recounted.mortgageSum = saturatingSum(recounted.mortgageSum, entry.Amount)
		}
		if entry.Purpose == taxonomy.RightDepositRight {
			recounted.depositRightSum = saturatingSum(recounted.depositRightSum, entry.Amount)
		}
	}

	return recounted
}

func (recounted *tally) totalClaims() int64 {
	return saturatingSum(recounted.mortgageSum, recounted.depositRightSum)
}

func (recounted *tally) has(rightType taxonomy.RightType) bool {
	return recounted.activeByRightType[rightType] > 0
}

// recounted returns the context's tally, computing it on first use.
func (validationContext *ValidationContext) recounted() *tally {
	if validationContext.tally == nil {
		registry := validationContext.Registry
		if registry == nil {
			registry = &extract.Registry{}
		}
		validationContext.tally = recount(registry)
	}
	return validationContext.tally
}

// registry returns the context's registry, never nil.
func (validationContext *ValidationContext) registry() *extract.Registry {
	if validationContext.Registry == nil {
		return &extract.Registry{}
	}
	return validationContext.Registry
}

// summaryFlag pairs a stored summary flag with the right type it reports.
type summaryFlag struct {
	field     string
	rightType taxonomy.RightType
	stored    func(summary extract.Summary) bool
}

var summaryFlags = []summaryFlag{
	{"has_seizure", taxonomy.RightSeizure, func(summary extract.Summary) bool { return summary.HasSeizure }},
	{"has_provisional_seizure", taxonomy.RightProvisionalSeizure, func(summary extract.Summary) bool { return summary.HasProvisionalSeizure }},
	{"has_provisional_disposition", taxonomy.RightProvisionalDisposition, func(summary extract.Summary) bool { return summary.HasProvisionalDisposition }},
	{"has_auction_order", taxonomy.RightAuctionOrder, func(summary extract.Summary) bool { return summary.HasAuctionOrder }},
	{"has_trust", taxonomy.RightTrust, func(summary extract.Summary) bool { return summary.HasTrust }},
	{"has_provisional_registration", taxonomy.RightProvisionalRegistration, func(summary extract.Summary) bool { return summary.HasProvisionalRegistration }},
	{"has_lease_registration", taxonomy.RightLeaseRegistration, func(summary extract.Summary) bool { return summary.HasLeaseRegistration }},
	{"has_warning_registration", taxonomy.RightWarningRegistration, func(summary extract.Summary) bool { return summary.HasWarningRegistration }},
	{"has_redemption", taxonomy.RightRedemption, func(summary extract.Summary) bool { return summary.HasRedemption }},
}

// saturatingSum adds two amounts, clamping at the int64 bounds.
func saturatingSum(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}
