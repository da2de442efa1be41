// Package extract parses free-form Korean real-estate registry text
// (등기사항전부증명서) into structured title, ownership and encumbrance
// records.
//
// Every function in this package is total: malformed or partial input
// produces empty fields and lists, never an error.
package extract

import (
	"encoding/json"

	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// TitleSection holds the best-effort fields of the 표제부 (title) section.
type TitleSection struct {
	Address        string `json:"address" yaml:"address"`
	BuildingDetail string `json:"building_detail" yaml:"building_detail"`
	Area           string `json:"area" yaml:"area"`
	Structure      string `json:"structure" yaml:"structure"`
	Purpose        string `json:"purpose" yaml:"purpose"`
	LandRightRatio string `json:"land_right_ratio" yaml:"land_right_ratio"`
}

// Entry is one ranked record of the ownership (갑구) or encumbrance (을구)
// section.
//
// Amount is only populated for encumbrance entries; zero means no amount
// was found. A cancelled entry always carries RiskInfo.
type Entry struct {
	Order     int                `json:"order" yaml:"order"`
	Date      string             `json:"date" yaml:"date"`
	Purpose   taxonomy.RightType `json:"purpose" yaml:"purpose"`
	Detail    string             `json:"detail" yaml:"detail"`
	Holder    string             `json:"holder" yaml:"holder"`
	Cancelled bool               `json:"cancelled" yaml:"cancelled"`
	RiskLevel taxonomy.RiskLevel `json:"risk_level" yaml:"risk_level"`
	Amount    int64              `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Active reports whether the entry has not been cancelled.
func (entry Entry) Active() bool {
	return !entry.Cancelled
}

// Summary is a denormalized snapshot derived from the entry lists.
type Summary struct {
	TotalOwnership    int `json:"total_ownership" yaml:"total_ownership"`
	ActiveOwnership   int `json:"active_ownership" yaml:"active_ownership"`
	TotalEncumbrance  int `json:"total_encumbrance" yaml:"total_encumbrance"`
	ActiveEncumbrance int `json:"active_encumbrance" yaml:"active_encumbrance"`
	CancelledCount    int `json:"cancelled_count" yaml:"cancelled_count"`

	MortgageTotal     int64 `json:"mortgage_total" yaml:"mortgage_total"`
	DepositRightTotal int64 `json:"deposit_right_total" yaml:"deposit_right_total"`
	TotalClaims       int64 `json:"total_claims" yaml:"total_claims"`

	HasSeizure                 bool `json:"has_seizure" yaml:"has_seizure"`
	HasProvisionalSeizure      bool `json:"has_provisional_seizure" yaml:"has_provisional_seizure"`
	HasProvisionalDisposition  bool `json:"has_provisional_disposition" yaml:"has_provisional_disposition"`
	HasAuctionOrder            bool `json:"has_auction_order" yaml:"has_auction_order"`
	HasTrust                   bool `json:"has_trust" yaml:"has_trust"`
	HasProvisionalRegistration bool `json:"has_provisional_registration" yaml:"has_provisional_registration"`
	HasLeaseRegistration       bool `json:"has_lease_registration" yaml:"has_lease_registration"`
	HasWarningRegistration     bool `json:"has_warning_registration" yaml:"has_warning_registration"`
	HasRedemption              bool `json:"has_redemption" yaml:"has_redemption"`

	OwnershipTransferCount int `json:"ownership_transfer_count" yaml:"ownership_transfer_count"`
}

// Registry is the parsed form of one registry document.
type Registry struct {
	Title       TitleSection `json:"title" yaml:"title"`
	Ownership   []Entry      `json:"ownership" yaml:"ownership"`
	Encumbrance []Entry      `json:"encumbrance" yaml:"encumbrance"`
	Summary     Summary      `json:"summary" yaml:"summary"`
	RawText     string       `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
}

// ToJSON serializes the registry as indented JSON.
func (registry *Registry) ToJSON() ([]byte, error) {
	return json.MarshalIndent(registry, "", "  ")
}
