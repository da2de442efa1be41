// Package taxonomy classifies free-text registry terms into a closed set of
// right types and risk levels.
//
// Lookup tables are plain data: an ordered list of (term, right type, risk
// level) triples. Classification is a separate longest-substring scan, so
// tables can be extended without touching the parsing logic.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrUnknownRightType is returned when a table term names a right type
// outside the closed RightType set.
var ErrUnknownRightType = errors.New("unknown right type")

// ErrUnknownRiskLevel is returned when a table term names a risk level
// outside the closed RiskLevel set.
var ErrUnknownRiskLevel = errors.New("unknown risk level")

// RightType is the classified purpose of a registry entry.
type RightType string

const (
	// Ownership section (갑구) vocabulary.
	RightOwnershipPreservation   RightType = "ownership_preservation"
	RightOwnershipTransfer       RightType = "ownership_transfer"
	RightSeizure                 RightType = "seizure"
	RightProvisionalSeizure      RightType = "provisional_seizure"
	RightProvisionalDisposition  RightType = "provisional_disposition"
	RightAuctionOrder            RightType = "auction_order"
	RightTrust                   RightType = "trust"
	RightProvisionalRegistration RightType = "provisional_registration"
	RightRedemption              RightType = "redemption"
	RightWarningRegistration     RightType = "warning_registration"

	// Encumbrance section (을구) vocabulary.
	RightMortgage                 RightType = "mortgage"
	RightMortgageTransfer         RightType = "mortgage_transfer"
	RightMortgageModification     RightType = "mortgage_modification"
	RightDepositRight             RightType = "deposit_right"
	RightDepositRightTransfer     RightType = "deposit_right_transfer"
	RightDepositRightModification RightType = "deposit_right_modification"
	RightSurfaceRight             RightType = "surface_right"
	RightLeaseRegistration        RightType = "lease_registration"

	// RightOther marks text no table term matched.
	RightOther RightType = "other"
)

var rightTypeLabels = map[RightType]string{
	RightOwnershipPreservation:    "소유권보존",
	RightOwnershipTransfer:        "소유권이전",
	RightSeizure:                  "압류",
	RightProvisionalSeizure:       "가압류",
	RightProvisionalDisposition:   "가처분",
	RightAuctionOrder:             "경매개시결정",
	RightTrust:                    "신탁",
	RightProvisionalRegistration:  "가등기",
	RightRedemption:               "환매특약",
	RightWarningRegistration:      "예고등기",
	RightMortgage:                 "근저당권",
	RightMortgageTransfer:         "근저당권이전",
	RightMortgageModification:     "근저당권변경",
	RightDepositRight:             "전세권",
	RightDepositRightTransfer:     "전세권이전",
	RightDepositRightModification: "전세권변경",
	RightSurfaceRight:             "지상권",
	RightLeaseRegistration:        "임차권등기",
	RightOther:                    "기타",
}

// Label returns the Korean registry term for the right type.
func (rightType RightType) Label() string {
	if label, ok := rightTypeLabels[rightType]; ok {
		return label
	}
	return string(rightType)
}

// Valid reports whether the right type is a member of the closed set.
func (rightType RightType) Valid() bool {
	_, ok := rightTypeLabels[rightType]
	return ok
}

// ParseRightType converts a string into a RightType.
func ParseRightType(value string) (RightType, error) {
	rightType := RightType(strings.TrimSpace(value))
	if !rightType.Valid() {
		return RightOther, fmt.Errorf("%w: %q", ErrUnknownRightType, value)
	}
	return rightType, nil
}

// RiskLevel is the nominal risk carried by a right type.
type RiskLevel string

const (
	RiskDanger  RiskLevel = "danger"
	RiskWarning RiskLevel = "warning"
	RiskSafe    RiskLevel = "safe"
	RiskInfo    RiskLevel = "info"
)

// Valid reports whether the risk level is one of the four known levels.
func (riskLevel RiskLevel) Valid() bool {
	switch riskLevel {
	case RiskDanger, RiskWarning, RiskSafe, RiskInfo:
		return true
	}
	return false
}

// ParseRiskLevel converts a string into a RiskLevel.
func ParseRiskLevel(value string) (RiskLevel, error) {
	riskLevel := RiskLevel(strings.TrimSpace(value))
	if !riskLevel.Valid() {
		return RiskInfo, fmt.Errorf("%w: %q", ErrUnknownRiskLevel, value)
	}
	return riskLevel, nil
}

// Term maps a registry phrase to its classification.
type Term struct {
	Text  string    `yaml:"term" json:"term"`
	Right RightType `yaml:"right" json:"right"`
	Risk  RiskLevel `yaml:"risk" json:"risk"`
}

// Table is an immutable, longest-first ordered list of terms.
type Table struct {
	name  string
	terms []Term
}

// NewTable builds a table from the given terms. Terms are ordered by
// descending rune length; equal lengths keep their input order. Empty
// terms are dropped.
func NewTable(name string, terms []Term) *Table {
	orderedTerms := make([]Term, 0, len(terms))
	for _, term := range terms {
		if strings.TrimSpace(term.Text) == "" {
			continue
		}
		orderedTerms = append(orderedTerms, term)
	}
	sort.SliceStable(orderedTerms, func(i, j int) bool {
		return utf8.RuneCountInString(orderedTerms[i].Text) > utf8.RuneCountInString(orderedTerms[j].Text)
	})
	return &Table{name: name, terms: orderedTerms}
}

// Name returns the table name.
func (table *Table) Name() string { return table.name }

// Terms returns a copy of the table terms in match order.
func (table *Table) Terms() []Term {
	termsCopy := make([]Term, len(table.terms))
	copy(termsCopy, table.terms)
	return termsCopy
}

// Len returns the number of terms.
func (table *Table) Len() int { return len(table.terms) }

// Classify returns the classification of the longest term contained in
// text, or (RightOther, RiskInfo) when nothing matches.
func (table *Table) Classify(text string) (RightType, RiskLevel) {
	if table == nil || text == "" {
		return RightOther, RiskInfo
	}
	for _, term := range table.terms {
		if strings.Contains(text, term.Text) {
			return term.Right, term.Risk
		}
	}
	return RightOther, RiskInfo
}

// Matches reports whether any term of the table occurs in text.
func (table *Table) Matches(text string) bool {
	rightType, _ := table.Classify(text)
	return rightType != RightOther
}

// Extend returns a new table holding the receiver's terms plus extra.
// Extra terms with the same text replace the existing classification.
func (table *Table) Extend(extra []Term) *Table {
	replaced := make(map[string]Term, len(extra))
	for _, term := range extra {
		replaced[term.Text] = term
	}

	mergedTerms := make([]Term, 0, len(table.terms)+len(extra))
	for _, term := range table.terms {
		if override, ok := replaced[term.Text]; ok {
			mergedTerms = append(mergedTerms, override)
			delete(replaced, term.Text)
			continue
		}
		mergedTerms = append(mergedTerms, term)
	}
	for _, term := range extra {
		if _, pending := replaced[term.Text]; pending {
			mergedTerms = append(mergedTerms, term)
			delete(replaced, term.Text)
		}
	}
	return NewTable(table.name, mergedTerms)
}

// Taxonomy pairs the ownership (갑구) and encumbrance (을구) tables.
type Taxonomy struct {
	Name        string
	Ownership   *Table
	Encumbrance *Table
}

var defaultTaxonomy = &Taxonomy{
	Name:        "default",
	Ownership:   NewTable("ownership", ownershipTerms),
	Encumbrance: NewTable("encumbrance", encumbranceTerms),
}

// Default returns the built-in taxonomy. The returned value is shared and
// must not be modified.
func Default() *Taxonomy {
	return defaultTaxonomy
}
