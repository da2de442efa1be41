package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/deungi/pkg/taxonomy"
)

var (
	// orderTokenPattern matches a leading rank number ("3 근저당권설정 ...").
	orderTokenPattern = regexp.MustCompile(`^(\d+)\s+`)

	// leadingDatePattern matches a line that opens with a spaced date
	// ("2010 년 1 월 5 일", "2010 . 1 . 5"), whose year is not a rank.
	leadingDatePattern = regexp.MustCompile(`^\d+\s*(?:년|[./-]\s*\d)`)

	// cancellationReferencePattern matches "3번근저당권설정등기말소" and
	// spaced variants, capturing the referenced rank number.
	cancellationReferencePattern = regexp.MustCompile(`(\d+)\s*번.*말소`)

	// cancellationKeywords mark an entry as no longer in force.
	cancellationKeywords = []string{"말소", "해지", "해제"}

	// entryHeaderTokens must all appear on the column header line.
	entryHeaderTokens = []string{"순위번호", "등기목적", "접수"}
)

// entryState is the parser state: either idleState or *accumulatingState.
type entryState interface {
	isEntryState()
}

// idleState means no entry has started yet.
type idleState struct{}

// accumulatingState carries the entry being built and its source lines.
type accumulatingState struct {
	pending     Entry
	sourceLines []string
}

func (idleState) isEntryState()          {}
func (*accumulatingState) isEntryState() {}

// EntryParser turns one ranked section (갑구 or 을구) into entries.
type EntryParser struct {
	table         *taxonomy.Table
	extractAmount bool
}

// NewOwnershipParser returns a parser for the 갑구 section.
func NewOwnershipParser(table *taxonomy.Table) *EntryParser {
	return &EntryParser{table: table}
}

// NewEncumbranceParser returns a parser for the 을구 section. Encumbrance
// entries also carry an amount.
func NewEncumbranceParser(table *taxonomy.Table) *EntryParser {
	return &EntryParser{table: table, extractAmount: true}
}

// Parse runs the entry state machine over section. Entries whose purpose
// never resolved to a known right type are dropped.
func (entryParser *EntryParser) Parse(section string) []Entry {
	lines := splitLines(section)
	lines = lines[entryHeaderEnd(lines):]

	entries := make([]Entry, 0)
	var state entryState = idleState{}
	startedEntries := 0

	for _, line := range lines {
		if entryParser.startsEntry(line) {
			entries = flushEntry(state, entries)
			startedEntries++
			state = entryParser.beginEntry(line, startedEntries)
			continue
		}

		switch current := state.(type) {
		case idleState:
			// Text before the first entry has nothing to attach to.
		case *accumulatingState:
			entryParser.continueEntry(current, line)
		}
	}

	entries = flushEntry(state, entries)
	resolveCancellationReferences(entries)
	return entries
}

// entryHeaderEnd returns the index of the first line after the column
// header, or 0 when no header line is present.
func entryHeaderEnd(lines []string) int {
	for lineIndex, line := range lines {
		if containsAll(line, entryHeaderTokens) {
			return lineIndex + 1
		}
	}
	return 0
}

// startsEntry reports whether line opens a new entry: either it begins
// with a rank number, or it names a right type and carries a date.
func (entryParser *EntryParser) startsEntry(line string) bool {
	if matchOrderToken(line) != "" {
		return true
	}
	return entryParser.table.Matches(line) && ExtractDate(line) != ""
}

// matchOrderToken returns the leading rank number of line, or "" when the
// line has none or opens with a date.
func matchOrderToken(line string) string {
	if leadingDatePattern.MatchString(line) {
		return ""
	}
	if m := orderTokenPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

func (entryParser *EntryParser) beginEntry(line string, startedEntries int) *accumulatingState {
	order := startedEntries
	if token := matchOrderToken(line); token != "" {
		if explicitOrder, err := strconv.Atoi(token); err == nil {
			order = explicitOrder
		}
	}

	purpose, riskLevel := entryParser.table.Classify(line)
	entry := Entry{
		Order:     order,
		Date:      ExtractDate(line),
		Purpose:   purpose,
		Holder:    extractHolder(line),
		RiskLevel: riskLevel,
	}
	if entryParser.extractAmount {
		entry.Amount = ExtractAmount(line)
	}
	if containsAny(line, cancellationKeywords) {
		entry.Cancelled = true
		entry.RiskLevel = taxonomy.RiskInfo
	}

	return &accumulatingState{
		pending:     entry,
		sourceLines: []string{line},
	}
}

// continueEntry appends line to the pending entry and fills any field that
// is still unset.
func (entryParser *EntryParser) continueEntry(state *accumulatingState, line string) {
	state.sourceLines = append(state.sourceLines, line)
	pending := &state.pending

	if pending.Date == "" {
		pending.Date = ExtractDate(line)
	}
	if pending.Holder == "" {
		pending.Holder = extractHolder(line)
	}
	if entryParser.extractAmount && pending.Amount == 0 {
		pending.Amount = ExtractAmount(line)
	}
	if pending.Purpose == taxonomy.RightOther {
		if purpose, riskLevel := entryParser.table.Classify(line); purpose != taxonomy.RightOther {
			pending.Purpose = purpose
			pending.RiskLevel = riskLevel
		}
	}
	if containsAny(line, cancellationKeywords) {
		pending.Cancelled = true
	}
	if pending.Cancelled {
		pending.RiskLevel = taxonomy.RiskInfo
	}
}

// flushEntry appends the pending entry, if any, when its purpose resolved.
func flushEntry(state entryState, entries []Entry) []Entry {
	switch current := state.(type) {
	case idleState:
		return entries
	case *accumulatingState:
		if current.pending.Purpose == taxonomy.RightOther {
			return entries
		}
		entry := current.pending
		entry.Detail = strings.Join(current.sourceLines, "\n")
		return append(entries, entry)
	}
	return entries
}

// resolveCancellationReferences marks entries cancelled when a cancelled
// entry of the same section refers to them by rank ("3번...말소").
func resolveCancellationReferences(entries []Entry) {
	orderIndex := make(map[int]int, len(entries))
	for entryIndex, entry := range entries {
		if _, seen := orderIndex[entry.Order]; !seen {
			orderIndex[entry.Order] = entryIndex
		}
	}

	for _, entry := range entries {
		if !entry.Cancelled {
			continue
		}
		for _, referencedOrder := range cancellationReferences(entry.Detail) {
			if referencedOrder == entry.Order {
				continue
			}
			if targetIndex, ok := orderIndex[referencedOrder]; ok {
				entries[targetIndex].Cancelled = true
				entries[targetIndex].RiskLevel = taxonomy.RiskInfo
			}
		}
	}
}

// cancellationReferences returns the rank numbers referenced by "N번...말소"
// lines in detail, in line order.
func cancellationReferences(detail string) []int {
	var references []int
	for _, line := range strings.Split(detail, "\n") {
		m := cancellationReferencePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if referencedOrder, err := strconv.Atoi(m[1]); err == nil {
			references = append(references, referencedOrder)
		}
	}
	return references
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func containsAll(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if !strings.Contains(text, keyword) {
			return false
		}
	}
	return true
}
