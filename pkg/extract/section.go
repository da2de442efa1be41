package extract

import (
	"regexp"
	"strings"
)

// Sections holds the raw substrings of the three registry sections.
type Sections struct {
	Title       string
	Ownership   string
	Encumbrance string
}

// sectionHeader describes one header in its three notations, tried in
// order: full-width brackets, ASCII brackets, bare text.
type sectionHeader struct {
	name  string
	tiers []*regexp.Regexp
}

// headerLocation is the byte span of a located header; start < 0 means
// the header was not found.
type headerLocation struct {
	start int
	end   int
}

func (location headerLocation) found() bool { return location.start >= 0 }

var (
	titleHeader       = newSectionHeader("표제부")
	ownershipHeader   = newSectionHeader("갑구")
	encumbranceHeader = newSectionHeader("을구")

	// sectionEndPattern marks text that follows the last real section: the
	// summary block appended to newer documents, and the 이하여백 filler.
	// Dash or rule decoration leading into the marker is part of it.
	sectionEndPattern = regexp.MustCompile(`[-=─━\s]*(?:주\s*요\s*등\s*기\s*사\s*항\s*요\s*약|이\s*하\s*여\s*백)`)
)

// newSectionHeader builds the header cascade for a word. Whitespace between
// syllables is tolerated in every tier ("갑 구", "표 제 부").
func newSectionHeader(word string) sectionHeader {
	syllables := make([]string, 0, len(word))
	for _, syllable := range word {
		syllables = append(syllables, regexp.QuoteMeta(string(syllable)))
	}
	spacedWord := strings.Join(syllables, `\s*`)

	return sectionHeader{
		name: word,
		tiers: []*regexp.Regexp{
			regexp.MustCompile(`【\s*` + spacedWord + `\s*】`),
			regexp.MustCompile(`\[\s*` + spacedWord + `\s*\]`),
			regexp.MustCompile(spacedWord),
		},
	}
}

// locate returns the position of the header using the first tier that
// matches anywhere in text.
func (header sectionHeader) locate(text string) headerLocation {
	for _, tier := range header.tiers {
		if loc := tier.FindStringIndex(text); loc != nil {
			return headerLocation{start: loc[0], end: loc[1]}
		}
	}
	return headerLocation{start: -1, end: -1}
}

// SplitSections slices text into the title, ownership and encumbrance
// sections. A missing header yields an empty section.
func SplitSections(text string) Sections {
	var sections Sections
	if text == "" {
		return sections
	}

	titleLocation := titleHeader.locate(text)
	ownershipLocation := ownershipHeader.locate(text)
	encumbranceLocation := encumbranceHeader.locate(text)

	if titleLocation.found() {
		titleEnd := len(text)
		for _, other := range []headerLocation{ownershipLocation, encumbranceLocation} {
			if other.found() && other.start >= titleLocation.end && other.start < titleEnd {
				titleEnd = other.start
			}
		}
		sections.Title = trimSection(text[titleLocation.end:titleEnd])
	}

	if ownershipLocation.found() {
		ownershipEnd := len(text)
		if encumbranceLocation.found() && encumbranceLocation.start >= ownershipLocation.end {
			ownershipEnd = encumbranceLocation.start
		}
		sections.Ownership = trimSection(text[ownershipLocation.end:ownershipEnd])
	}

	if encumbranceLocation.found() {
		sections.Encumbrance = trimSection(text[encumbranceLocation.end:])
	}

	return sections
}

// trimSection cuts a section at the first end marker and trims it.
func trimSection(section string) string {
	if loc := sectionEndPattern.FindStringIndex(section); loc != nil {
		section = section[:loc[0]]
	}
	return strings.TrimSpace(section)
}
