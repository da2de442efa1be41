package extract

import (
	"fmt"
	"io"

	"github.com/coolbeans/deungi/pkg/taxonomy"
)

// Parser parses registry documents with a fixed taxonomy.
type Parser struct {
	taxonomy          *taxonomy.Taxonomy
	keepRawText       bool
	ownershipParser   *EntryParser
	encumbranceParser *EntryParser
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithTaxonomy replaces the built-in classification tables.
func WithTaxonomy(tax *taxonomy.Taxonomy) ParserOption {
	return func(parser *Parser) {
		if tax != nil {
			parser.taxonomy = tax
		}
	}
}

// WithoutRawText drops the original text from parsed registries.
func WithoutRawText() ParserOption {
	return func(parser *Parser) {
		parser.keepRawText = false
	}
}

// NewParser creates a Parser. Without options it uses the built-in
// taxonomy and keeps the raw text on every Registry.
func NewParser(opts ...ParserOption) *Parser {
	parser := &Parser{
		taxonomy:    taxonomy.Default(),
		keepRawText: true,
	}
	for _, opt := range opts {
		opt(parser)
	}
	parser.ownershipParser = NewOwnershipParser(parser.taxonomy.Ownership)
	parser.encumbranceParser = NewEncumbranceParser(parser.taxonomy.Encumbrance)
	return parser
}

// Taxonomy returns the tables the parser classifies with.
func (parser *Parser) Taxonomy() *taxonomy.Taxonomy {
	return parser.taxonomy
}

// Parse converts raw registry text into a Registry. It never fails: empty
// or unrecognizable text yields empty sections and a zero summary.
func (parser *Parser) Parse(text string) *Registry {
	sections := SplitSections(NormalizeText(text))

	ownership := parser.ownershipParser.Parse(sections.Ownership)
	encumbrance := parser.encumbranceParser.Parse(sections.Encumbrance)

	registry := &Registry{
		Title:       ParseTitle(sections.Title),
		Ownership:   ownership,
		Encumbrance: encumbrance,
		Summary:     Summarize(ownership, encumbrance),
	}
	if parser.keepRawText {
		registry.RawText = text
	}
	return registry
}

// ParseReader reads all of r and parses it. Only read errors are returned.
func (parser *Parser) ParseReader(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return parser.Parse(string(data)), nil
}

var defaultParser = NewParser()

// Parse parses text with the built-in taxonomy.
func Parse(text string) *Registry {
	return defaultParser.Parse(text)
}
