// Package classifier decides whether a feed entry is relevant to the economy or
// real-estate desks and which of the two it belongs to.
package classifier

import (
	"strings"

	"golang-market-intel/internal/entity"
)

// EconomicSignals are the lowercase terms that mark macro-economic news.
var EconomicSignals = []string{
	"cedi", "dollar", "usd", "exchange rate", "forex", "inflation",
	"bank of ghana", "bog", "monetary policy", "interest rate", "mpc",
	"tax", "gra", "debt", "imf", "bailout", "budget", "finance", "gdp",
}

// RealEstateSignals are the lowercase terms that mark property and construction news.
var RealEstateSignals = []string{
	"housing", "rent", "land", "landlord", "tenant", "apartment",
	"construction", "infrastructure", "road", "development", "project",
	"estate", "property", "cement", "steel", "mortgage", "works and housing",
}

// Result is the verdict for one piece of text.
type Result struct {
	Relevant bool
	Category entity.Category
	// Signals lists every matched term, real-estate terms first.
	Signals []string
}

// Classifier matches text against two fixed vocabularies.
type Classifier struct {
	economic   []string
	realEstate []string
}

// New builds a classifier over the given vocabularies. Terms are lowercased.
func New(economic, realEstate []string) *Classifier {
	return &Classifier{
		economic:   lowerAll(economic),
		realEstate: lowerAll(realEstate),
	}
}

// Default returns a classifier over EconomicSignals and RealEstateSignals.
func Default() *Classifier {
	return New(EconomicSignals, RealEstateSignals)
}

// Classify scores title and summary. Any real-estate match wins the category
// over economic matches; with no match at all the text is not relevant.
func (c *Classifier) Classify(title, summary string) Result {
	blob := strings.ToLower(title + " " + summary)

	realEstate := matches(blob, c.realEstate)
	economic := matches(blob, c.economic)

	result := Result{
		Relevant: len(realEstate)+len(economic) > 0,
		Category: entity.CategoryGeneral,
		Signals:  append(realEstate, economic...),
	}
	switch {
	case len(realEstate) > 0:
		result.Category = entity.CategoryRealEstate
	case len(economic) > 0:
		result.Category = entity.CategoryEconomy
	}
	return result
}

func matches(blob string, vocabulary []string) []string {
	var found []string
	for _, term := range vocabulary {
		if term != "" && strings.Contains(blob, term) {
			found = append(found, term)
		}
	}
	return found
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		out = append(out, strings.ToLower(strings.TrimSpace(term)))
	}
	return out
}
