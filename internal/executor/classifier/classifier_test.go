package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-market-intel/internal/entity"
)

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name         string
		title        string
		summary      string
		wantRelevant bool
		wantCategory entity.Category
	}{
		{
			name:         "currency headline with empty summary",
			title:        "Cedi depreciates against Dollar",
			wantRelevant: true,
			wantCategory: entity.CategoryEconomy,
		},
		{
			name:         "apartment opening",
			title:        "New apartment complex opens in Accra",
			wantRelevant: true,
			wantCategory: entity.CategoryRealEstate,
		},
		{
			name:         "sports",
			title:        "Local football match results",
			wantRelevant: false,
			wantCategory: entity.CategoryGeneral,
		},
		{
			name:         "match in summary only",
			title:        "Parliament resumes sitting",
			summary:      "Members will debate the mid-year BUDGET review.",
			wantRelevant: true,
			wantCategory: entity.CategoryEconomy,
		},
		{
			name:         "case insensitive multi-word term",
			title:        "Ministry of WORKS AND HOUSING announces audit",
			wantRelevant: true,
			wantCategory: entity.CategoryRealEstate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.title, tt.summary)
			assert.Equal(t, tt.wantRelevant, got.Relevant)
			assert.Equal(t, tt.wantCategory, got.Category)
			if !tt.wantRelevant {
				assert.Empty(t, got.Signals)
			}
		})
	}
}

func TestRealEstateWinsTieBreak(t *testing.T) {
	c := Default()

	for _, re := range RealEstateSignals {
		for _, econ := range EconomicSignals {
			got := c.Classify(econ+" news", "report about "+re)
			assert.True(t, got.Relevant)
			assert.Equal(t, entity.CategoryRealEstate, got.Category, "economic %q + real estate %q", econ, re)
		}
	}
}

func TestSignalsAreReported(t *testing.T) {
	got := Default().Classify("Mortgage rates climb as inflation bites", "")
	assert.Contains(t, got.Signals, "mortgage")
	assert.Contains(t, got.Signals, "inflation")
	assert.Equal(t, "mortgage", got.Signals[0])
}

func TestCustomVocabulary(t *testing.T) {
	c := New([]string{" Gold "}, nil)
	got := c.Classify("gold prices surge", "")
	assert.True(t, got.Relevant)
	assert.Equal(t, entity.CategoryEconomy, got.Category)
}
