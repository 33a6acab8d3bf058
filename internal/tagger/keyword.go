// Package tagger provides the default keyword-list text classifier. It is a
// stand-in for a real NLP service and can be replaced through ports.Tagger.
package tagger

import (
	"strings"

	"BlackGlass/internal/domain"
	"BlackGlass/internal/ports"
)

var commonLocations = []string{
	"afghanistan", "africa", "albania", "algeria", "america", "argentina", "asia", "australia",
	"bangladesh", "belarus", "belgium", "brazil", "bulgaria", "canada", "china", "colombia",
	"denmark", "egypt", "europe", "france", "germany", "greece", "hong kong", "hungary", "india",
	"indonesia", "iran", "iraq", "ireland", "israel", "italy", "japan", "kazakhstan", "kenya",
	"korea", "kuwait", "latvia", "libya", "malaysia", "mexico", "middle east", "morocco",
	"netherlands", "new zealand", "nigeria", "norway", "pakistan", "palestine", "philippines",
	"poland", "portugal", "qatar", "romania", "russia", "saudi arabia", "serbia", "singapore",
	"south africa", "spain", "sweden", "switzerland", "syria", "taiwan", "thailand", "turkey",
	"ukraine", "united kingdom", "uk", "united states", "usa", "venezuela", "vietnam", "yemen",
}

var commonOrganizations = []string{
	"google", "microsoft", "apple", "amazon", "facebook", "meta", "twitter", "tesla", "ibm",
	"intel", "cisco", "huawei", "samsung", "sony", "nokia", "ericsson", "oracle", "sap",
	"alibaba", "tencent", "baidu", "xiaomi", "lenovo", "dell", "hp", "nato", "un", "who",
	"world bank", "imf", "wto", "european union", "eu", "opec", "fbi", "cia", "nsa", "gchq",
	"fsb", "pentagon", "white house", "kremlin", "congress", "senate", "parliament",
}

var highCredibilitySources = []string{
	"reuters", "bbc", "economist", "time", "bloomberg", "associated press", "ap",
	"wall street journal", "wsj", "washington post", "new york times", "nyt",
	"financial times", "ft",
}

var mediumCredibilitySources = []string{
	"cnn", "fox", "aljazeera", "the guardian", "the hill", "politico",
	"usa today", "business insider", "forbes", "zdnet", "techcrunch",
}

var categoryTerms = map[string][]string{
	"cybersecurity": {"cyber", "hack", "malware", "ransomware", "phishing",
		"data breach", "vulnerability", "exploit"},
	"geopolitical": {"government", "election", "president", "minister",
		"military", "war", "conflict", "treaty", "summit",
		"diplomatic", "embassy", "sanction"},
	"economic": {"economy", "market", "stock", "finance", "bank",
		"inflation", "trade", "investment", "currency", "gdp"},
	"infrastructure": {"infrastructure", "power grid", "pipeline", "telecom",
		"network", "bridge", "airport", "railway", "energy"},
}

// categoryOrder keeps Classify output deterministic across runs.
var categoryOrder = []string{"cybersecurity", "geopolitical", "economic", "infrastructure"}

// Keyword is the list-based Tagger implementation.
type Keyword struct{}

var _ ports.Tagger = (*Keyword)(nil)

// New builds the default tagger.
func New() *Keyword {
	return &Keyword{}
}

// Classify assigns intelligence categories to text; "general" when nothing
// more specific matches.
func (k *Keyword) Classify(text string) []string {
	lower := strings.ToLower(text)

	var categories []string
	for _, category := range categoryOrder {
		for _, term := range categoryTerms[category] {
			if strings.Contains(lower, term) {
				categories = append(categories, category)
				break
			}
		}
	}

	if len(categories) == 0 {
		categories = append(categories, "general")
	}
	return categories
}

// ExtractLocations returns known location names appearing in the text.
func (k *Keyword) ExtractLocations(text string) []string {
	return matchAll(text, commonLocations)
}

// ExtractOrganizations returns known organization names appearing in the text.
func (k *Keyword) ExtractOrganizations(text string) []string {
	return matchAll(text, commonOrganizations)
}

// CredibilityOf buckets a publisher name into a credibility tier.
func (k *Keyword) CredibilityOf(sourceName string) domain.CredibilityTier {
	lower := strings.ToLower(sourceName)
	for _, s := range highCredibilitySources {
		if strings.Contains(lower, s) {
			return domain.CredibilityHigh
		}
	}
	for _, s := range mediumCredibilitySources {
		if strings.Contains(lower, s) {
			return domain.CredibilityMedium
		}
	}
	return domain.CredibilityStandard
}

func matchAll(text string, candidates []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, candidate := range candidates {
		if strings.Contains(lower, candidate) {
			found = append(found, candidate)
		}
	}
	return found
}
