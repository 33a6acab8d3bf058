package relevance

import (
	"strings"

	"BlackGlass/internal/domain"
)

// assetKeywords expands a coarse asset-class hint into concrete search terms.
var assetKeywords = map[domain.AssetClass][]string{
	domain.AssetPerson:         {"individual", "person", "personnel", "employee", "staff"},
	domain.AssetOrganization:   {"company", "organization", "business", "corporation", "enterprise", "firm"},
	domain.AssetInfrastructure: {"facility", "infrastructure", "building", "plant", "grid", "network"},
	domain.AssetDigital:        {"server", "database", "cloud", "software", "application", "system"},
	domain.AssetPhysical:       {"equipment", "hardware", "device", "machine", "vehicle"},
}

// AssetClassKeywords returns the expansion terms for an asset class, empty
// for "any" or unknown classes.
func AssetClassKeywords(class domain.AssetClass) []string {
	return assetKeywords[class]
}

// BuildQuery assembles a direct-search query: user keywords tokenized into
// individual words and the asset class expanded through the keyword table.
// The location stays outside the free text, so it keeps acting as a hard
// filter during scoring.
func BuildQuery(keywords []string, location string, class domain.AssetClass) domain.Query {
	var tokens []string
	for _, kw := range keywords {
		tokens = append(tokens, tokenize(kw)...)
	}
	return expandQuery(tokens, location, class)
}

// BuildReportQuery assembles the query a report job searches with. On top of
// BuildQuery it folds the location into the free text, which deliberately
// makes the location filter redundant (a boost rather than a hard exclusion)
// for report searches.
func BuildReportQuery(keywords []string, location string, class domain.AssetClass) domain.Query {
	var tokens []string
	for _, kw := range keywords {
		tokens = append(tokens, tokenize(kw)...)
	}
	if location != "" {
		tokens = append(tokens, tokenize(location)...)
	}
	return expandQuery(tokens, location, class)
}

func expandQuery(tokens []string, location string, class domain.AssetClass) domain.Query {
	if class != domain.AssetAny {
		tokens = append(tokens, assetKeywords[class]...)
	}
	return domain.Query{
		Keywords:   tokens,
		Location:   location,
		AssetClass: class,
	}
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}
