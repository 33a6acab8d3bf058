package report

import (
	"sort"
	"time"

	"BlackGlass/internal/domain"
)

const (
	threatHighRelevanceCutoff = 80
	threatRecentWindow        = 3 * 24 * time.Hour
)

// buildDocument assembles the structured report from scored search results:
// credibility tiers, intelligence categories, entity unions, and the
// aggregate threat level.
func buildDocument(items []domain.ScoredItem, query domain.Query, keywords []string, now time.Time) *domain.ReportDocument {
	groups := domain.SourceGroups{}
	for _, item := range items {
		switch item.Tags.Credibility {
		case domain.CredibilityHigh:
			groups.HighCredibility = append(groups.HighCredibility, item)
		case domain.CredibilityMedium:
			groups.MediumCredibility = append(groups.MediumCredibility, item)
		default:
			groups.StandardCredibility = append(groups.StandardCredibility, item)
		}
	}

	byCategory := make(map[string][]domain.ScoredItem)
	for _, item := range items {
		categories := item.Tags.Categories
		if len(categories) == 0 {
			categories = []string{"general"}
		}
		for _, category := range categories {
			byCategory[category] = append(byCategory[category], item)
		}
	}

	assessments := make(map[string]domain.CategoryAssessment, len(byCategory))
	for category, members := range byCategory {
		top := append([]domain.ScoredItem(nil), members...)
		sort.SliceStable(top, func(i, j int) bool {
			return top[i].RelevanceScore > top[j].RelevanceScore
		})
		if len(top) > 3 {
			top = top[:3]
		}
		assessments[category] = domain.CategoryAssessment{Count: len(members), TopArticles: top}
	}

	locations := stringUnion(items, func(t domain.Tags) []string { return t.Locations })
	organizations := stringUnion(items, func(t domain.Tags) []string { return t.Organizations })

	categoryNames := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categoryNames = append(categoryNames, category)
	}
	sort.Strings(categoryNames)

	return &domain.ReportDocument{
		Summary: domain.ReportSummary{
			Keywords:                keywords,
			LocationFocus:           query.Location,
			AssetClass:              query.AssetClass,
			TotalSources:            len(items),
			HighCredibilitySources:  len(groups.HighCredibility),
			MediumCredibilitySource: len(groups.MediumCredibility),
			IntelligenceCategories:  categoryNames,
			IdentifiedLocations:     locations,
			IdentifiedOrganizations: organizations,
		},
		ThreatAssessment: domain.ThreatAssessment{
			OverallThreatLevel: threatLevel(items, now),
			Categories:         assessments,
		},
		Sources:     groups,
		GeneratedAt: now,
	}
}

// threatLevel computes the aggregate assessment. Each factor caps
// independently: high-relevance volume at 40, recent high-credibility items
// at 30, cybersecurity-tagged items at 30.
func threatLevel(items []domain.ScoredItem, now time.Time) domain.ThreatLevel {
	if len(items) == 0 {
		return domain.ThreatLow
	}

	score := 0

	highRelevance := 0
	for _, item := range items {
		if item.RelevanceScore > threatHighRelevanceCutoff {
			highRelevance++
		}
	}
	score += capped(highRelevance*2, 40)

	recentHighCred := 0
	for _, item := range items {
		if item.Tags.Credibility == domain.CredibilityHigh && now.Sub(item.PublishedAt) < threatRecentWindow {
			recentHighCred++
		}
	}
	score += capped(recentHighCred*5, 30)

	cyber := 0
	for _, item := range items {
		for _, category := range item.Tags.Categories {
			if category == "cybersecurity" {
				cyber++
				break
			}
		}
	}
	score += capped(cyber*3, 30)

	switch {
	case score > 70:
		return domain.ThreatCritical
	case score > 50:
		return domain.ThreatHigh
	case score > 30:
		return domain.ThreatMedium
	default:
		return domain.ThreatLow
	}
}

func capped(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}

func stringUnion(items []domain.ScoredItem, pick func(domain.Tags) []string) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, v := range pick(item.Tags) {
			seen[v] = struct{}{}
		}
	}

	union := make([]string, 0, len(seen))
	for v := range seen {
		union = append(union, v)
	}
	sort.Strings(union)
	return union
}
