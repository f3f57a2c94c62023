package service

import (
	"strings"
	"unicode"

	branddomain "github.com/insightpulse/scout/internal/brand/domain"
)

const (
	confidenceExact      = 1.0
	confidenceAlias      = 0.9
	confidenceNormalized = 0.75
	confidenceToken      = 0.6

	tokenOverlapFloor = 0.5
)

// Normalize lowercases and strips everything except letters and digits so
// "Coca-Cola" and "coca cola" compare equal.
func Normalize(raw string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// MatchBrand resolves a raw brand string against the catalog, walking the
// confidence tiers from strongest to weakest and stopping at the first hit
// that clears the minimum.
func MatchBrand(raw string, catalogBrands []branddomain.Brand, catalogAliases []branddomain.BrandAlias, minimum float64) *branddomain.Match {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	byID := make(map[int64]*branddomain.Brand, len(catalogBrands))
	for i := range catalogBrands {
		if !catalogBrands[i].Active {
			continue
		}
		byID[int64(catalogBrands[i].ID)] = &catalogBrands[i]
	}
	if len(byID) == 0 {
		return nil
	}

	if match := exactMatch(trimmed, byID); match != nil && match.Confidence >= minimum {
		return match
	}

	normalized := Normalize(trimmed)
	if normalized == "" {
		return nil
	}

	if match := aliasMatch(normalized, catalogAliases, byID); match != nil && match.Confidence >= minimum {
		return match
	}
	if match := normalizedMatch(normalized, byID); match != nil && match.Confidence >= minimum {
		return match
	}
	if match := tokenMatch(normalized, byID); match != nil && match.Confidence >= minimum {
		return match
	}
	return nil
}

func exactMatch(trimmed string, byID map[int64]*branddomain.Brand) *branddomain.Match {
	for _, brand := range byID {
		if strings.EqualFold(brand.Name, trimmed) {
			return &branddomain.Match{
				Brand:      brand,
				Confidence: confidenceExact,
				Method:     branddomain.MatchMethodExact,
			}
		}
	}
	return nil
}

func aliasMatch(normalized string, aliases []branddomain.BrandAlias, byID map[int64]*branddomain.Brand) *branddomain.Match {
	for i := range aliases {
		if aliases[i].NormalizedAlias != normalized {
			continue
		}
		brand, ok := byID[int64(aliases[i].BrandID)]
		if !ok {
			continue
		}
		return &branddomain.Match{
			Brand:      brand,
			Confidence: confidenceAlias,
			Method:     branddomain.MatchMethodAlias,
		}
	}
	return nil
}

func normalizedMatch(normalized string, byID map[int64]*branddomain.Brand) *branddomain.Match {
	for _, brand := range byID {
		if brand.NormalizedName == normalized {
			return &branddomain.Match{
				Brand:      brand,
				Confidence: confidenceNormalized,
				Method:     branddomain.MatchMethodNormalized,
			}
		}
	}
	return nil
}

func tokenMatch(normalized string, byID map[int64]*branddomain.Brand) *branddomain.Match {
	rawTokens := tokenSet(normalized)
	if len(rawTokens) == 0 {
		return nil
	}

	var best *branddomain.Brand
	bestOverlap := 0.0
	for _, brand := range byID {
		brandTokens := tokenSet(brand.NormalizedName)
		if len(brandTokens) == 0 {
			continue
		}
		overlap := overlapRatio(rawTokens, brandTokens)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = brand
		}
	}

	if best == nil || bestOverlap < tokenOverlapFloor {
		return nil
	}
	return &branddomain.Match{
		Brand:      best,
		Confidence: confidenceToken,
		Method:     branddomain.MatchMethodToken,
	}
}

func tokenSet(normalized string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, token := range strings.Fields(normalized) {
		tokens[token] = struct{}{}
	}
	return tokens
}

func overlapRatio(a, b map[string]struct{}) float64 {
	shared := 0
	for token := range a {
		if _, ok := b[token]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
