package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	branddomain "github.com/insightpulse/scout/internal/brand/domain"
)

func testCatalog() ([]branddomain.Brand, []branddomain.BrandAlias) {
	brands := []branddomain.Brand{
		{ID: 1, OrgID: 10, Name: "Coca-Cola", NormalizedName: "coca cola", Active: true},
		{ID: 2, OrgID: 10, Name: "Lucky Me", NormalizedName: "lucky me", Active: true},
		{ID: 3, OrgID: 10, Name: "San Miguel Pale Pilsen", NormalizedName: "san miguel pale pilsen", Active: true},
		{ID: 4, OrgID: 10, Name: "Retired Brand", NormalizedName: "retired brand", Active: false},
	}
	aliases := []branddomain.BrandAlias{
		{ID: 100, OrgID: 10, BrandID: 1, Alias: "Coke", NormalizedAlias: "coke"},
		{ID: 101, OrgID: 10, BrandID: 2, Alias: "LuckyMe!", NormalizedAlias: "luckyme"},
	}
	return brands, aliases
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "punctuation", in: "Coca-Cola", want: "coca cola"},
		{name: "extra_space", in: "  Lucky   Me  ", want: "lucky me"},
		{name: "mixed_case", in: "SAN Miguel", want: "san miguel"},
		{name: "symbols_only", in: "!!!", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestMatchBrandTiers(t *testing.T) {
	brands, aliases := testCatalog()

	cases := []struct {
		name       string
		raw        string
		wantBrand  snowflake.ID
		wantMethod string
		wantScore  float64
	}{
		{name: "exact", raw: "Coca-Cola", wantBrand: 1, wantMethod: branddomain.MatchMethodExact, wantScore: 1.0},
		{name: "alias", raw: "coke", wantBrand: 1, wantMethod: branddomain.MatchMethodAlias, wantScore: 0.9},
		{name: "normalized", raw: "coca  cola!!", wantBrand: 1, wantMethod: branddomain.MatchMethodNormalized, wantScore: 0.75},
		{name: "token_overlap", raw: "san miguel pilsen", wantBrand: 3, wantMethod: branddomain.MatchMethodToken, wantScore: 0.6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := MatchBrand(tc.raw, brands, aliases, 0.6)
			require.NotNil(t, match)
			assert.Equal(t, tc.wantBrand, match.Brand.ID)
			assert.Equal(t, tc.wantMethod, match.Method)
			assert.InDelta(t, tc.wantScore, match.Confidence, 0.0001)
		})
	}
}

func TestMatchBrandRespectsMinimum(t *testing.T) {
	brands, aliases := testCatalog()

	match := MatchBrand("san miguel pilsen", brands, aliases, 0.7)
	assert.Nil(t, match)
}

func TestMatchBrandSkipsInactive(t *testing.T) {
	brands, aliases := testCatalog()

	match := MatchBrand("Retired Brand", brands, aliases, 0.5)
	assert.Nil(t, match)
}

func TestMatchBrandNoCatalog(t *testing.T) {
	match := MatchBrand("anything", nil, nil, 0.5)
	assert.Nil(t, match)
}

func TestMatchBrandEmptyInput(t *testing.T) {
	brands, aliases := testCatalog()

	assert.Nil(t, MatchBrand("", brands, aliases, 0.5))
	assert.Nil(t, MatchBrand("   ", brands, aliases, 0.5))
}
