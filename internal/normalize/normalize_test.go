package normalize

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/errs"
)

func requireViolation(t *testing.T, err error, field string) {
	t.Helper()
	var sv *errs.SchemaViolationError
	require.True(t, errors.As(err, &sv), "expected SchemaViolationError, got %v", err)
	assert.Equal(t, field, sv.Field)
}

func TestNewsListDropsMalformedItems(t *testing.T) {
	raw := json.RawMessage(`{"ai_news":[
		{"title":"Model A ships","description":"Lab releases model A.","url":"https://example.com/a"},
		{"title":"No link","description":"Missing url field."},
		{"title":"Model B","description":"Benchmarks published.","url":"https://example.com/b"}
	]}`)

	list, err := NewsList(raw)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Model A ships", list.Items[0].Title)
	assert.Equal(t, "https://example.com/b", list.Items[1].URL)
}

func TestNewsListItemValidation(t *testing.T) {
	tests := []struct {
		name string
		item string
		keep bool
	}{
		{"complete", `{"title":"t","description":"d","url":"https://x.io/p"}`, true},
		{"http ok", `{"title":"t","description":"d","url":"http://x.io"}`, true},
		{"padded", `{"title":"  t ","description":" d","url":" https://x.io "}`, true},
		{"empty title", `{"title":"","description":"d","url":"https://x.io"}`, false},
		{"numeric title", `{"title":7,"description":"d","url":"https://x.io"}`, false},
		{"relative url", `{"title":"t","description":"d","url":"/news/1"}`, false},
		{"javascript url", `{"title":"t","description":"d","url":"javascript:alert(1)"}`, false},
		{"not an object", `"headline"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := NewsList(json.RawMessage(`{"ai_news":[` + tt.item + `]}`))
			require.NoError(t, err)
			if tt.keep {
				assert.Len(t, list.Items, 1)
			} else {
				assert.Empty(t, list.Items)
			}
		})
	}
}

func TestNewsListShapeViolations(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing key", `{"news":[]}`, "ai_news"},
		{"not array", `{"ai_news":"none today"}`, "ai_news"},
		{"null array", `{"ai_news":null}`, "ai_news"},
		{"top-level array", `[{"title":"t"}]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewsList(json.RawMessage(tt.raw))
			requireViolation(t, err, tt.field)
		})
	}
}

func TestNewsListEmptyIsValid(t *testing.T) {
	list, err := NewsList(json.RawMessage(`{"ai_news":[]}`))
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestSpecSheetFillsMissingKeys(t *testing.T) {
	payload := map[string]any{}
	for _, k := range domain.SpecKeys[3:] {
		payload[k] = "value for " + k
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	sheet, err := SpecSheet(domain.KindPhoneSpecSheet, raw)
	require.NoError(t, err)
	require.Len(t, sheet.Specs, 17)
	for _, k := range domain.SpecKeys[:3] {
		assert.Equal(t, domain.Placeholder, sheet.Specs[k], k)
	}
	assert.Equal(t, "value for colors", sheet.Specs["colors"])
}

func TestSpecSheetDropsUnknownKeysAndCoerces(t *testing.T) {
	raw := json.RawMessage(`{
		"phone_name": "Pixel 10",
		"price": "$799",
		"Display": "6.3in OLED",
		"weight": 201,
		"colors": ["Obsidian", "Porcelain", ""],
		"gpu": null,
		"water_resistance": "   ",
		"sensors": {"nested": true}
	}`)

	sheet, err := SpecSheet(domain.KindPhoneSearchResult, raw)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 10", sheet.Name)
	assert.Len(t, sheet.Specs, 17)
	assert.NotContains(t, sheet.Specs, "price")
	assert.Equal(t, "6.3in OLED", sheet.Specs["display"])
	assert.Equal(t, "201", sheet.Specs["weight"])
	assert.Equal(t, "Obsidian, Porcelain", sheet.Specs["colors"])
	assert.Equal(t, domain.Placeholder, sheet.Specs["gpu"])
	assert.Equal(t, domain.Placeholder, sheet.Specs["water_resistance"])
	assert.Equal(t, domain.Placeholder, sheet.Specs["sensors"])
}

func TestSpecSheetKeyVariantsResolveDeterministically(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact wins over earlier variants", `{"Display":"B"," DISPLAY ":"C","display":"A"}`, "A"},
		{"exact wins over later variants", `{"display":"A","Display":"B"," DISPLAY ":"C"}`, "A"},
		{"first variant in document order", `{" DISPLAY ":"C","Display":"B"}`, "C"},
		{"empty exact falls back to variant", `{"display":"","Display":"B"}`, "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				sheet, err := SpecSheet(domain.KindPhoneSpecSheet, json.RawMessage(tt.raw))
				require.NoError(t, err)
				require.Equal(t, tt.want, sheet.Specs["display"])
			}
		})
	}
}

func TestSpecSheetNamePrefersExactKey(t *testing.T) {
	for i := 0; i < 50; i++ {
		sheet, err := SpecSheet(domain.KindPhoneSpecSheet,
			json.RawMessage(`{"Name":"pixel","phone_name":"Pixel 10","name":"Pixel"}`))
		require.NoError(t, err)
		require.Equal(t, "Pixel 10", sheet.Name)
	}
}

func TestSpecSheetCarriesKind(t *testing.T) {
	sheet, err := SpecSheet(domain.KindPhoneSearchResult, json.RawMessage(`{"display":"6.9in"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.KindPhoneSearchResult, sheet.Kind())

	sheet, err = SpecSheet(domain.KindPhoneSpecSheet, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.KindPhoneSpecSheet, sheet.Kind())
}

func TestSpecSheetRejectsNonObject(t *testing.T) {
	_, err := SpecSheet(domain.KindPhoneSpecSheet, json.RawMessage(`["display"]`))
	requireViolation(t, err, "")

	_, err = SpecSheet(domain.KindPhoneSpecSheet, json.RawMessage(`{"display":"a"} {}`))
	requireViolation(t, err, "")
}

func TestComparisonBetterPhone(t *testing.T) {
	tests := []struct {
		name   string
		better string
		want   string
	}{
		{"exact", "Pixel 10", "Pixel 10"},
		{"case-insensitive", "iphone 17", "iPhone 17"},
		{"padded", "  pixel 10 ", "Pixel 10"},
		{"unknown phone", "Galaxy S26", domain.Tie},
		{"explicit tie", "tie", domain.Tie},
		{"empty", "", domain.Tie},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(map[string]any{
				"specs":       []map[string]string{{"feature": "display", "phone1": "6.3", "phone2": "6.1"}},
				"verdict":     "Close call.",
				"betterPhone": tt.better,
			})
			require.NoError(t, err)

			res, err := Comparison(raw, "Pixel 10", "iPhone 17")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.BetterPhone)
			assert.Equal(t, "Close call.", res.Verdict)
		})
	}
}

func TestComparisonDropsIncompleteRows(t *testing.T) {
	raw := json.RawMessage(`{
		"specs": [
			{"feature":"display","phone1":"6.3","phone2":"6.1"},
			{"feature":"weight","phone1":"201 g"},
			{"feature":"","phone1":"a","phone2":"b"},
			{"feature":"gpu","phone1":"Mali","phone2":"Apple GPU"}
		],
		"verdict": "Pixel wins on display.",
		"betterPhone": "Pixel 10"
	}`)
	res, err := Comparison(raw, "Pixel 10", "iPhone 17")
	require.NoError(t, err)
	require.Len(t, res.Specs, 2)
	assert.Equal(t, "display", res.Specs[0].Feature)
	assert.Equal(t, "gpu", res.Specs[1].Feature)
	assert.False(t, res.IsTie())
}

func TestComparisonViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"specs absent", `{"verdict":"x","betterPhone":"A"}`},
		{"specs empty", `{"specs":[],"verdict":"x","betterPhone":"A"}`},
		{"specs wrong type", `{"specs":"display","betterPhone":"A"}`},
		{"all rows bad", `{"specs":[{"feature":"display"}],"betterPhone":"A"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Comparison(json.RawMessage(tt.raw), "A", "B")
			requireViolation(t, err, "specs")
		})
	}

	_, err := Comparison(json.RawMessage(`"nope"`), "A", "B")
	requireViolation(t, err, "")
}

func TestStats(t *testing.T) {
	res, err := Stats(json.RawMessage(`{"units_sold":"12M","market_share":18.5,"regions":["EU","US"]}`), "Galaxy S26")
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S26", res.Query)
	assert.Equal(t, 18.5, res.Fields["market_share"])
	assert.Equal(t, []string{"market_share", "regions", "units_sold"}, res.Keys())

	_, err = Stats(json.RawMessage(`[1,2,3]`), "x")
	requireViolation(t, err, "")
}

func TestNormalizeDispatch(t *testing.T) {
	rec, err := Normalize(domain.KindAINewsList, json.RawMessage(`{"ai_news":[]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.KindAINewsList, rec.Kind())

	rec, err = Normalize(domain.KindPhoneSearchResult, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Len(t, rec.(domain.PhoneSpecSheet).Specs, 17)
	assert.Equal(t, domain.KindPhoneSearchResult, rec.Kind())

	rec, err = Normalize(domain.KindStats, json.RawMessage(`{"units_sold":"10M"}`), "Galaxy S26")
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S26", rec.(domain.StatsResult).Query)

	rec, err = Normalize(domain.KindStats, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Empty(t, rec.(domain.StatsResult).Query)

	rec, err = Normalize(domain.KindComparison,
		json.RawMessage(`{"specs":[{"feature":"f","phone1":"a","phone2":"b"}],"verdict":"v","betterPhone":"b"}`), "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "B", rec.(domain.ComparisonResult).BetterPhone)

	_, err = Normalize(domain.KindComparison, json.RawMessage(`{}`))
	assert.Error(t, err)

	_, err = Normalize(domain.Kind("weather"), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestValidURL(t *testing.T) {
	assert.True(t, ValidURL("https://example.com/x"))
	assert.False(t, ValidURL("https://"))
	assert.False(t, ValidURL("ftp://example.com"))
	assert.False(t, ValidURL("example.com"))
}
