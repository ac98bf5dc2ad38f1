// Package domain holds the records served to the presentation layer.
package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Category identifies a cacheable content category.
type Category string

const (
	CategoryAINews    Category = "ai_news"
	CategoryPhoneNews Category = "phone_news"
)

// Categories lists every cacheable category in display order.
var Categories = []Category{CategoryAINews, CategoryPhoneNews}

// ParseCategory maps a user-supplied name onto a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Kind selects the record shape a raw payload is normalized into.
type Kind string

const (
	KindAINewsList        Kind = "ai_news_list"
	KindPhoneSpecSheet    Kind = "phone_spec_sheet"
	KindComparison        Kind = "comparison"
	KindPhoneSearchResult Kind = "phone_search_result"
	KindStats             Kind = "stats"
)

// Kind returns the record shape stored under the category.
func (c Category) Kind() Kind {
	switch c {
	case CategoryPhoneNews:
		return KindPhoneSpecSheet
	default:
		return KindAINewsList
	}
}

// Placeholder is rendered for a spec category the backend did not supply.
const Placeholder = "Not specified"

// Tie is the betterPhone value when neither phone wins.
const Tie = "Tie"

// SpecKeys is the closed specification-category vocabulary, in display order.
var SpecKeys = []string{
	"networks",
	"dimensions",
	"weight",
	"materials",
	"water_resistance",
	"display",
	"processor",
	"gpu",
	"memory_storage",
	"rear_cameras",
	"front_camera",
	"video",
	"battery_charging",
	"operating_system",
	"connectivity",
	"sensors",
	"colors",
}

var specLabels = map[string]string{
	"networks":         "Networks",
	"dimensions":       "Dimensions",
	"weight":           "Weight",
	"materials":        "Materials",
	"water_resistance": "Water resistance",
	"display":          "Display",
	"processor":        "Processor",
	"gpu":              "GPU",
	"memory_storage":   "Memory & storage",
	"rear_cameras":     "Rear cameras",
	"front_camera":     "Front camera",
	"video":            "Video",
	"battery_charging": "Battery & charging",
	"operating_system": "Operating system",
	"connectivity":     "Connectivity",
	"sensors":          "Sensors",
	"colors":           "Colors",
}

// IsSpecKey reports whether key belongs to the vocabulary.
func IsSpecKey(key string) bool {
	_, ok := specLabels[key]
	return ok
}

// SpecLabel returns the human-readable label for a vocabulary key.
func SpecLabel(key string) string {
	if l, ok := specLabels[key]; ok {
		return l
	}
	return key
}

// Record is any normalized result handed to the presentation layer.
type Record interface {
	Kind() Kind
}

// AINewsItem is one verified news fact.
type AINewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// AINewsList is the ordered result of the ai_news category.
type AINewsList struct {
	Items []AINewsItem `json:"ai_news"`
}

func (AINewsList) Kind() Kind { return KindAINewsList }

// PhoneSpecSheet maps every vocabulary key to a value. Name is optional
// metadata and never part of Specs. The same shape serves the phone_news
// category and phone searches; SheetKind tells them apart.
type PhoneSpecSheet struct {
	Name      string            `json:"name,omitempty"`
	Specs     map[string]string `json:"specs"`
	SheetKind Kind              `json:"-"`
}

// Kind reports SheetKind, defaulting to KindPhoneSpecSheet.
func (s PhoneSpecSheet) Kind() Kind {
	if s.SheetKind == "" {
		return KindPhoneSpecSheet
	}
	return s.SheetKind
}

// Rows returns the sheet as label/value pairs in vocabulary order.
func (s PhoneSpecSheet) Rows() [][2]string {
	rows := make([][2]string, 0, len(SpecKeys))
	for _, k := range SpecKeys {
		v, ok := s.Specs[k]
		if !ok {
			v = Placeholder
		}
		rows = append(rows, [2]string{SpecLabel(k), v})
	}
	return rows
}

// PhoneSpec is one comparison row.
type PhoneSpec struct {
	Feature string `json:"feature"`
	Phone1  string `json:"phone1"`
	Phone2  string `json:"phone2"`
}

// ComparisonResult is the outcome of comparing two phones.
type ComparisonResult struct {
	Phone1      string      `json:"phone1"`
	Phone2      string      `json:"phone2"`
	Specs       []PhoneSpec `json:"specs"`
	Verdict     string      `json:"verdict"`
	BetterPhone string      `json:"betterPhone"`
}

func (ComparisonResult) Kind() Kind { return KindComparison }

// IsTie reports whether no phone was declared better.
func (c ComparisonResult) IsTie() bool { return c.BetterPhone == Tie }

// StatsResult is an open-ended analytic summary for a queried phone.
type StatsResult struct {
	Query  string         `json:"query"`
	Fields map[string]any `json:"fields"`
}

func (StatsResult) Kind() Kind { return KindStats }

// Keys returns the field names in a stable order.
func (s StatsResult) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value renders the field under key as display text.
func (s StatsResult) Value(key string) string {
	return FormatStat(s.Fields[key])
}

// StatLabel turns a snake_case statistic key into "Snake case".
func StatLabel(key string) string {
	s := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if s == "" {
		return key
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// FormatStat renders a decoded JSON value as one line of text.
func FormatStat(v any) string {
	switch t := v.(type) {
	case nil:
		return Placeholder
	case string:
		if strings.TrimSpace(t) == "" {
			return Placeholder
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, FormatStat(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		nested := StatsResult{Fields: t}
		parts := make([]string, 0, len(t))
		for _, k := range nested.Keys() {
			parts = append(parts, StatLabel(k)+": "+nested.Value(k))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(t)
	}
}
