// Package normalize coerces raw backend payloads into domain records.
//
// Partial damage is repaired by omission: a bad news item or comparison row
// is dropped and the rest of the payload survives. Only a payload missing
// its minimum shape fails, with a SchemaViolationError naming the field.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/errs"
)

// Normalize dispatches on kind. Comparison payloads need the two queried
// phone names in phones; stats payloads take the queried phone from
// phones[0]; other kinds ignore them.
func Normalize(kind domain.Kind, raw json.RawMessage, phones ...string) (domain.Record, error) {
	switch kind {
	case domain.KindAINewsList:
		return NewsList(raw)
	case domain.KindPhoneSpecSheet, domain.KindPhoneSearchResult:
		return SpecSheet(kind, raw)
	case domain.KindComparison:
		if len(phones) != 2 {
			return nil, fmt.Errorf("comparison needs exactly two phone names, got %d", len(phones))
		}
		return Comparison(raw, phones[0], phones[1])
	case domain.KindStats:
		var query string
		if len(phones) > 0 {
			query = phones[0]
		}
		return Stats(raw, query)
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}

func violation(kind domain.Kind, field, reason string) error {
	return &errs.SchemaViolationError{Kind: string(kind), Field: field, Reason: reason}
}

func decodeObject(kind domain.Kind, raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, violation(kind, "", "payload is not a JSON object")
	}
	return obj, nil
}

// NewsList expects {"ai_news": [...]}. Items without a non-empty title,
// description and absolute http(s) url are dropped.
func NewsList(raw json.RawMessage) (domain.AINewsList, error) {
	obj, err := decodeObject(domain.KindAINewsList, raw)
	if err != nil {
		return domain.AINewsList{}, err
	}
	field, ok := obj["ai_news"]
	if !ok {
		return domain.AINewsList{}, violation(domain.KindAINewsList, "ai_news", "missing")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(field, &elems); err != nil || elems == nil {
		return domain.AINewsList{}, violation(domain.KindAINewsList, "ai_news", "not an array")
	}

	list := domain.AINewsList{Items: make([]domain.AINewsItem, 0, len(elems))}
	for _, el := range elems {
		item, ok := newsItem(el)
		if ok {
			list.Items = append(list.Items, item)
		}
	}
	return list, nil
}

func newsItem(raw json.RawMessage) (domain.AINewsItem, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.AINewsItem{}, false
	}
	title, ok1 := nonEmptyString(fields["title"])
	desc, ok2 := nonEmptyString(fields["description"])
	link, ok3 := nonEmptyString(fields["url"])
	if !ok1 || !ok2 || !ok3 || !ValidURL(link) {
		return domain.AINewsItem{}, false
	}
	return domain.AINewsItem{Title: title, Description: desc, URL: link}, true
}

// ValidURL reports whether s is an absolute http or https URL.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// SpecSheet restricts the payload to the spec vocabulary. Unknown keys are
// discarded and absent ones are filled with domain.Placeholder. Keys match
// case-insensitively; when several spellings of one key appear, an exact
// match wins, then the first in document order.
func SpecSheet(kind domain.Kind, raw json.RawMessage) (domain.PhoneSpecSheet, error) {
	members, err := decodeMembers(kind, raw)
	if err != nil {
		return domain.PhoneSpecSheet{}, err
	}

	sheet := domain.PhoneSpecSheet{SheetKind: kind, Specs: make(map[string]string, len(domain.SpecKeys))}
	for _, exact := range []bool{true, false} {
		for _, m := range members {
			key := strings.ToLower(strings.TrimSpace(m.key))
			if (key == m.key) != exact {
				continue
			}
			switch {
			case key == "phone_name" || key == "name":
				var name string
				if sheet.Name == "" && json.Unmarshal(m.value, &name) == nil {
					sheet.Name = strings.TrimSpace(name)
				}
			case domain.IsSpecKey(key):
				if _, seen := sheet.Specs[key]; seen {
					continue
				}
				if s := scalarText(m.value); s != "" {
					sheet.Specs[key] = s
				}
			}
		}
	}
	for _, k := range domain.SpecKeys {
		if _, ok := sheet.Specs[k]; !ok {
			sheet.Specs[k] = domain.Placeholder
		}
	}
	return sheet, nil
}

type member struct {
	key   string
	value json.RawMessage
}

// decodeMembers reads a JSON object's members in document order.
func decodeMembers(kind domain.Kind, raw json.RawMessage) ([]member, error) {
	notObject := violation(kind, "", "payload is not a JSON object")

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, notObject
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, notObject
		}
		key, ok := tok.(string)
		if !ok {
			return nil, notObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, notObject
		}
		out = append(out, member{key: key, value: value})
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, notObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, notObject
	}
	return out, nil
}

// scalarText renders a JSON value as display text. Arrays of scalars are
// joined; objects and nulls render as empty.
func scalarText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			b, _ := json.Marshal(el)
			if s := scalarText(b); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

type rawComparison struct {
	Specs       []json.RawMessage `json:"specs"`
	Verdict     any               `json:"verdict"`
	BetterPhone any               `json:"betterPhone"`
}

// Comparison validates a two-phone comparison. betterPhone is matched
// case-insensitively against the queried names and becomes domain.Tie when
// it matches neither.
func Comparison(raw json.RawMessage, phone1, phone2 string) (domain.ComparisonResult, error) {
	if _, err := decodeObject(domain.KindComparison, raw); err != nil {
		return domain.ComparisonResult{}, err
	}
	var rc rawComparison
	if err := json.Unmarshal(raw, &rc); err != nil {
		return domain.ComparisonResult{}, violation(domain.KindComparison, "specs", "not an array")
	}

	res := domain.ComparisonResult{
		Phone1: phone1,
		Phone2: phone2,
		Specs:  make([]domain.PhoneSpec, 0, len(rc.Specs)),
	}
	for _, row := range rc.Specs {
		if spec, ok := specRow(row); ok {
			res.Specs = append(res.Specs, spec)
		}
	}
	if len(res.Specs) == 0 {
		return domain.ComparisonResult{}, violation(domain.KindComparison, "specs", "no valid rows")
	}

	if s, ok := rc.Verdict.(string); ok {
		res.Verdict = strings.TrimSpace(s)
	}
	better, _ := rc.BetterPhone.(string)
	res.BetterPhone = canonicalWinner(better, phone1, phone2)
	return res, nil
}

func specRow(raw json.RawMessage) (domain.PhoneSpec, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.PhoneSpec{}, false
	}
	feature, ok1 := nonEmptyString(fields["feature"])
	p1, ok2 := fields["phone1"].(string)
	p2, ok3 := fields["phone2"].(string)
	if !ok1 || !ok2 || !ok3 {
		return domain.PhoneSpec{}, false
	}
	return domain.PhoneSpec{Feature: feature, Phone1: strings.TrimSpace(p1), Phone2: strings.TrimSpace(p2)}, true
}

func canonicalWinner(better, phone1, phone2 string) string {
	b := strings.TrimSpace(better)
	switch {
	case b == "":
		return domain.Tie
	case strings.EqualFold(b, strings.TrimSpace(phone1)):
		return phone1
	case strings.EqualFold(b, strings.TrimSpace(phone2)):
		return phone2
	}
	return domain.Tie
}

// Stats requires a top-level object and passes its fields through.
func Stats(raw json.RawMessage, query string) (domain.StatsResult, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.StatsResult{}, violation(domain.KindStats, "", "payload is not a JSON object")
	}
	return domain.StatsResult{Query: query, Fields: fields}, nil
}
