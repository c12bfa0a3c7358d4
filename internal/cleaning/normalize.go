package cleaning

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	// thousands separators seen in scraped values: comma, apostrophe
	// variants and non-breaking space
	thousandsRe = regexp.MustCompile(`(\d)[',’\x{00a0} ](\d{3})`)
)

// canonLabel lowercases a raw column label and collapses internal
// whitespace, so "Battery properties  Capacity" and
// "battery properties capacity" resolve to the same key.
func canonLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// firstNumber extracts the first numeric token from a unit-tagged value
// such as "4'400 mAh" or "66 dB". Thousands separators are stripped first.
func firstNumber(s string) (float64, bool) {
	s = stripThousands(s)
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	return parseFloat(m)
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func stripThousands(s string) string {
	for thousandsRe.MatchString(s) {
		s = thousandsRe.ReplaceAllString(s, "$1$2")
	}
	return s
}

// parsePrice strips currency tags and separators from a scraped price such
// as "CHF 1'299.–" and parses the remainder as a decimal.
func parsePrice(s string) (float64, bool) {
	s = stripThousands(s)
	s = strings.NewReplacer("CHF", "", "Fr.", "", "–", "", " ", " ").Replace(s)
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	return parseFloat(m)
}

// parseMinutes reads a duration value in the forms the spec tables use:
// "90 min", "1.5 h" or a bare number (taken as minutes).
func parseMinutes(s string) (float64, bool) {
	v, ok := firstNumber(s)
	if !ok {
		return 0, false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "min") {
		return v, true
	}
	if strings.Contains(lower, "h") {
		return v * 60, true
	}
	return v, true
}

// splitTags turns a delimiter-joined list value into normalized tags.
// Tags are lowercased and internal separators unified so casing and
// separator variants of the same tag collapse to one spelling.
func splitTags(s string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		tag := canonTag(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func canonTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// mergeColors combines the basic and exact colour columns into one value,
// preferring the basic column and unioning when both disagree.
func mergeColors(basic, exact string) string {
	basic, exact = strings.TrimSpace(basic), strings.TrimSpace(exact)
	switch {
	case basic == "":
		return exact
	case exact == "" || basic == exact:
		return basic
	}
	seen := make(map[string]bool)
	var parts []string
	for _, part := range strings.Split(basic+", "+exact, ",") {
		p := strings.TrimSpace(part)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}
