package roles

import "strings"

// Category is a coarse role bucket derived from free-text role strings.
type Category string

const (
	Technical  Category = "Technical"
	Managerial Category = "Managerial"
	Data       Category = "Data"
	Design     Category = "Design"
	General    Category = "General"
)

type group struct {
	category Category
	keywords []string
}

// groups is ordered by classification priority. General has no keywords and is
// the fallback.
var groups = [...]group{
	{category: Technical, keywords: []string{"engineer", "developer", "programmer", "technical", "software"}},
	{category: Managerial, keywords: []string{"manager", "lead", "director", "head"}},
	{category: Data, keywords: []string{"data", "scientist", "analyst", "analytics"}},
	{category: Design, keywords: []string{"design", "ux", "ui", "creative"}},
}

// Categories returns all categories in classification priority order.
func Categories() []Category {
	result := make([]Category, 0, len(groups)+1)
	for _, g := range groups {
		result = append(result, g.category)
	}
	return append(result, General)
}

// Keywords returns a copy of the keyword set for the category.
func Keywords(c Category) []string {
	for _, g := range groups {
		if g.category == c {
			return append([]string(nil), g.keywords...)
		}
	}
	return nil
}

// Classify maps a role string to the first category whose keywords it contains.
func Classify(role string) Category {
	normalized := normalize(role)
	for _, g := range groups {
		if containsAny(normalized, g.keywords) {
			return g.category
		}
	}
	return General
}

// Compatible reports whether a role detected from a resume fits the target role.
// Exact or substring containment wins before any category grouping is considered.
func Compatible(detected, target string) bool {
	d := normalize(detected)
	t := normalize(target)

	if d == t || strings.Contains(t, d) || strings.Contains(d, t) {
		return true
	}

	for _, g := range groups {
		if containsAny(d, g.keywords) && containsAny(t, g.keywords) {
			return true
		}
	}

	return false
}

// Mismatched is the negation of Compatible.
func Mismatched(detected, target string) bool {
	return !Compatible(detected, target)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
