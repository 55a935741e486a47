package matching

import (
	"fmt"
	"strings"
)

// Category is the reservation category of a candidate.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryGeneral
	CategoryOBC
	CategorySC
	CategoryST
)

var categoryNames = map[Category]string{
	CategoryUnknown: "",
	CategoryGeneral: "GEN",
	CategoryOBC:     "OBC",
	CategorySC:      "SC",
	CategoryST:      "ST",
}

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{CategoryGeneral, CategoryOBC, CategorySC, CategoryST}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory maps a free-text category to the enum. Empty input is not an
// error; any other unrecognized value returns CategoryUnknown with ErrUnknownCategory.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return CategoryUnknown, nil
	case "GEN", "GENERAL":
		return CategoryGeneral, nil
	case "OBC":
		return CategoryOBC, nil
	case "SC":
		return CategorySC, nil
	case "ST":
		return CategoryST, nil
	default:
		return CategoryUnknown, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// SkillSet is an ordered set of normalized skill tokens.
type SkillSet []string

// ParseSkills splits a comma-delimited string into lower-cased, trimmed,
// de-duplicated tokens. Empty tokens are dropped.
func ParseSkills(s string) SkillSet {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	seen := make(map[string]bool, len(parts))
	out := make(SkillSet, 0, len(parts))
	for _, p := range parts {
		token := strings.ToLower(strings.TrimSpace(p))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

// Intersect returns the tokens of s that are also in other, in s order.
func (s SkillSet) Intersect(other SkillSet) []string {
	if len(s) == 0 || len(other) == 0 {
		return nil
	}

	lookup := make(map[string]bool, len(other))
	for _, t := range other {
		lookup[t] = true
	}

	var common []string
	for _, t := range s {
		if lookup[t] {
			common = append(common, t)
		}
	}
	return common
}

func (s SkillSet) String() string {
	return strings.Join(s, ",")
}

// Candidate is a single applicant profile.
type Candidate struct {
	ID                string
	Skills            SkillSet
	Location          string
	SectorInterest    string
	Category          Category
	PastParticipation bool
	Qualification     string
}
