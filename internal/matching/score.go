package matching

import "strings"

// Breakdown holds the contribution of each scoring rule.
type Breakdown struct {
	Skills            float64  `json:"skills"`
	Location          float64  `json:"location"`
	Sector            float64  `json:"sector"`
	Qualification     float64  `json:"qualification"`
	AffirmativeAction float64  `json:"affirmative_action"`
	PastParticipation float64  `json:"past_participation"`
	MatchedSkills     []string `json:"matched_skills,omitempty"`
}

// Total sums the rule contributions.
func (b Breakdown) Total() float64 {
	return b.Skills + b.Location + b.Sector + b.Qualification + b.AffirmativeAction + b.PastParticipation
}

// MatchResult is one scored (candidate, posting) pair.
type MatchResult struct {
	CandidateID    string    `json:"candidate_id"`
	InternshipID   string    `json:"internship_id"`
	Rank           int       `json:"rank"`
	Sector         string    `json:"sector,omitempty"`
	Location       string    `json:"location,omitempty"`
	RequiredSkills SkillSet  `json:"required_skills,omitempty"`
	Score          float64   `json:"score"`
	Breakdown      Breakdown `json:"breakdown"`
}

// Score computes the match of c against p under cfg. It is total: missing
// fields contribute nothing.
func Score(cfg Config, c Candidate, p Posting) MatchResult {
	var b Breakdown

	if matched := c.Skills.Intersect(p.RequiredSkills); len(matched) > 0 {
		b.MatchedSkills = matched
		b.Skills = cfg.SkillWeight * float64(len(matched))
	}

	if sameText(c.Location, p.Location) {
		b.Location = cfg.LocationBonus
	}

	if sameText(c.SectorInterest, p.Sector) {
		b.Sector = cfg.SectorBonus
	}

	if containsText(p.QualificationRequired, c.Qualification) {
		b.Qualification = cfg.QualificationBonus
	}

	if cfg.IsReserved(c.Category) {
		b.AffirmativeAction = cfg.AffirmativeActionBonus
	}

	if c.PastParticipation {
		b.PastParticipation = -cfg.PastParticipationPenalty
	}

	return MatchResult{
		CandidateID:    c.ID,
		InternshipID:   p.ID,
		Sector:         p.Sector,
		Location:       p.Location,
		RequiredSkills: p.RequiredSkills,
		Score:          b.Total(),
		Breakdown:      b,
	}
}

// sameText compares two non-empty strings ignoring case and surrounding space.
func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// containsText reports whether haystack contains a non-empty needle, ignoring case.
func containsText(haystack, needle string) bool {
	haystack = strings.ToLower(strings.TrimSpace(haystack))
	needle = strings.ToLower(strings.TrimSpace(needle))
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}
