package matching

import (
	"reflect"
	"testing"
)

func weighted(t *testing.T) Config {
	t.Helper()
	cfg, err := Profile(ProfileWeighted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cfg
}

func TestScoreWeightedExample(t *testing.T) {
	t.Parallel()

	cfg := weighted(t)
	candidate := Candidate{
		ID:             "C1",
		Skills:         ParseSkills("Python, Excel"),
		Location:       "Patna",
		SectorInterest: "IT",
		Category:       CategorySC,
	}
	posting := Posting{
		ID:             "I1",
		RequiredSkills: ParseSkills("python,sql"),
		Location:       " patna ",
		Sector:         "Finance",
	}

	got := Score(cfg, candidate, posting)
	if got.Breakdown.Skills != 50 {
		t.Fatalf("expected skill contribution 50, got %v", got.Breakdown.Skills)
	}
	if got.Score != 80 {
		t.Fatalf("expected score 80, got %v (%+v)", got.Score, got.Breakdown)
	}
	if !reflect.DeepEqual(got.Breakdown.MatchedSkills, []string{"python"}) {
		t.Fatalf("unexpected matched skills: %v", got.Breakdown.MatchedSkills)
	}

	candidate.PastParticipation = true
	got = Score(cfg, candidate, posting)
	if got.Score != 70 {
		t.Fatalf("expected score 70 with past participation, got %v", got.Score)
	}
	if got.Breakdown.PastParticipation != -10 {
		t.Fatalf("expected penalty -10, got %v", got.Breakdown.PastParticipation)
	}
}

func TestScoreRules(t *testing.T) {
	t.Parallel()

	cfg := Config{
		SkillWeight:              2,
		LocationBonus:            3,
		SectorBonus:              5,
		QualificationBonus:       7,
		AffirmativeActionBonus:   11,
		PastParticipationPenalty: 13,
		ReservedCategories:       []Category{CategoryST},
	}

	tests := []struct {
		name      string
		candidate Candidate
		posting   Posting
		expect    Breakdown
	}{
		{
			name:      "empty records score zero",
			candidate: Candidate{},
			posting:   Posting{},
			expect:    Breakdown{},
		},
		{
			name:      "empty candidate skills never match",
			candidate: Candidate{Skills: ParseSkills("   ")},
			posting:   Posting{RequiredSkills: ParseSkills("go")},
			expect:    Breakdown{},
		},
		{
			name:      "empty locations do not match each other",
			candidate: Candidate{Location: " "},
			posting:   Posting{Location: ""},
			expect:    Breakdown{},
		},
		{
			name:      "sector match ignores case",
			candidate: Candidate{SectorInterest: "Health Care"},
			posting:   Posting{Sector: "health care"},
			expect:    Breakdown{Sector: 5},
		},
		{
			name:      "qualification is a substring match",
			candidate: Candidate{Qualification: "B.Tech"},
			posting:   Posting{QualificationRequired: "B.Tech / M.Tech"},
			expect:    Breakdown{Qualification: 7},
		},
		{
			name:      "missing qualification contributes nothing",
			candidate: Candidate{},
			posting:   Posting{QualificationRequired: "B.Tech"},
			expect:    Breakdown{},
		},
		{
			name:      "category outside reserved set",
			candidate: Candidate{Category: CategorySC},
			posting:   Posting{},
			expect:    Breakdown{},
		},
		{
			name:      "reserved category",
			candidate: Candidate{Category: CategoryST},
			posting:   Posting{},
			expect:    Breakdown{AffirmativeAction: 11},
		},
		{
			name: "all rules",
			candidate: Candidate{
				Skills:            ParseSkills("go,sql,docker"),
				Location:          "Pune",
				SectorInterest:    "IT",
				Qualification:     "mca",
				Category:          CategoryST,
				PastParticipation: true,
			},
			posting: Posting{
				RequiredSkills:        ParseSkills("Docker, Go"),
				Location:              "PUNE",
				Sector:                "it",
				QualificationRequired: "BCA or MCA",
			},
			expect: Breakdown{
				Skills:            4,
				Location:          3,
				Sector:            5,
				Qualification:     7,
				AffirmativeAction: 11,
				PastParticipation: -13,
				MatchedSkills:     []string{"go", "docker"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(cfg, tt.candidate, tt.posting)
			if !reflect.DeepEqual(got.Breakdown, tt.expect) {
				t.Fatalf("expected breakdown %+v, got %+v", tt.expect, got.Breakdown)
			}
			if got.Score != tt.expect.Total() {
				t.Fatalf("expected score %v, got %v", tt.expect.Total(), got.Score)
			}
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := weighted(t)
	c := Candidate{ID: "C", Skills: ParseSkills("a,b,c"), Location: "x", Category: CategoryOBC}
	p := Posting{ID: "P", RequiredSkills: ParseSkills("c,b"), Location: "X"}

	first := Score(cfg, c, p)
	for i := 0; i < 50; i++ {
		if got := Score(cfg, c, p); !reflect.DeepEqual(got, first) {
			t.Fatalf("expected identical result on call %d, got %+v vs %+v", i, got, first)
		}
	}
}

func TestScoreSkillWeightMonotonic(t *testing.T) {
	t.Parallel()

	c := Candidate{Skills: ParseSkills("go,rust"), Location: "Delhi"}
	overlapping := Posting{RequiredSkills: ParseSkills("go"), Location: "delhi"}
	disjoint := Posting{RequiredSkills: ParseSkills("java"), Location: "delhi"}

	prevOverlap, prevDisjoint := 0.0, 0.0
	for i, w := range []float64{0, 1, 5, 50, 500} {
		cfg := Config{SkillWeight: w, LocationBonus: 20}

		gotOverlap := Score(cfg, c, overlapping).Score
		gotDisjoint := Score(cfg, c, disjoint).Score

		if i > 0 && gotOverlap < prevOverlap {
			t.Fatalf("score decreased from %v to %v when weight grew to %v", prevOverlap, gotOverlap, w)
		}
		if i > 0 && gotDisjoint != prevDisjoint {
			t.Fatalf("score without overlap changed from %v to %v", prevDisjoint, gotDisjoint)
		}
		prevOverlap, prevDisjoint = gotOverlap, gotDisjoint
	}
}
