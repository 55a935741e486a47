package matching

import (
	"fmt"
	"reflect"
	"testing"
)

func newEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func ids(results []MatchResult, candidate bool) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if candidate {
			out = append(out, r.CandidateID)
		} else {
			out = append(out, r.InternshipID)
		}
	}
	return out
}

func TestRankForCandidateOrdersAndKeepsTies(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	c := Candidate{ID: "C1", Skills: ParseSkills("python,excel"), Location: "Patna", SectorInterest: "IT"}
	postings := []Posting{
		{ID: "P1", RequiredSkills: ParseSkills("java")},
		{ID: "P2", RequiredSkills: ParseSkills("python"), Location: "Patna"},
		{ID: "P3", RequiredSkills: ParseSkills("excel"), Location: "patna"},
		{ID: "P4", RequiredSkills: ParseSkills("python,excel")},
		{ID: "P5", Sector: "it"},
	}

	r := e.RankForCandidate(c, postings, 3)

	expect := []string{"P4", "P2", "P3", "P5", "P1"}
	if got := ids(r.Results, false); !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected order %v, got %v", expect, got)
	}
	for i, res := range r.Results {
		if res.Rank != i+1 {
			t.Fatalf("expected rank %d at position %d, got %d", i+1, i, res.Rank)
		}
	}
	if got := ids(r.Top(), false); !reflect.DeepEqual(got, expect[:3]) {
		t.Fatalf("expected top %v, got %v", expect[:3], got)
	}
}

func TestRankForCandidateTiesFollowCatalogueOrder(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	c := Candidate{ID: "C"}

	postings := make([]Posting, 0, 20)
	expect := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("P%02d", i)
		postings = append(postings, Posting{ID: id})
		expect = append(expect, id)
	}

	for run := 0; run < 5; run++ {
		r := e.RankForCandidate(c, postings, 20)
		if got := ids(r.Results, false); !reflect.DeepEqual(got, expect) {
			t.Fatalf("run %d: expected catalogue order %v, got %v", run, expect, got)
		}
	}
}

func TestRankForCandidateTopBound(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	postings := []Posting{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}

	tests := []struct {
		postings []Posting
		top      int
		expect   int
	}{
		{postings, 3, 3},
		{postings, 5, 4},
		{postings, 0, 0},
		{postings, -1, 0},
		{nil, 3, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_postings_top_%d", len(tt.postings), tt.top), func(t *testing.T) {
			t.Parallel()
			r := e.RankForCandidate(Candidate{ID: "C"}, tt.postings, tt.top)
			if len(r.Top()) != tt.expect {
				t.Fatalf("expected %d top results, got %d", tt.expect, len(r.Top()))
			}
			if r.Len() != len(tt.postings) {
				t.Fatalf("expected full table of %d, got %d", len(tt.postings), r.Len())
			}
		})
	}
}

func TestRankForCandidateEmptyCatalogue(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	r := e.RankForCandidate(Candidate{ID: "C", Skills: ParseSkills("go")}, nil, 3)
	if r.Len() != 0 || len(r.Top()) != 0 {
		t.Fatalf("expected empty ranking, got %+v", r)
	}
}

func TestRankForCandidateEmptySkills(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	postings := []Posting{
		{ID: "A", RequiredSkills: ParseSkills("go")},
		{ID: "B", RequiredSkills: ParseSkills("python, sql")},
	}

	r := e.RankForCandidate(Candidate{ID: "C", Skills: ParseSkills("")}, postings, 5)
	for _, res := range r.Results {
		if res.Breakdown.Skills != 0 {
			t.Fatalf("expected zero skill contribution for %s, got %v", res.InternshipID, res.Breakdown.Skills)
		}
	}
}

func TestRankForCandidateSkipsMalformedPostings(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	r := e.RankForCandidate(Candidate{ID: "C"}, []Posting{{ID: ""}, {ID: "A"}, {ID: "  "}}, 5)
	if r.Skipped != 2 {
		t.Fatalf("expected 2 skipped postings, got %d", r.Skipped)
	}
	if got := ids(r.Results, false); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected only A, got %v", got)
	}
}

func TestRankForCatalogueCapacityTie(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	posting := Posting{
		ID:             "P1",
		RequiredSkills: ParseSkills("python"),
		Location:       "Patna",
		Sector:         "IT",
		Capacity:       Limit(2),
	}
	candidates := []Candidate{
		{ID: "C70", Skills: ParseSkills("python"), Location: "Patna"},
		{ID: "C90a", Skills: ParseSkills("python"), Location: "Patna", SectorInterest: "IT"},
		{ID: "C90b", Skills: ParseSkills("python"), Location: "patna", SectorInterest: "it"},
	}

	a := e.RankForCatalogue(candidates, []Posting{posting})

	if got := ids(a.Results, true); !reflect.DeepEqual(got, []string{"C90a", "C90b"}) {
		t.Fatalf("expected the two 90-scorers in input order, got %v", got)
	}
	for _, r := range a.Results {
		if r.Score != 90 {
			t.Fatalf("expected score 90, got %v for %s", r.Score, r.CandidateID)
		}
	}
}

func TestRankForCatalogueCapacityCap(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))

	candidates := make([]Candidate, 0, 7)
	for i := 0; i < 7; i++ {
		candidates = append(candidates, Candidate{ID: fmt.Sprintf("C%d", i), Skills: ParseSkills("go")})
	}
	candidates = append(candidates, Candidate{ID: ""})

	postings := []Posting{
		{ID: "zero", Capacity: Limit(0)},
		{ID: "three", Capacity: Limit(3), RequiredSkills: ParseSkills("go")},
		{ID: "many", Capacity: Limit(100)},
		{ID: "open", Capacity: Unlimited()},
	}

	a := e.RankForCatalogue(candidates, postings)

	expect := map[string]int{"zero": 0, "three": 3, "many": 7, "open": 7}
	for id, n := range expect {
		if got := len(a.ForPosting(id)); got != n {
			t.Fatalf("expected %d rows for %s, got %d", n, id, got)
		}
	}
	if a.SkippedCandidates != 1 {
		t.Fatalf("expected 1 skipped candidate, got %d", a.SkippedCandidates)
	}
	if len(a.Postings) != 4 || a.Postings[1].Selected != 3 || a.Postings[1].Ranked != 7 {
		t.Fatalf("unexpected posting summaries: %+v", a.Postings)
	}
}

func TestRankForCatalogueEmissionOrderAndMultiAssignment(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	candidates := []Candidate{
		{ID: "A", Skills: ParseSkills("go")},
		{ID: "B", Skills: ParseSkills("go,sql")},
	}
	postings := []Posting{
		{ID: "P1", RequiredSkills: ParseSkills("go,sql"), Capacity: Unlimited()},
		{ID: "P2", RequiredSkills: ParseSkills("go"), Capacity: Limit(1)},
	}

	a := e.RankForCatalogue(candidates, postings)

	var got []string
	for _, r := range a.Results {
		got = append(got, r.InternshipID+"/"+r.CandidateID)
	}
	expect := []string{"P1/B", "P1/A", "P2/A"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}

	if counts := a.Candidates(); counts["A"] != 2 || counts["B"] != 1 {
		t.Fatalf("expected A selected twice and B once, got %v", counts)
	}
}

func TestRankForCatalogueEmptyInputs(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t))
	if a := e.RankForCatalogue(nil, []Posting{{ID: "P", Capacity: Unlimited()}}); a.Len() != 0 {
		t.Fatalf("expected no rows without candidates, got %d", a.Len())
	}
	if a := e.RankForCatalogue([]Candidate{{ID: "C"}}, nil); a.Len() != 0 {
		t.Fatalf("expected no rows without postings, got %d", a.Len())
	}
}

func TestRankForCatalogueUnsetCapacityKeepsEveryone(t *testing.T) {
	t.Parallel()

	var zero Capacity
	if !zero.IsUnlimited() || zero.String() != "unlimited" {
		t.Fatalf("expected zero capacity to be unlimited, got %s", zero)
	}

	e := newEngine(t, weighted(t))
	candidates := []Candidate{{ID: "C1"}, {ID: "C2"}, {ID: "C3"}}

	a := e.RankForCatalogue(candidates, []Posting{{ID: "P1"}})
	if got := len(a.ForPosting("P1")); got != len(candidates) {
		t.Fatalf("expected %d rows for a posting without capacity, got %d", len(candidates), got)
	}
	if a.Postings[0].Selected != 3 || !a.Postings[0].Capacity.IsUnlimited() {
		t.Fatalf("unexpected posting summary: %+v", a.Postings[0])
	}
}

func TestParallelScoringMatchesSequential(t *testing.T) {
	t.Parallel()

	cfg := weighted(t)
	sequential := newEngine(t, cfg)
	concurrent := newEngine(t, cfg, WithWorkers(4))

	skills := []string{"go", "sql", "python", "excel", "java"}
	var candidates []Candidate
	var postings []Posting
	for i := 0; i < 23; i++ {
		candidates = append(candidates, Candidate{
			ID:       fmt.Sprintf("C%d", i),
			Skills:   ParseSkills(skills[i%5] + "," + skills[(i*3)%5]),
			Location: []string{"Pune", "Delhi"}[i%2],
			Category: Category(i % 5),
		})
	}
	for i := 0; i < 17; i++ {
		capacity := Limit(i % 4)
		if i%5 == 0 {
			capacity = Unlimited()
		}
		postings = append(postings, Posting{
			ID:             fmt.Sprintf("P%d", i),
			RequiredSkills: ParseSkills(skills[(i*2)%5]),
			Location:       []string{"Delhi", "Pune", "Goa"}[i%3],
			Capacity:       capacity,
		})
	}

	if s, c := sequential.RankForCatalogue(candidates, postings), concurrent.RankForCatalogue(candidates, postings); !reflect.DeepEqual(s, c) {
		t.Fatalf("expected identical allocations")
	}

	for _, cand := range candidates {
		s := sequential.RankForCandidate(cand, postings, 3)
		c := concurrent.RankForCandidate(cand, postings, 3)
		if !reflect.DeepEqual(s, c) {
			t.Fatalf("expected identical rankings for %s", cand.ID)
		}
	}
}

func TestRankingDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	e := newEngine(t, weighted(t), WithWorkers(2))
	postings := []Posting{
		{ID: "low"},
		{ID: "high", RequiredSkills: ParseSkills("go")},
	}
	candidates := []Candidate{{ID: "x"}, {ID: "y", Skills: ParseSkills("go")}}

	e.RankForCandidate(candidates[1], postings, 1)
	e.RankForCatalogue(candidates, postings)

	if postings[0].ID != "low" || candidates[0].ID != "x" {
		t.Fatalf("inputs were reordered: %v %v", postings, candidates)
	}
}

func TestParallelVisitsEveryIndexOnce(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{0, 1, 3, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			e := newEngine(t, weighted(t), WithWorkers(workers))
			visits := make([]int, 37)
			e.parallel(len(visits), func(i int) { visits[i]++ })

			for i, n := range visits {
				if n != 1 {
					t.Fatalf("expected index %d to be visited once, got %d", i, n)
				}
			}
		})
	}
}
