package matching

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Engine ranks candidates and postings under a fixed Config.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg     Config
	workers int
	logger  *zap.Logger
}

type Option func(*Engine)

// WithWorkers spreads score computation over n goroutines. Values below 2
// keep scoring on the calling goroutine. Ordering is unaffected.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine validates cfg and returns an engine for it.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Score(c Candidate, p Posting) MatchResult {
	return Score(e.cfg, c, p)
}

// Ranking is the full candidate-centric result table.
type Ranking struct {
	CandidateID string
	Results     []MatchResult
	TopN        int
	// Skipped counts postings excluded for lacking an ID.
	Skipped int
}

func (r *Ranking) Len() int {
	return len(r.Results)
}

// Top returns the first min(TopN, Len()) results.
func (r *Ranking) Top() []MatchResult {
	n := r.TopN
	if n > len(r.Results) {
		n = len(r.Results)
	}
	return r.Results[:n]
}

// RankForCandidate scores c against every posting and sorts the results by
// descending score. Equal scores keep catalogue order.
func (e *Engine) RankForCandidate(c Candidate, postings []Posting, topN int) *Ranking {
	if topN < 0 {
		topN = 0
	}

	valid, skipped := validPostings(postings)
	results := make([]MatchResult, len(valid))
	e.parallel(len(valid), func(i int) {
		results[i] = e.Score(c, valid[i])
	})

	sortResults(results)

	e.logger.Debug("candidate ranked",
		zap.String("candidate_id", c.ID),
		zap.Int("postings", len(valid)),
		zap.Int("skipped_postings", skipped),
		zap.Int("top", topN),
	)

	return &Ranking{
		CandidateID: c.ID,
		Results:     results,
		TopN:        topN,
		Skipped:     skipped,
	}
}

// PostingSummary reports how a posting's capacity was filled.
type PostingSummary struct {
	InternshipID string
	Capacity     Capacity
	Ranked       int
	Selected     int
}

// Allocation is the capacity-aware result table.
type Allocation struct {
	Results           []MatchResult
	Postings          []PostingSummary
	SkippedCandidates int
	SkippedPostings   int
}

func (a *Allocation) Len() int {
	return len(a.Results)
}

// ForPosting returns the selected rows of one posting in rank order.
func (a *Allocation) ForPosting(id string) []MatchResult {
	var out []MatchResult
	for _, r := range a.Results {
		if r.InternshipID == id {
			out = append(out, r)
		}
	}
	return out
}

// Candidates returns how many postings selected each candidate.
func (a *Allocation) Candidates() map[string]int {
	counts := make(map[string]int)
	for _, r := range a.Results {
		counts[r.CandidateID]++
	}
	return counts
}

// RankForCatalogue lets every posting rank all candidates and keep the top
// Capacity of them. A candidate may be selected by several postings.
func (e *Engine) RankForCatalogue(candidates []Candidate, postings []Posting) *Allocation {
	validCandidates, skippedCandidates := validCandidates(candidates)
	validPosts, skippedPostings := validPostings(postings)

	nc := len(validCandidates)
	scores := make([]MatchResult, len(validPosts)*nc)
	e.parallel(len(validPosts), func(pi int) {
		for ci, c := range validCandidates {
			scores[pi*nc+ci] = e.Score(c, validPosts[pi])
		}
	})

	alloc := &Allocation{
		Postings:          make([]PostingSummary, 0, len(validPosts)),
		SkippedCandidates: skippedCandidates,
		SkippedPostings:   skippedPostings,
	}

	for pi, p := range validPosts {
		row := scores[pi*nc : (pi+1)*nc]
		sortResults(row)

		keep := p.Capacity.Keep(len(row))
		alloc.Results = append(alloc.Results, row[:keep]...)
		alloc.Postings = append(alloc.Postings, PostingSummary{
			InternshipID: p.ID,
			Capacity:     p.Capacity,
			Ranked:       len(row),
			Selected:     keep,
		})
	}

	e.logger.Debug("catalogue allocated",
		zap.Int("candidates", nc),
		zap.Int("postings", len(validPosts)),
		zap.Int("selected", len(alloc.Results)),
		zap.Int("skipped_candidates", skippedCandidates),
		zap.Int("skipped_postings", skippedPostings),
	)

	return alloc
}

// parallel calls fn for every index in [0, n). Each index is visited exactly once.
func (e *Engine) parallel(n int, fn func(i int)) {
	workers := e.workers
	if workers > n {
		workers = n
	}
	if workers < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	// at most workers chunks, one goroutine each
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}()
	}
	wg.Wait()
}

// sortResults orders by descending score, keeps input order on ties and
// assigns 1-based ranks.
func sortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

func validPostings(in []Posting) ([]Posting, int) {
	out := make([]Posting, 0, len(in))
	for _, p := range in {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		out = append(out, p)
	}
	return out, len(in) - len(out)
}

func validCandidates(in []Candidate) ([]Candidate, int) {
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if strings.TrimSpace(c.ID) == "" {
			continue
		}
		out = append(out, c)
	}
	return out, len(in) - len(out)
}
