package export

import (
	"fmt"
	"strings"

	"github.com/spigell/intern-matcher/internal/matching"
)

// ReportByPosting groups results under a "<id> (<sector>, <location>)" key.
func ReportByPosting(results []matching.MatchResult) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range results {
		key := fmt.Sprintf("%s (%s, %s)", r.InternshipID, r.Sector, r.Location)
		report[key] = append(report[key], map[string]string{
			"candidate":      r.CandidateID,
			"rank":           fmt.Sprint(r.Rank),
			"score":          formatNumber(r.Score),
			"matched skills": strings.Join(r.Breakdown.MatchedSkills, ", "),
		})
	}
	return report
}
