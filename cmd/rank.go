package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/ai"
	"github.com/spigell/intern-matcher/internal/dataset"
	"github.com/spigell/intern-matcher/internal/export"
	"github.com/spigell/intern-matcher/internal/filtering"
	"github.com/spigell/intern-matcher/internal/matching"
)

const (
	PromptEnterManually       = "Enter details manually"
	PromptShowAll             = "Show full results"
	PromptReportByPosting     = "Report by posting"
	PromptExportToFile        = "Export results to file"
	PromptDumpToTmpFile       = "Dump results to tmp file"
	PromptAppendToExcludeFile = "Append top matches to exclude file"
	PromptExit                = "Exit"

	manualCandidateID = "manual"
)

// inputMode is how the candidate for a ranking is obtained.
type inputMode int

const (
	inputByID inputMode = iota
	inputManual
)

func (m inputMode) String() string {
	if m == inputManual {
		return "manual"
	}
	return "by-id"
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank internships for one candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	addCommonFlags(rankCmd)

	rankCmd.Flags().StringP("candidate", "c", "", "candidate id to rank for (prompted when unset)")
	rankCmd.Flags().IntP("top", "n", -1, "number of top matches to show (default from the profile)")
	rankCmd.Flags().Bool("explain", false, "ask gemini to explain the top matches")
	rankCmd.Flags().BoolP("yes", "y", false, "do not ask for an action, export results and exit")
}

func rank(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	sess, err := newSession(ctx, cmd, modeRank, logger)
	if err != nil {
		logger.Fatal("preparing the run", zap.Error(err))
	}
	defer sess.Close()
	logger = sess.logger

	tables, err := sess.loadTables(ctx, cmd)
	if err != nil {
		logger.Fatal("loading tables", zap.Error(err))
	}

	candidate, mode, err := selectCandidate(cmd, tables)
	if err != nil {
		logger.Fatal("selecting a candidate", zap.Error(err))
	}
	sess.logger = sess.logger.With(zap.String("candidate_id", candidate.ID), zap.Stringer("input_mode", mode))
	logger = sess.logger

	topN := sess.engine.Config().TopN
	if n, _ := cmd.Flags().GetInt("top"); n >= 0 {
		topN = n
	}

	ranking, err := withCache(ctx, sess, modeRank, func() (*matching.Ranking, error) {
		return sess.engine.RankForCandidate(candidate, tables.Postings, topN), nil
	}, sess.engine.Config(), candidate, tables.Postings, topN)
	if err != nil {
		logger.Fatal("ranking internships", zap.Error(err))
	}

	if ranking.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no internships to rank"))
		return
	}

	logger.Info("internships ranked",
		zap.Int("count", ranking.Len()),
		zap.Int("top", len(ranking.Top())),
		zap.Int("skipped", ranking.Skipped),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Top %d internship matches for %s\n", len(ranking.Top()), candidate.ID)
	if err := printResults(cmd.OutOrStdout(), ranking.Top()); err != nil {
		logger.Fatal("printing results", zap.Error(err))
	}

	if explain, _ := cmd.Flags().GetBool("explain"); explain || (sess.config.AI != nil && sess.config.AI.Enabled) {
		explainTop(ctx, cmd, sess, candidate, ranking.Top())
	}

	autoApprove, _ := cmd.Flags().GetBool("yes")
	actions := rankActions(sess)
	action := PromptExportToFile
	for {
		if !autoApprove {
			prompt := promptui.Select{Label: "Proceed?", Items: actions}
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleRankAction(ctx, cmd, action, sess, ranking); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func rankActions(sess *session) []string {
	items := []string{PromptShowAll, PromptReportByPosting, PromptExportToFile, PromptDumpToTmpFile}
	if strings.TrimSpace(sess.config.ExcludeFile) != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	return append(items, PromptExit)
}

func handleRankAction(ctx context.Context, cmd *cobra.Command, action string, sess *session, ranking *matching.Ranking) error {
	logger := sess.logger

	switch action {
	case PromptShowAll:
		return printResults(cmd.OutOrStdout(), ranking.Results)
	case PromptReportByPosting:
		pretty, _ := json.MarshalIndent(export.ReportByPosting(ranking.Results), "", "  ")
		logger.Info(string(pretty), zap.Int("internships count", ranking.Len()))
		return nil
	case PromptExportToFile:
		return sess.exportResults(ctx, ranking.Results)
	case PromptDumpToTmpFile:
		filename, err := export.DumpToTmpFile(ranking.Results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(sess, ranking)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(sess *session, ranking *matching.Ranking) error {
	excludeFile := sess.config.ExcludeFile

	excluded, err := filtering.GetExcludedPostingsFromFile(excludeFile)
	if err != nil {
		return err
	}

	reason := fmt.Sprintf("top match for candidate %s", ranking.CandidateID)
	excluded.Append(filtering.NewExcludedFromResults(ranking.Top(), filtering.ExcludeActorUser, reason))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	sess.logger.Info("appended to exclude file",
		zap.String("filename", excludeFile),
		zap.Int("excluded", len(excluded.Items)),
	)
	return nil
}

func explainTop(ctx context.Context, cmd *cobra.Command, sess *session, candidate matching.Candidate, top []matching.MatchResult) {
	if len(top) == 0 {
		return
	}

	explainer, err := sess.newExplainer(ctx)
	if err != nil {
		sess.logger.Warn("skipping explanations", zap.Error(err))
		return
	}

	explanation, err := withCache(ctx, sess, "explain", func() (*ai.Explanation, error) {
		return explainer.Explain(ctx, candidate, top)
	}, candidate, top)
	if err != nil {
		sess.logger.Warn("explaining matches", zap.Error(err))
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", explanation.Summary)
	for _, s := range explanation.Suggestions {
		fmt.Fprintf(out, "  - %s\n", s)
	}
}

// selectCandidate resolves the --candidate flag or asks interactively.
func selectCandidate(cmd *cobra.Command, tables *dataset.Tables) (matching.Candidate, inputMode, error) {
	if id, _ := cmd.Flags().GetString("candidate"); strings.TrimSpace(id) != "" {
		c, ok := tables.FindCandidate(strings.TrimSpace(id))
		if !ok {
			return matching.Candidate{}, inputByID, fmt.Errorf("there is no such candidate id %s", id)
		}
		return c, inputByID, nil
	}

	items := append(tables.CandidateIDs(), PromptEnterManually)
	prompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: items,
		Size:  10,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(strings.TrimSpace(input)))
		},
	}

	idx, selected, err := prompt.Run()
	if err != nil {
		return matching.Candidate{}, inputByID, err
	}

	c, manual, err := candidateAt(tables, idx)
	if err != nil {
		return matching.Candidate{}, inputByID, fmt.Errorf("selecting %s: %w", selected, err)
	}
	if manual {
		c, err := promptCandidate()
		return c, inputManual, err
	}
	return c, inputByID, nil
}

// candidateAt maps a selector index to a candidate. The index right after the
// last candidate is the manual entry item, whatever the candidate ids are.
func candidateAt(tables *dataset.Tables, idx int) (matching.Candidate, bool, error) {
	switch {
	case idx == len(tables.Candidates):
		return matching.Candidate{}, true, nil
	case idx < 0 || idx > len(tables.Candidates):
		return matching.Candidate{}, false, fmt.Errorf("selection index %d is out of range", idx)
	}
	return tables.Candidates[idx], false, nil
}

func promptCandidate() (matching.Candidate, error) {
	ask := func(label, def string) (string, error) {
		p := promptui.Prompt{Label: label, Default: def, AllowEdit: true}
		return p.Run()
	}

	skills, err := ask("Skills (comma separated)", "Python, Excel")
	if err != nil {
		return matching.Candidate{}, err
	}
	location, err := ask("Preferred location", "Patna")
	if err != nil {
		return matching.Candidate{}, err
	}
	sector, err := ask("Sector of interest", "IT")
	if err != nil {
		return matching.Candidate{}, err
	}
	qualification, err := ask("Qualification (optional)", "")
	if err != nil {
		return matching.Candidate{}, err
	}

	categories := make([]string, 0, len(matching.Categories()))
	for _, c := range matching.Categories() {
		categories = append(categories, c.String())
	}
	_, rawCategory, err := (&promptui.Select{Label: "Category", Items: categories}).Run()
	if err != nil {
		return matching.Candidate{}, err
	}
	category, err := matching.ParseCategory(rawCategory)
	if err != nil {
		return matching.Candidate{}, err
	}

	_, past, err := (&promptui.Select{Label: "Past participation in an internship?", Items: []string{"No", "Yes"}}).Run()
	if err != nil {
		return matching.Candidate{}, err
	}

	return matching.Candidate{
		ID:                manualCandidateID,
		Skills:            matching.ParseSkills(skills),
		Location:          strings.TrimSpace(location),
		SectorInterest:    strings.TrimSpace(sector),
		Category:          category,
		PastParticipation: past == "Yes",
		Qualification:     strings.TrimSpace(qualification),
	}, nil
}
