package cmd

import (
	"context"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/matching"
	"github.com/spigell/intern-matcher/internal/util"
)

const previewLimit = 10

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Let every internship pick its best candidates up to its capacity",
	Run: func(cmd *cobra.Command, _ []string) {
		allocate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(allocateCmd)
	addCommonFlags(allocateCmd)
}

func allocate(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	sess, err := newSession(ctx, cmd, modeAllocate, logger)
	if err != nil {
		logger.Fatal("preparing the run", zap.Error(err))
	}
	defer sess.Close()
	logger = sess.logger

	tables, err := sess.loadTables(ctx, cmd)
	if err != nil {
		logger.Fatal("loading tables", zap.Error(err))
	}

	alloc, err := withCache(ctx, sess, modeAllocate, func() (*matching.Allocation, error) {
		return sess.engine.RankForCatalogue(tables.Candidates, tables.Postings), nil
	}, sess.engine.Config(), tables.Candidates, tables.Postings)
	if err != nil {
		logger.Fatal("allocating candidates", zap.Error(err))
	}

	reportAllocation(logger, alloc)

	if err := sess.exportResults(ctx, alloc.Results); err != nil {
		logger.Fatal("exporting results", zap.Error(err))
	}
}

func reportAllocation(logger *zap.Logger, alloc *matching.Allocation) {
	for _, p := range alloc.Postings {
		logger.Info("internship filled",
			zap.String("internship_id", p.InternshipID),
			zap.Stringer("capacity", p.Capacity),
			zap.Int("ranked", p.Ranked),
			zap.Int("selected", p.Selected),
		)
	}

	var multi []string
	for id, n := range alloc.Candidates() {
		if n > 1 {
			multi = append(multi, id)
		}
	}
	sort.Strings(multi)

	if len(multi) > 0 {
		logger.Info("candidates selected by several internships",
			zap.Int("count", len(multi)),
			zap.String("candidates", util.PreviewIDs(multi, previewLimit)),
		)
	}

	logger.Info("allocation finished",
		zap.Int("internships", len(alloc.Postings)),
		zap.Int("selected", alloc.Len()),
		zap.Int("skipped_candidates", alloc.SkippedCandidates),
		zap.Int("skipped_internships", alloc.SkippedPostings),
	)
}
