package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/ai"
	"github.com/spigell/intern-matcher/internal/ai/gemini"
	"github.com/spigell/intern-matcher/internal/cache"
	"github.com/spigell/intern-matcher/internal/dataset"
	"github.com/spigell/intern-matcher/internal/export"
	"github.com/spigell/intern-matcher/internal/filtering"
	"github.com/spigell/intern-matcher/internal/logger"
	"github.com/spigell/intern-matcher/internal/matching"
	"github.com/spigell/intern-matcher/internal/secrets"
	"github.com/spigell/intern-matcher/internal/sheets"
)

const (
	modeRank     = "rank"
	modeAllocate = "allocate"

	// customBase in scoring.base disables the profile overlay.
	customBase = "none"
)

var errExit = errors.New("exit requested")

// commonFlags maps flag names shared by rank and allocate to config keys.
var commonFlags = map[string]string{
	"profile":      "profile",
	"candidates":   "data.candidates",
	"internships":  "data.internships",
	"output":       "output.file",
	"format":       "output.format",
	"exclude-file": "exclude-file",
	"workers":      "workers",
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("profile", "p", "", fmt.Sprintf("scoring profile (%s)", strings.Join(matching.ProfileNames(), ", ")))
	cmd.Flags().String("candidates", "", "candidates table (csv)")
	cmd.Flags().String("internships", "", "internships table (csv)")
	cmd.Flags().StringP("output", "o", "", "file to export results to")
	cmd.Flags().StringP("format", "f", "", "export format: csv, json or yaml")
	cmd.Flags().StringP("exclude-file", "e", "", "special file with internships to exclude. Default is unset.")
	cmd.Flags().Int("workers", 0, "goroutines used for scoring (0 or 1 scores sequentially)")
	cmd.Flags().Bool("allow-duplicate-ids", false, "keep rows that reuse an already seen id")
}

// bindCommonFlags binds the executed command's flags. Binding happens at run
// time because rank and allocate share config keys.
func bindCommonFlags(cmd *cobra.Command) error {
	for flag, key := range commonFlags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

type session struct {
	config *Config
	logger *zap.Logger
	runID  string
	mode   string
	engine *matching.Engine
	cache  cache.Store
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func newSession(ctx context.Context, cmd *cobra.Command, mode string, l *zap.Logger) (*session, error) {
	if err := bindCommonFlags(cmd); err != nil {
		return nil, err
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	cfg, err := resolveScoring(config)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	l = logger.WithRunFields(l, runID, config.Profile, mode)

	engine, err := matching.NewEngine(cfg,
		matching.WithWorkers(config.Workers),
		matching.WithLogger(l),
	)
	if err != nil {
		return nil, err
	}

	l.Info("starting the intern-matcher", zap.String("version", version))
	l.Debug("effective scoring",
		zap.Float64("skill_weight", cfg.SkillWeight),
		zap.Float64("location_bonus", cfg.LocationBonus),
		zap.Float64("sector_bonus", cfg.SectorBonus),
		zap.Float64("qualification_bonus", cfg.QualificationBonus),
		zap.Float64("affirmative_action_bonus", cfg.AffirmativeActionBonus),
		zap.Float64("past_participation_penalty", cfg.PastParticipationPenalty),
		zap.Stringers("reserved_categories", cfg.ReservedCategories),
		zap.Int("top", cfg.TopN),
	)

	return &session{
		config: config,
		logger: l,
		runID:  runID,
		mode:   mode,
		engine: engine,
		cache:  openCache(ctx, config.Cache, l),
	}, nil
}

func (s *session) Close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("closing the cache", zap.Error(err))
		}
	}
}

// resolveScoring turns the profile name and the optional scoring section into
// a Config. A scoring section is overlaid on the selected profile unless its
// base is "none".
func resolveScoring(config *Config) (matching.Config, error) {
	profile := strings.TrimSpace(config.Profile)
	if profile == "" {
		profile = matching.DefaultProfile
	}

	spec := config.Scoring
	if spec.IsEmpty() {
		return matching.Profile(profile)
	}

	switch {
	case spec.Base == nil:
		spec.Base = &profile
	case strings.EqualFold(strings.TrimSpace(*spec.Base), customBase):
		spec.Base = nil
	}

	return spec.Build()
}

func openCache(ctx context.Context, cfg *CacheConfig, l *zap.Logger) cache.Store {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	if strings.TrimSpace(cfg.RedisURL) == "" {
		l.Warn("cache is enabled without redis, results are not kept between runs",
			zap.String("hint", "set cache.redis-url or REDIS_URL"),
		)
		return cache.NewMemory()
	}

	store, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		l.Warn("skipping the cache", zap.Error(err))
		return nil
	}
	return store
}

func (s *session) cacheTTL() time.Duration {
	if s.config.Cache == nil {
		return 0
	}
	return s.config.Cache.TTL
}

// withCache returns a cached value for the key built from parts or computes
// and stores it. Cache failures are logged and bypassed.
func withCache[T any](ctx context.Context, s *session, kind string, compute func() (T, error), parts ...any) (T, error) {
	if s.cache == nil {
		return compute()
	}

	key, err := cache.Key(kind, parts...)
	if err != nil {
		s.logger.Warn("skipping the cache", zap.Error(err))
		return compute()
	}

	var out T
	hit, err := cache.GetJSON(ctx, s.cache, key, &out)
	switch {
	case err != nil:
		s.logger.Warn("reading from the cache", zap.String("key", key), zap.Error(err))
	case hit:
		s.logger.Debug("cache hit", zap.String("key", key))
		return out, nil
	}

	out, err = compute()
	if err != nil {
		return out, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, out, s.cacheTTL()); err != nil {
		s.logger.Warn("writing to the cache", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// loadTables reads both tables and runs the record pipeline over them.
func (s *session) loadTables(ctx context.Context, cmd *cobra.Command) (*dataset.Tables, error) {
	data := s.config.Data
	if data == nil {
		data = &DataConfig{}
	}

	tables, err := dataset.Load(ctx, data.Candidates, data.Internships, s.logger)
	if err != nil {
		return nil, err
	}

	pipeline := filtering.New([]filtering.Filter{
		filtering.NewMissingID(s.logger),
		filtering.NewDuplicateID(s.logger),
		filtering.NewExcludeFile(s.config.ExcludeFile, s.logger),
	}, s.logger)

	if allow, _ := cmd.Flags().GetBool("allow-duplicate-ids"); allow {
		pipeline.DisableByName("duplicate_id", "allowed by --allow-duplicate-ids")
	}

	for _, status := range pipeline.Describe() {
		s.logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return pipeline.RunFilters(ctx, tables)
}

// exportResults writes results to the configured file and, when configured, to Google Sheets.
func (s *session) exportResults(ctx context.Context, results []matching.MatchResult) error {
	out := s.config.Output
	if out == nil || strings.TrimSpace(out.File) == "" {
		return errors.New("output file is not configured")
	}

	format, err := export.ParseFormat(out.Format)
	if err != nil {
		return err
	}

	if err := export.WriteFile(out.File, format, results); err != nil {
		return fmt.Errorf("export results: %w", err)
	}
	s.logger.Info("results exported",
		zap.String("filename", out.File),
		zap.String("format", string(format)),
		zap.Int("rows", len(results)),
	)

	return s.exportToSheets(ctx, results)
}

func (s *session) exportToSheets(ctx context.Context, results []matching.MatchResult) error {
	cfg := s.config.Sheets
	if cfg == nil || strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil
	}

	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.CredentialsFile})
	if err != nil {
		return err
	}

	if err := client.ReplaceValues(ctx, cfg.SpreadsheetID, cfg.Tab, export.Values(results)); err != nil {
		return err
	}

	s.logger.Info("results pushed to google sheets",
		zap.String("spreadsheet_id", cfg.SpreadsheetID),
		zap.String("tab", cfg.Tab),
		zap.Int("rows", len(results)),
	)
	return nil
}

func (s *session) newExplainer(ctx context.Context) (ai.Explainer, error) {
	cfg := s.config.AI
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required for explanations")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	aiLogger := logger.WithAIFields(s.logger, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries,
		aiLogger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	return gemini.NewExplainer(generator, aiLogger, cfg.Gemini.MaxLogLength), nil
}

func printResults(w io.Writer, results []matching.MatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tINTERNSHIP\tSCORE\tSECTOR\tLOCATION\tREQUIRED SKILLS\tMATCHED SKILLS")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank,
			r.InternshipID,
			export.NewRow(r).Score,
			dash(r.Sector),
			dash(r.Location),
			dash(strings.Join(r.RequiredSkills, ", ")),
			dash(strings.Join(r.Breakdown.MatchedSkills, ", ")),
		)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
