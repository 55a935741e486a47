package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/intern-matcher/internal/matching"
)

const (
	app       = "intern-matcher"
	envPrefix = "INTERN_MATCHER"
)

type Config struct {
	Profile     string               `mapstructure:"profile"`
	Scoring     matching.ProfileSpec `mapstructure:"scoring"`
	Data        *DataConfig          `mapstructure:"data"`
	ExcludeFile string               `mapstructure:"exclude-file"`
	Workers     int                  `mapstructure:"workers"`
	Output      *OutputConfig        `mapstructure:"output"`
	Cache       *CacheConfig         `mapstructure:"cache"`
	AI          *AIConfig            `mapstructure:"ai"`
	Sheets      *SheetsConfig        `mapstructure:"sheets"`
}

type DataConfig struct {
	Candidates  string `mapstructure:"candidates"`
	Internships string `mapstructure:"internships"`
}

type OutputConfig struct {
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis-url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	Tab             string `mapstructure:"tab"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "intern-matcher ranks internship postings for candidates with a transparent rule-based score",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("cache.redis-url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	viper.SetDefault("profile", matching.DefaultProfile)
	viper.SetDefault("data.candidates", "candidates.csv")
	viper.SetDefault("data.internships", "internships.csv")
	viper.SetDefault("output.file", "internship_matches.csv")
	viper.SetDefault("output.format", "csv")
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("sheets.tab", "Matches")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is intern-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Every key has a default or a flag, so only an explicit file is mandatory.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
