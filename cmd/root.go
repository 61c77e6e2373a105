package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/ranking"
	"github.com/spigell/skillmatch/internal/taxonomy"
)

const (
	app       = "skillmatch"
	envPrefix = "SKILLMATCH"
)

type Config struct {
	Profile  string          `mapstructure:"profile"`
	Jobs     string          `mapstructure:"jobs"`
	Taxonomy string          `mapstructure:"taxonomy"`
	Rank     *RankConfig     `mapstructure:"rank" validate:"required"`
	History  *HistoryConfig  `mapstructure:"history" validate:"required"`
	Learning *LearningConfig `mapstructure:"learning" validate:"required"`
}

type RankConfig struct {
	Query            string   `mapstructure:"query"`
	SortBy           string   `mapstructure:"sort-by" validate:"omitempty,oneof=match-desc salary-desc title-asc"`
	MinimumMatch     int      `mapstructure:"minimum-match" validate:"gte=0,lte=100"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	Limit            int      `mapstructure:"limit" validate:"gte=0"`
	Workers          int      `mapstructure:"workers" validate:"gte=0"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LearningConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillmatch scores a candidate profile against career categories and job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"profile":      envPrefix + "_PROFILE",
		"jobs":         envPrefix + "_JOBS",
		"history.path": envPrefix + "_HISTORY_PATH",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillmatch.yaml in current directory)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "a candidate profile file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rank.sort-by", ranking.SortMatchDesc)
	v.SetDefault("rank.minimum-match", 0)
	v.SetDefault("rank.limit", 0)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", app+".db")
	v.SetDefault("learning.enabled", true)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; flags and env are enough for a single run.
	// A file that exists but does not parse is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}

// prepare builds the logger and the validated config shared by every command.
func prepare() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Debug("starting", zap.String("version", version), zap.Any("config", config))

	return l, config
}

func loadTaxonomy(config *Config) (*taxonomy.Taxonomy, error) {
	if config.Taxonomy == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(config.Taxonomy)
}

func rankingConfig(config *Config) *ranking.Config {
	return &ranking.Config{
		Query:            config.Rank.Query,
		SortBy:           config.Rank.SortBy,
		MinimumMatch:     config.Rank.MinimumMatch,
		ExcludeCompanies: config.Rank.ExcludeCompanies,
		Limit:            config.Rank.Limit,
		Workers:          config.Rank.Workers,
	}
}

func profileLogger(l *zap.Logger, p *profile.Profile) *zap.Logger {
	if p == nil {
		return logger.WithFields(l)
	}
	return logger.WithProfileFields(l, p.Name, p.Interests)
}
