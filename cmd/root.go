package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/logger"
	"github.com/spigell/hire-picker/internal/scoring"
	"github.com/spigell/hire-picker/internal/selection"
	"github.com/spigell/hire-picker/internal/server"
	"github.com/spigell/hire-picker/internal/store"
)

const (
	app       = "hire-picker"
	envPrefix = "HIRE_PICKER"
)

type Config struct {
	Listen         string           `mapstructure:"listen"`
	DataFile       string           `mapstructure:"data-file"`
	AllowedOrigins []string         `mapstructure:"allowed-origins"`
	Selection      selection.Config `mapstructure:"selection"`
	Scoring        scoring.Config   `mapstructure:"scoring"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hire-picker keeps a pool of job candidates and picks a diverse team from it",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hire-picker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("listen", ":8000")
	viper.SetDefault("data-file", "candidates.json")
	viper.SetDefault("allowed-origins", server.DefaultAllowedOrigins)

	sel := selection.DefaultConfig()
	viper.SetDefault("selection.team-size", sel.TeamSize)
	viper.SetDefault("selection.diversity-key", sel.DiversityKey)
	viper.SetDefault("selection.min-groups", sel.MinGroups)

	sc := scoring.DefaultConfig()
	viper.SetDefault("scoring.target-skills", sc.TargetSkills)
	viper.SetDefault("scoring.experience-cap", sc.ExperienceCap)
	viper.SetDefault("scoring.weights.skills", sc.Weights.Skills)
	viper.SetDefault("scoring.weights.experience", sc.Weights.Experience)
	viper.SetDefault("scoring.weights.education", sc.Weights.Education)
	viper.SetDefault("scoring.weights.availability", sc.Weights.Availability)
	viper.SetDefault("scoring.weights.salary", sc.Weights.Salary)
}

func initConfig() {
	// .env is optional; values already present in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional, but an explicit or broken one must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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

func newLogger() *zap.Logger {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

// newStore builds a store from the config. Datasets are persisted to dataFile when it is set.
func newStore(config *Config, dataFile string, logger *zap.Logger) (*store.Store, error) {
	return store.New(store.Options{
		Scoring:   config.Scoring,
		Selection: config.Selection,
		DataFile:  dataFile,
	}, logger)
}

// loadDataset reads a dataset file that must exist.
func loadDataset(path string) (candidate.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := candidate.ReadDataset(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

func logSkipped(logger *zap.Logger, errs []error) {
	for _, err := range errs {
		logger.Warn("skipped record", zap.Error(err))
	}
}
