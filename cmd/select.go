package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/export"
	"github.com/spigell/hire-picker/internal/store"
)

var selectCmd = &cobra.Command{
	Use:   "select [dataset.json]",
	Short: "Auto-select a team from a dataset file without starting the API",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		selectTeam(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringP("export", "e", "", "write the team to an xlsx workbook")
	selectCmd.Flags().IntP("team-size", "n", 0, "number of candidates to pick (default 5)")
	selectCmd.Flags().StringP("diversity-key", "k", "", "attribute used for diversity: location, skill or education")

	viper.BindPFlag("selection.team-size", selectCmd.Flags().Lookup("team-size"))
	viper.BindPFlag("selection.diversity-key", selectCmd.Flags().Lookup("diversity-key"))
}

func selectTeam(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st := mustLoadStore(config, args, logger)

	result, err := st.AutoSelect()
	if err != nil {
		logger.Fatal("auto-select failed", zap.Error(err))
	}

	for _, pick := range result.Picks {
		logger.Info("picked",
			zap.Int("rank", pick.Rank),
			zap.Int("candidate_id", pick.Candidate.ID),
			zap.String("candidate_name", pick.Candidate.Name),
			zap.String("group", pick.Group),
			zap.Float64("score", pick.Candidate.Score),
			zap.String("reason", pick.Reason),
		)
	}

	if path, _ := cmd.Flags().GetString("export"); path != "" {
		exportTeam(st, path, logger)
	}
}

// mustLoadStore loads the dataset named in args, or the configured data file, into a
// store that does not persist anything.
func mustLoadStore(config *Config, args []string, logger *zap.Logger) *store.Store {
	path := config.DataFile
	if len(args) > 0 {
		path = args[0]
	}

	data, err := loadDataset(path)
	if err != nil {
		logger.Fatal("reading the dataset", zap.Error(err))
	}

	st, err := newStore(config, "", logger)
	if err != nil {
		logger.Fatal("creating the store", zap.Error(err))
	}

	count, skipped := st.Load(data)
	logSkipped(logger, skipped)
	logger.Info("candidates loaded", zap.Int("count", count), zap.String("dataset", path))

	return st
}

func exportTeam(st *store.Store, path string, logger *zap.Logger) {
	entries := st.Selected()
	team := make([]export.Member, 0, len(entries))
	for _, e := range entries {
		team = append(team, export.Member{Candidate: e.Candidate, Reason: e.Reason})
	}

	saved, err := export.ToFile(path, team, st.Snapshot())
	if err != nil {
		logger.Error("exporting the team", zap.Error(err))
		return
	}
	logger.Info("team exported", zap.String("filename", saved))
}
