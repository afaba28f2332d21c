package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/store"
)

const (
	PromptAutoSelect = "Auto-select a diverse team"
	PromptShowTeam   = "Show the current team"
	PromptExport     = "Export the team to xlsx"
	PromptExit       = "exit"
)

var errExit = errors.New("exit requested")

var pickCmd = &cobra.Command{
	Use:   "pick [dataset.json]",
	Short: "Pick candidates interactively from a dataset file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pick(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().StringP("export", "e", "team.xlsx", "workbook the team is exported to")
}

func pick(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st := mustLoadStore(config, args, logger)
	exportPath, _ := cmd.Flags().GetString("export")

	for {
		err := pickOnce(st, exportPath, logger)
		if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			logger.Info("exiting", zap.Int("selected", len(st.Selected())))
			return
		}
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// pickOnce shows the pool and handles one choice. Choosing a candidate toggles it in the team.
func pickOnce(st *store.Store, exportPath string, logger *zap.Logger) error {
	selected := make(map[int]struct{})
	for _, e := range st.Selected() {
		selected[e.Candidate.ID] = struct{}{}
	}

	pool := st.Snapshot()
	items := make([]string, 0, pool.Len()+4)
	for _, c := range pool.Items {
		_, isSelected := selected[c.ID]
		items = append(items, candidateLabel(c, isSelected))
	}
	items = append(items, PromptAutoSelect, PromptShowTeam, PromptExport, PromptExit)

	candidatePrompt := promptui.Select{
		Label: fmt.Sprintf("Choose a candidate and press ENTER (%d/%d selected)", len(selected), st.Limit()),
		Items: items,
		Size:  15,
	}

	_, choice, err := candidatePrompt.Run()
	if err != nil {
		return err
	}

	switch choice {
	case PromptExit:
		return errExit
	case PromptAutoSelect:
		if _, err := st.AutoSelect(); err != nil {
			logger.Warn("auto-select failed", zap.Error(err))
		}
		showTeam(st, logger)
		return nil
	case PromptShowTeam:
		showTeam(st, logger)
		return nil
	case PromptExport:
		exportTeam(st, exportPath, logger)
		return nil
	}

	id, err := strconv.Atoi(strings.Fields(strings.TrimPrefix(choice, "* "))[0])
	if err != nil {
		return fmt.Errorf("unexpected choice %q", choice)
	}

	var full *store.SelectionFullError
	if _, err := st.Toggle(id); errors.As(err, &full) {
		logger.Warn("team is full, deselect someone first", zap.Int("limit", full.Limit))
	} else if err != nil {
		return err
	}
	return nil
}

func candidateLabel(c *candidate.Candidate, selected bool) string {
	mark := "  "
	if selected {
		mark = "* "
	}

	skills := c.Skills
	if len(skills) > 4 {
		skills = skills[:4]
	}

	return fmt.Sprintf("%s%d %s / %s / %s / %.2f",
		mark, c.ID, c.Name, c.Location, strings.Join(skills, ", "), c.Score,
	)
}

func showTeam(st *store.Store, logger *zap.Logger) {
	entries := st.Selected()
	for i, e := range entries {
		logger.Info("team member",
			zap.Int("rank", i+1),
			zap.Int("candidate_id", e.Candidate.ID),
			zap.String("candidate_name", e.Candidate.Name),
			zap.Float64("score", e.Candidate.Score),
			zap.String("reason", e.Reason),
		)
	}
	logger.Info("current team", zap.Int("count", len(entries)))
}
