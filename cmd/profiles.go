package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/ui"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the configured learner profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		learners, err := learner.NewStore(cfg.Profiles)
		if err != nil {
			return err
		}

		snaps := lo.Map(learners.Profiles(), func(p *learner.Profile, _ int) learner.Snapshot {
			return p.Snapshot()
		})
		fmt.Fprintln(cmd.OutOrStdout(), ui.ProfileList(snaps, learners.DefaultID()))
		return nil
	},
}
