package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/eduindia/internal/ui"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask the tutor a single question",
	Example: `  eduindia ask "explain inflation" --profile rural-maharashtra
  eduindia ask "study next" --trace`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, withLogFormat("console"))
		if err != nil {
			return err
		}
		defer closeApp(a)

		session := uuid.NewString()
		if p, _ := cmd.Flags().GetString("profile"); p != "" {
			if _, err := a.Learners.Lookup(p); err != nil {
				return err
			}
			a.Dispatcher.SelectProfile(session, p)
		}
		if a.ProviderErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn("LLM provider not configured: "+a.ProviderErr.Error()))
		}

		showTrace, _ := cmd.Flags().GetBool("trace")
		plain, _ := cmd.Flags().GetBool("plain")
		res := a.Dispatcher.Handle(cmd.Context(), session, strings.Join(args, " "))
		md := ui.NewMarkdown(lo.Ternary(plain, ui.StylePlain, ui.StyleAuto), wrapWidth)
		printResult(cmd.OutOrStdout(), md, res, showTrace)
		return nil
	},
}

func init() {
	addChatFlags(askCmd)
}
