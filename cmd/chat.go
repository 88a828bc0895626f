package cmd

import (
	"fmt"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/eduindia/internal/chat"
	"github.com/abhisek/eduindia/internal/config"
	"github.com/abhisek/eduindia/internal/store"
	"github.com/abhisek/eduindia/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive tutoring session (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "Learner profile ID to start with")
	cmd.Flags().Bool("trace", false, "Show the agent trace above each reply")
	cmd.Flags().Bool("plain", false, "Show replies as plain markdown")
}

func init() {
	addChatFlags(chatCmd)
}

func runChat(cmd *cobra.Command) error {
	a, err := openApp(cmd, logToFile)
	if err != nil {
		return err
	}
	defer closeApp(a)

	showTrace, _ := cmd.Flags().GetBool("trace")
	plain, _ := cmd.Flags().GetBool("plain")
	opts := chat.Options{
		Dispatcher: a.Dispatcher,
		SessionID:  uuid.NewString(),
		Style:      lo.Ternary(plain, ui.StylePlain, ui.StyleDark),
		ShowTrace:  showTrace,
	}
	if a.ProviderErr != nil {
		opts.Notice = "LLM provider not configured: " + a.ProviderErr.Error()
	}
	m := chat.New(cmd.Context(), opts)

	if p, _ := cmd.Flags().GetString("profile"); p != "" {
		if err := m.SelectProfile(p); err != nil {
			return err
		}
	}

	p := tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}

// logToFile sends the chat's log to a file so it doesn't draw over the
// full-screen display.
func logToFile(cfg *config.Config) error {
	cfg.Logging.Format = "console"
	if cfg.Logging.File != "" {
		return store.EnsureDir(cfg.Logging.File)
	}
	dir, err := store.DataDir()
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	cfg.Logging.File = filepath.Join(dir, "chat.log")
	return store.EnsureDir(cfg.Logging.File)
}
