package cli

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/cvforge/cvchat/internal/chat"
)

var chatStats bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the CV Studio assistant.

Commands are free text; the assistant interprets them server-side.

Examples:
  cvchat chat
  cvchat chat --stats
  CVCHAT_STREAM_REPLIES=true cvchat chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatStats, "stats", false, "print session statistics on exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	opts := chat.Options{
		Executor:            apiClient,
		Auth:                &chatAuth{},
		Downloads:           downloads,
		Strings:             catalog,
		Logger:              logger,
		SuggestionThreshold: cfg.SuggestionThreshold,
		DownloadDir:         cfg.DownloadDir,
	}
	if cfg.StreamReplies {
		opts.Streamer = apiClient
	}

	p := tea.NewProgram(chat.New(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}

	if chatStats {
		printStats(collector.Snapshot())
	}
	return nil
}

// chatAuth adapts the auth provider to the chat view's collaborator
// interface, which only needs the signed-in user's name.
type chatAuth struct{}

func (chatAuth) SignIn(ctx context.Context) (string, error) {
	session, err := authProvider.SignIn(ctx)
	if err != nil {
		return "", err
	}
	return session.UserName, nil
}

func (chatAuth) Authenticated() bool {
	return authProvider.Authenticated()
}
