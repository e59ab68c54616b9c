package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cvforge/cvchat/internal/client"
)

var generateCmd = &cobra.Command{
	Use:   "generate <instruction>",
	Short: "Generate a CV document without entering the chat",
	Long: `Issue a single document-generation command and save the result.

The instruction is free text, interpreted by the server exactly like a chat
message.

Examples:
  cvchat generate "my cv as a pdf"
  cvchat generate "a one-page cv tailored for backend roles"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := authProvider.SignIn(ctx); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	instruction := strings.Join(args, " ")
	result, err := apiClient.Execute(ctx, "generate "+instruction)
	if err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("command failed: %s", result.Error)
	}
	if result.Type != client.TypePDF {
		return fmt.Errorf("expected a document result, got %q", result.Type)
	}

	path, err := downloads.Trigger(ctx, result)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	fmt.Printf("Saved %s\n", path)
	return nil
}
