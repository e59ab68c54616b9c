package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cvforge/cvchat/internal/client"
)

var fetchOutputFile string

var fetchCmd = &cobra.Command{
	Use:   "fetch <path>",
	Short: "Fetch a stored file's content",
	Long: `Fetch the content of a file stored in your CV Studio workspace.

Examples:
  cvchat fetch cover-letter.md
  cvchat fetch cv.yaml -o local-copy.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutputFile, "output", "o", "", "write content to file instead of stdout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := authProvider.SignIn(ctx); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	result, err := apiClient.Execute(ctx, "show file "+args[0])
	if err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("command failed: %s", result.Error)
	}
	if result.Type != client.TypeFileContent {
		return fmt.Errorf("expected file content, got %q", result.Type)
	}

	file, err := result.FileContent()
	if err != nil {
		return err
	}

	if fetchOutputFile != "" {
		if err := os.WriteFile(fetchOutputFile, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", fetchOutputFile)
		return nil
	}

	fmt.Print(file.Content)
	return nil
}
