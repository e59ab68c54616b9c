package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cvforge/cvchat/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify your CV Studio credentials",
	Long: `Sign in against the CV Studio API once to verify your credentials.

Credentials come from CVCHAT_EMAIL and CVCHAT_PASSWORD; anything missing is
prompted for interactively. Sessions are not persisted - the chat view signs
in on demand.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := cfg.Email
	password := cfg.Password

	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	provider := auth.NewProvider(cfg.APIURL, email, password, cfg.APITimeout, collector)
	session, err := provider.SignIn(context.Background())
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	fmt.Printf("Signed in as %s\n", session.UserName)
	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Session valid until %s\n", session.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
