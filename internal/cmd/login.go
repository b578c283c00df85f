package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with a phone number and name",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	phonePrompt := promptui.Prompt{
		Label: "Phone",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("phone is required")
			}
			return nil
		},
	}
	phone, err := phonePrompt.Run()
	if err != nil {
		return err
	}

	namePrompt := promptui.Prompt{
		Label: "Name",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("name is required")
			}
			return nil
		},
	}
	name, err := namePrompt.Run()
	if err != nil {
		return err
	}

	auth, err := a.client.Authenticate(cmd.Context(), strings.TrimSpace(phone), strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := a.store.Login(auth.Token, auth.User); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	fmt.Printf("Welcome, %s!\n", auth.User.Name)
	return nil
}
