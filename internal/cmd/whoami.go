package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	user, ok := a.store.User()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s (%s)\n", user.Name, user.Phone)
	return nil
}
