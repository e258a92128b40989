package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strandtools/strand/internal/api"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an API token",
	Long:  "Save an API token for the Strand platform. The token is read from --token or prompted for on stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := loginToken
		if token == "" {
			fmt.Print("API token: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}

		store := tokenStore()
		if err := store.Save(token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		fmt.Println("Token saved")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tokenStore().Clear(); err != nil {
			return fmt.Errorf("removing token: %w", err)
		}
		fmt.Println("Logged out")
		return nil
	},
}

func tokenStore() *api.FileTokenStore {
	path := cfg.Server.TokenPath
	if path == "" {
		path = api.DefaultTokenPath()
	}
	return api.NewFileTokenStore(path)
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "API token")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
