package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultAPIURL   = "http://localhost:8080/api/books"
	defaultDataFile = "credentials.db"
)

// NewRootCmd builds the book-manager command tree.
func NewRootCmd() *cobra.Command {
	var (
		apiURL   string
		dataFile string
	)

	cmd := &cobra.Command{
		Use:   "book-manager",
		Short: "Terminal book-catalog manager",
		Long: `Book Manager keeps a shared book catalog through a remote collection API.

Log in (or register) with locally stored credentials, then add, edit,
delete, search and sort books from an interactive shell.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present (ignore errors).
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd,
				resolve(apiURL, "BOOKS_API_URL", defaultAPIURL),
				resolve(dataFile, "BOOKS_DATA_FILE", defaultDataFile),
			)
		},
	}

	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "books collection URL (default "+defaultAPIURL+")")
	cmd.Flags().StringVar(&dataFile, "data", "", "credential store path (default "+defaultDataFile+")")

	cmd.AddCommand(newSeedCmd(&apiURL))

	return cmd
}

// resolve picks the flag value, then the environment, then the default.
func resolve(flag, envKey, fallback string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}
