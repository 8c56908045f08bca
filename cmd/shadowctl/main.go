package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag  string
	keyFlag  string
	userFlag string
	rootCmd  = &cobra.Command{
		Use:   "shadowctl",
		Short: "CLI client for the shadow calendar REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Shadow calendar service base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", "sk_local_shadowcal_dev_key", "API key")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (required)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
