package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	profileCmd := &cobra.Command{Use: "profile", Short: "User profile operations"}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			data, err := doGet(fmt.Sprintf("%s/api/users/%s/profile", apiFlag, userFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	profileCmd.AddCommand(getCmd)

	var homeAddress, transitMode, employmentType string
	var maxCommute int
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			payload := map[string]interface{}{
				"transitMode":       transitMode,
				"maxCommuteMinutes": maxCommute,
				"employmentType":    employmentType,
			}
			if homeAddress != "" {
				payload["homeAddress"] = homeAddress
			}
			url := fmt.Sprintf("%s/api/users/%s/profile", apiFlag, userFlag)
			data, err := doJSON("PUT", url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	setCmd.Flags().StringVar(&homeAddress, "home", "", "Home address")
	setCmd.Flags().StringVar(&transitMode, "mode", "lynx", "Transit mode (lynx, car, rideshare, walk)")
	setCmd.Flags().StringVar(&employmentType, "employment", "", "Typical employment type")
	setCmd.Flags().IntVar(&maxCommute, "max-commute", 45, "Max acceptable commute in minutes")
	profileCmd.AddCommand(setCmd)

	rootCmd.AddCommand(profileCmd)
}
