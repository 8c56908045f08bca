package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var employmentType, jobAddress string
	var lat, lng float64
	var maxCommute int

	preflightCmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check a hypothetical job against the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			payload := map[string]interface{}{
				"employmentType": employmentType,
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				payload["jobLocation"] = map[string]float64{"latitude": lat, "longitude": lng}
			}
			if jobAddress != "" {
				payload["jobAddress"] = jobAddress
			}
			if maxCommute > 0 {
				payload["maxCommuteMinutes"] = maxCommute
			}
			url := fmt.Sprintf("%s/api/users/%s/preflight", apiFlag, userFlag)
			data, err := doJSON("POST", url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	preflightCmd.Flags().StringVarP(&employmentType, "employment", "e", "full-time", "Employment type (full-time, part-time, weekend, overnight)")
	preflightCmd.Flags().StringVar(&jobAddress, "address", "", "Job address (geocoded server-side)")
	preflightCmd.Flags().Float64Var(&lat, "lat", 0, "Job latitude")
	preflightCmd.Flags().Float64Var(&lng, "lng", 0, "Job longitude")
	preflightCmd.Flags().IntVar(&maxCommute, "max-commute", 0, "Max acceptable commute in minutes")
	rootCmd.AddCommand(preflightCmd)
}
