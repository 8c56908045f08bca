package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	eventsCmd := &cobra.Command{Use: "events", Short: "Calendar event operations"}

	// create
	var eventType, title, start, end, location string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a calendar event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			payload := map[string]interface{}{
				"eventType": eventType,
				"title":     title,
				"startTime": start,
				"endTime":   end,
			}
			if location != "" {
				payload["location"] = location
			}
			url := fmt.Sprintf("%s/api/users/%s/events", apiFlag, userFlag)
			data, err := doJSON("POST", url, payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&eventType, "type", "t", "shift", "Event type (shift, interview, block)")
	createCmd.Flags().StringVar(&title, "title", "", "Event title (required)")
	createCmd.Flags().StringVar(&start, "start", "", "Start time, RFC 3339 (required)")
	createCmd.Flags().StringVar(&end, "end", "", "End time, RFC 3339 (required)")
	createCmd.Flags().StringVarP(&location, "location", "l", "", "Free-text location")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("start")
	_ = createCmd.MarkFlagRequired("end")
	eventsCmd.AddCommand(createCmd)

	// list
	var from, to string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			url := fmt.Sprintf("%s/api/users/%s/events", apiFlag, userFlag)
			if from != "" || to != "" {
				url += fmt.Sprintf("?from=%s&to=%s", from, to)
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVar(&from, "from", "", "Window start, RFC 3339")
	listCmd.Flags().StringVar(&to, "to", "", "Window end, RFC 3339")
	eventsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			data, err := doGet(fmt.Sprintf("%s/api/users/%s/events/%s", apiFlag, userFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	eventsCmd.AddCommand(getCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event and its commute blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return doDelete(fmt.Sprintf("%s/api/users/%s/events/%s", apiFlag, userFlag, args[0]))
		},
	}
	eventsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(eventsCmd)
}
