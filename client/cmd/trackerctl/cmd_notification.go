package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yyhhenry/sdu--neu-bug/client"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

func (a *app) notificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications"},
		Short:   "Read your notifications",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			notifications, err := c.Notifications(cmd.Context())
			if err != nil {
				return err
			}
			return a.printNotifications(notifications)
		},
	}

	readCmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.MarkNotificationRead(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}

	var interval time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print unread notifications as they arrive until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			refresher, err := client.StartRefresher(ctx, c, interval)
			if err != nil {
				return err
			}
			defer refresher.Stop()

			seen := make(map[string]bool)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				notifications, err := c.Notifications(ctx)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				var fresh []models.Notification
				for _, n := range notifications {
					if !n.IsRead && !seen[n.ID] {
						seen[n.ID] = true
						fresh = append(fresh, n)
					}
				}
				if len(fresh) > 0 {
					if err := a.printNotifications(fresh); err != nil {
						return err
					}
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	watchCmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "poll interval")

	cmd.AddCommand(listCmd, readCmd, watchCmd)
	return cmd
}

func (a *app) printNotifications(notifications []models.Notification) error {
	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		read := "no"
		if n.IsRead {
			read = "yes"
		}
		rows = append(rows, []string{n.ID, n.CreatedAt.Local().Format(models.TimeLayout), read, n.Message})
	}
	return a.printTable(models.NotificationList{Notifications: notifications},
		[]string{"ID", "CREATED", "READ", "MESSAGE"}, rows)
}
