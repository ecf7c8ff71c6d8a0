package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// readPassword returns flag, or a line from stdin when the flag is empty.
func (a *app) readPassword(flag, prompt string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(a.out, prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if password, err = a.readPassword(password, "Password: "); err != nil {
				return err
			}
			account, err := c.Login(cmd.Context(), models.LoginReq{Username: args[0], Password: password})
			if err != nil {
				return err
			}
			return a.printMsg(fmt.Sprintf("Logged in as %s (%s)", account.Username, models.PrivilegeName(&account.Role)))
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			return a.printMsg("Logged out")
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if err := c.RefreshToken(cmd.Context()); err != nil {
				return err
			}
			account, err := c.Account()
			if err != nil {
				return err
			}
			if account == nil {
				return a.printMsg(models.PrivilegeName(nil))
			}
			info, err := c.GetUserInfo(cmd.Context(), "")
			if err != nil {
				return err
			}
			return a.printUsers([]models.UserInfo{info})
		},
	}
}

func (a *app) passwdCmd() *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := models.CheckPassword(newPassword); err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.ChangePassword(cmd.Context(), models.ChangePasswordReq{OldPassword: oldPassword, NewPassword: newPassword})
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	cmd.MarkFlagRequired("old")
	cmd.MarkFlagRequired("new")
	return cmd
}
