package main

import (
	"github.com/spf13/cobra"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

func (a *app) printUsers(users []models.UserInfo) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, orDash(u.FullName), models.PrivilegeName(&u.Role), u.Email})
	}
	var v any = models.SearchUserRes{Users: users}
	if len(users) == 1 {
		v = users[0]
	}
	return a.printTable(v, []string{"USERNAME", "FULL NAME", "ROLE", "EMAIL"}, rows)
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(a.userGetCmd(), a.userSearchCmd(), a.userEditCmd(), a.userDeleteCmd(), a.userRegisterCmd())
	return cmd
}

func (a *app) userGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [username]",
		Short: "Show a user, yourself by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			username := ""
			if len(args) == 1 {
				username = args[0]
			}
			info, err := c.GetUserInfo(cmd.Context(), username)
			if err != nil {
				return err
			}
			return a.printUsers([]models.UserInfo{info})
		},
	}
}

func (a *app) userSearchCmd() *cobra.Command {
	var req models.SearchUserReq
	var role string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search users (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			req.Role = models.Role(role)
			users, err := c.SearchUsers(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(models.SearchUserRes{Users: users})
			}
			return a.printUsers(users)
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "username contains")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "full name contains")
	cmd.Flags().StringVar(&req.Email, "email", "", "email contains")
	cmd.Flags().StringVar(&role, "role", "", "exact role (admin|user)")
	return cmd
}

func (a *app) userEditCmd() *cobra.Command {
	var username, fullName, email, role string
	cmd := &cobra.Command{
		Use:   "edit <username>",
		Short: "Edit a user (admin only); unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			info, err := c.GetUserInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("username") {
				if err := models.CheckUsername(username); err != nil {
					return err
				}
				info.Username = username
			}
			if cmd.Flags().Changed("full-name") {
				info.FullName = fullName
			}
			if cmd.Flags().Changed("email") {
				info.Email = email
			}
			if cmd.Flags().Changed("role") {
				info.Role = models.Role(role)
			}
			if err := models.CheckEmail(info.Email); err != nil {
				return err
			}
			msg, err := c.EditUser(cmd.Context(), args[0], info)
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&role, "role", "", "role (admin|user)")
	return cmd
}

func (a *app) userDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.DeleteUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
}

func (a *app) userRegisterCmd() *cobra.Command {
	var req models.RegisterReq
	var role string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Info.Username = args[0]
			req.Info.Role = models.Role(role)
			for _, err := range []error{
				models.CheckUsername(req.Info.Username),
				models.CheckPassword(req.Password),
				models.CheckEmail(req.Info.Email),
			} {
				if err != nil {
					return err
				}
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "initial password")
	cmd.Flags().StringVar(&req.Info.FullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&req.Info.Email, "email", "", "email")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "role (admin|user)")
	return cmd
}
