package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(a.projectListCmd(), a.projectCreateCmd(), a.projectUpdateCmd(), a.projectDeleteCmd())
	return cmd
}

func (a *app) printProjects(projects []models.ProjectInfo) error {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.Key, p.Name, p.OwnerUsername, p.Date,
			strconv.Itoa(p.NumDevelopers), strconv.Itoa(p.NumFeatures), strconv.Itoa(p.NumIssues),
		})
	}
	return a.printTable(models.ProjectList{Projects: projects},
		[]string{"KEY", "NAME", "OWNER", "DATE", "DEVELOPERS", "FEATURES", "ISSUES"}, rows)
}

func (a *app) projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [name]",
		Short: "List projects whose name or key contains name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			projects, err := c.SearchProjects(cmd.Context(), name)
			if err != nil {
				return err
			}
			return a.printProjects(projects)
		},
	}
}

func projectFlags(cmd *cobra.Command, req *models.CreateProjectReq) {
	cmd.Flags().StringVar(&req.Name, "name", "", "project name")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().StringVar(&req.Date, "date", "", "start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.OwnerUsername, "owner", "", "owner username")
}

func (a *app) projectCreateCmd() *cobra.Command {
	var req models.CreateProjectReq
	cmd := &cobra.Command{
		Use:   "create <key>",
		Short: "Create a project (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := models.CheckProjectKey(args[0]); err != nil {
				return err
			}
			if req.Date == "" {
				req.Date = time.Now().Format(models.DateLayout)
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			project, err := c.CreateProject(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.printProjects([]models.ProjectInfo{project})
		},
	}
	projectFlags(cmd, &req)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func (a *app) projectUpdateCmd() *cobra.Command {
	var req models.CreateProjectReq
	cmd := &cobra.Command{
		Use:   "update <key>",
		Short: "Update a project; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			projects, err := c.SearchProjects(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var current *models.ProjectInfo
			for i := range projects {
				if projects[i].Key == args[0] {
					current = &projects[i]
				}
			}
			if current == nil {
				return fmt.Errorf("project %s not found", args[0])
			}

			update := models.CreateProjectReq{
				Name:          current.Name,
				Description:   current.Description,
				Date:          current.Date,
				OwnerUsername: current.OwnerUsername,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				update.Name = req.Name
			}
			if flags.Changed("description") {
				update.Description = req.Description
			}
			if flags.Changed("date") {
				update.Date = req.Date
			}
			if flags.Changed("owner") {
				update.OwnerUsername = req.OwnerUsername
			}
			project, err := c.UpdateProject(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			return a.printProjects([]models.ProjectInfo{project})
		},
	}
	projectFlags(cmd, &req)
	return cmd
}

func (a *app) projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a project with its modules and issues (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.DeleteProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
}

// readInput reads path, or stdin for "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.in)
	}
	return os.ReadFile(path)
}

func (a *app) moduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage the modules and features of a project",
	}

	listCmd := &cobra.Command{
		Use:   "list <key>",
		Short: "List modules and their features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			modules, err := c.GetModules(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var rows [][]string
			for _, m := range modules.Modules {
				if len(m.Features) == 0 {
					rows = append(rows, []string{m.Name, "-", "-", "-"})
				}
				for _, f := range m.Features {
					rows = append(rows, []string{m.Name, f.Name, strconv.FormatFloat(f.DevHours, 'f', -1, 64), orDash(f.DevUsername)})
				}
			}
			return a.printTable(modules, []string{"MODULE", "FEATURE", "HOURS", "DEVELOPER"}, rows)
		},
	}

	var file string
	setCmd := &cobra.Command{
		Use:   "set <key>",
		Short: `Replace the module list from a JSON file ({"modules": [...]})`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(file)
			if err != nil {
				return err
			}
			list, err := models.Decode[models.ModuleList](data)
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.UpdateModules(cmd.Context(), args[0], list.Modules)
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
	setCmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file, - for stdin")

	cmd.AddCommand(listCmd, setCmd)
	return cmd
}
