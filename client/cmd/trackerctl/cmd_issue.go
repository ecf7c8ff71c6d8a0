package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

func (a *app) issueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Manage the issues of a project",
	}
	cmd.AddCommand(a.issueListCmd(), a.issueCreateCmd(), a.issueUpdateCmd(), a.issueDeleteCmd(), a.issueReplaceCmd())
	return cmd
}

func (a *app) issueListCmd() *cobra.Command {
	var search models.SearchIssueReq
	var level, status, tag string
	cmd := &cobra.Command{
		Use:   "list <key>",
		Short: "Search issues; text filters match partially, enum filters exactly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search.Level = models.IssueLevel(level)
			search.Status = models.IssueStatus(status)
			search.Tag = models.IssueTag(tag)
			c, err := a.api()
			if err != nil {
				return err
			}
			issues, err := c.GetIssues(cmd.Context(), args[0], search)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(issues))
			for _, i := range issues {
				rows = append(rows, []string{
					i.ID, i.Title, i.ModuleName + "/" + i.FeatureName, string(i.Level), string(i.Status),
					orDash(string(i.Tag)), i.CreatorUsername, orDash(i.DevUsername), i.CreateTime,
				})
			}
			return a.printTable(models.IssueList{Issues: issues},
				[]string{"ID", "TITLE", "MODULE/FEATURE", "LEVEL", "STATUS", "TAG", "CREATOR", "DEVELOPER", "CREATED"}, rows)
		},
	}
	cmd.Flags().StringVar(&search.Title, "title", "", "title contains")
	cmd.Flags().StringVar(&search.ModuleName, "module", "", "module name contains")
	cmd.Flags().StringVar(&search.FeatureName, "feature", "", "feature name contains")
	cmd.Flags().StringVar(&search.CreatorUsername, "creator", "", "creator contains")
	cmd.Flags().StringVar(&search.DevUsername, "dev", "", "developer contains")
	cmd.Flags().StringVar(&level, "level", "", "exact level")
	cmd.Flags().StringVar(&status, "status", "", "exact status")
	cmd.Flags().StringVar(&tag, "tag", "", "exact tag")
	return cmd
}

type issueFlags struct {
	module, feature, title, description string
	level, status, tag, dev, feedback   string
}

func (f *issueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.module, "module", "", "module name")
	cmd.Flags().StringVar(&f.feature, "feature", "", "feature name")
	cmd.Flags().StringVar(&f.title, "title", "", "title")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.level, "level", "", "trivial|minor|normal|urgent|critical")
	cmd.Flags().StringVar(&f.status, "status", "", "open|closed|solved")
	cmd.Flags().StringVar(&f.tag, "tag", "", "unsolved|solved|not-a-bug|cannot-reproduce|duplicate")
	cmd.Flags().StringVar(&f.dev, "dev", "", "developer username")
	cmd.Flags().StringVar(&f.feedback, "feedback", "", "feedback")
}

// apply copies the flags that were set onto issue.
func (f *issueFlags) apply(cmd *cobra.Command, issue *models.IssueInfo) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("module", &issue.ModuleName, f.module)
	set("feature", &issue.FeatureName, f.feature)
	set("title", &issue.Title, f.title)
	set("description", &issue.Description, f.description)
	set("dev", &issue.DevUsername, f.dev)
	set("feedback", &issue.Feedback, f.feedback)
	if cmd.Flags().Changed("level") {
		issue.Level = models.IssueLevel(f.level)
	}
	if cmd.Flags().Changed("status") {
		issue.Status = models.IssueStatus(f.status)
	}
	if cmd.Flags().Changed("tag") {
		issue.Tag = models.IssueTag(f.tag)
	}
}

func (a *app) issueCreateCmd() *cobra.Command {
	var flags issueFlags
	cmd := &cobra.Command{
		Use:   "create <key>",
		Short: "File a new issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issue := models.IssueInfo{Level: models.LevelNormal}
			flags.apply(cmd, &issue)
			if err := models.Validate(issue); err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.CreateIssue(cmd.Context(), args[0], issue)
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
	flags.register(cmd)
	cmd.MarkFlagRequired("module")
	cmd.MarkFlagRequired("feature")
	cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) issueUpdateCmd() *cobra.Command {
	var flags issueFlags
	cmd := &cobra.Command{
		Use:   "update <key> <id>",
		Short: "Update an issue; unset flags keep their value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			issues, err := c.GetIssues(cmd.Context(), args[0], models.SearchIssueReq{})
			if err != nil {
				return err
			}
			for _, issue := range issues {
				if issue.ID != args[1] {
					continue
				}
				flags.apply(cmd, &issue)
				msg, err := c.UpdateIssue(cmd.Context(), args[0], issue)
				if err != nil {
					return err
				}
				return a.printMsg(msg)
			}
			return fmt.Errorf("issue #%s not found in project %s", args[1], args[0])
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) issueDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key> <id>",
		Short: "Delete an issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.DeleteIssue(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
}

func (a *app) issueReplaceCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "replace <key>",
		Short: `Replace all issues from a JSON file ({"issues": [...]})`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(file)
			if err != nil {
				return err
			}
			list, err := models.Decode[models.IssueList](data)
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			msg, err := c.ReplaceIssues(cmd.Context(), args[0], list.Issues)
			if err != nil {
				return err
			}
			return a.printMsg(msg)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file, - for stdin")
	return cmd
}
