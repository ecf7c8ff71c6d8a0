package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yyhhenry/sdu--neu-bug/client"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

const defaultServer = "http://localhost:8080"

// app carries the global flags and the lazily built client.
type app struct {
	out     io.Writer
	in      io.Reader
	server  string
	session string
	asJSON  bool
	verbose bool

	client *client.Client
}

func newRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{out: out, in: in}

	rootCmd := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Manage users, projects, modules and issues of a tracker service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("TRACKER_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&a.server, "server", server, "tracker service URL (env TRACKER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&a.session, "session", "", "session file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.passwdCmd(),
		a.userCmd(),
		a.projectCmd(),
		a.moduleCmd(),
		a.issueCmd(),
		a.notificationCmd(),
	)
	return rootCmd
}

func (a *app) api() (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	path := a.session
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, fmt.Errorf("locating session file: %w", err)
		}
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if a.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	a.client = client.New(a.server, client.NewFileStorage(path), logger)
	return a.client, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable prints rows under header, or v as JSON with --json.
func (a *app) printTable(v any, header []string, rows [][]string) error {
	if a.asJSON {
		return a.printJSON(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	writeRow(tw, header)
	for _, row := range rows {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

// printMsg prints a server message.
func (a *app) printMsg(msg string) error {
	if a.asJSON {
		return a.printJSON(models.Success(msg))
	}
	_, err := fmt.Fprintln(a.out, msg)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
