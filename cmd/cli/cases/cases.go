// Package cases holds the CLI commands that talk to the case management REST API.
package cases

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/evidenx/evidenx/internal/caseapi"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/media"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case operations",
}

const (
	urlFlag     = "url"
	tokenFlag   = "token"
	jsonFlag    = "json"
	verboseFlag = "verbose"
)

// AddFlags registers the connection flags on the root command. They default to EVIDENX_API_URL and
// EVIDENX_API_TOKEN.
func AddFlags(root *cobra.Command) {
	baseURL := os.Getenv("EVIDENX_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4000/api/v1"
	}
	root.PersistentFlags().String(urlFlag, baseURL, "base URL of the case API")
	root.PersistentFlags().String(tokenFlag, os.Getenv("EVIDENX_API_TOKEN"), "bearer token of the case API")
	root.PersistentFlags().Bool(jsonFlag, false, "print the raw JSON response")
	root.PersistentFlags().BoolP(verboseFlag, "v", false, "log the API requests")
}

func newClient(cmd *cobra.Command) (*caseapi.Client, error) {
	flags := cmd.Flags()
	baseURL, err := flags.GetString(urlFlag)
	if err != nil {
		return nil, errors.Wrap(err, "get url flag")
	}
	token, err := flags.GetString(tokenFlag)
	if err != nil {
		return nil, errors.Wrap(err, "get token flag")
	}
	if token == "" {
		return nil, errors.New("missing API token, set --token or EVIDENX_API_TOKEN")
	}
	level := slog.LevelInfo
	if verbose, _ := flags.GetBool(verboseFlag); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	client, err := caseapi.New(caseapi.Config{BaseURL: baseURL, Token: token}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create API client")
	}
	return client, nil
}

// printJSON writes v indented when --json is set and reports whether it did.
func printJSON(cmd *cobra.Command, v any) (bool, error) {
	if asJSON, _ := cmd.Flags().GetBool(jsonFlag); !asJSON {
		return false, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return true, errors.Wrap(enc.Encode(v), "encode JSON")
}

var List = &cobra.Command{
	Use:     "cases",
	GroupID: "cases",
	Short:   "List cases",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		cases, err := client.ListCases(cmd.Context())
		if err != nil {
			return err //nolint:wrapcheck // annotated by the client
		}
		if done, err := printJSON(cmd, cases); done || err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
		_, _ = fmt.Fprintln(tw, "ID\tFIR\tSTATUS\tVISIBILITY\tTITLE")
		for _, c := range cases {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.FIRNumber, c.Status, c.Visibility, c.Title)
		}
		return errors.Wrap(tw.Flush(), "flush table")
	},
}

var Show = &cobra.Command{
	Use:     "case [id]",
	GroupID: "cases",
	Short:   "Show a case",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		c, err := client.GetCase(cmd.Context(), args[0])
		if errors.Is(err, caseapi.ErrNotFound) {
			return errors.New("case not found", slog.String("case_id", args[0]))
		}
		if err != nil {
			return err //nolint:wrapcheck // annotated by the client
		}
		if done, err := printJSON(cmd, c); done || err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "%s\n%s\n\n", c.Title, strings.Repeat("=", len(c.Title)))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // padding
		for _, row := range [][2]string{
			{"FIR", c.FIRNumber},
			{"Status", string(c.Status)},
			{"Visibility", string(c.Visibility)},
			{"Registered", c.RegisteredDate.Format("02 Jan 2006")},
			{"Petitioner", c.Petitioner},
			{"Accused", c.Accused},
			{"Officer", c.InvestigatingOfficer},
			{"Location", c.Location},
		} {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
		}
		if err = tw.Flush(); err != nil {
			return errors.Wrap(err, "flush table")
		}
		_, _ = fmt.Fprintf(w, "\n%s\n", c.Summary)
		return nil
	},
}

var Timeline = &cobra.Command{
	Use:     "timeline [case id]",
	GroupID: "cases",
	Short:   "Print the timeline of a case",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		events, err := client.GetTimeline(cmd.Context(), args[0])
		if err != nil {
			return err //nolint:wrapcheck // annotated by the client
		}
		if done, err := printJSON(cmd, events); done || err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
		for _, e := range events {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Source, e.Title)
		}
		return errors.Wrap(tw.Flush(), "flush table")
	},
}

var Ask = &cobra.Command{
	Use:     "ask [case id] [question]",
	GroupID: "cases",
	Short:   "Ask the knowledge base of a case",
	Args:    cobra.MinimumNArgs(2), //nolint:mnd // case id and question
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		answer, err := client.QueryKnowledgeBase(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err //nolint:wrapcheck // annotated by the client
		}
		if done, err := printJSON(cmd, answer); done || err != nil {
			return err
		}
		printAnswer(cmd.OutOrStdout(), answer)
		return nil
	},
}

func printAnswer(w io.Writer, answer caseapi.KnowledgeAnswer) {
	_, _ = fmt.Fprintln(w, answer.Text())
	seconds := answer.Seconds()
	if len(seconds) == 0 {
		return
	}
	clocks := make([]string, len(seconds))
	for i, s := range seconds {
		clocks[i] = media.FormatClock(s)
	}
	_, _ = fmt.Fprintf(w, "\nSee the footage at %s\n", strings.Join(clocks, ", "))
}
