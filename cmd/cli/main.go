package main

import (
	"fmt"
	"errors"
	"io/fs"
	"os"

	"github.com/evidenx/evidenx/cmd/cli/cases"
	"github.com/evidenx/evidenx/cmd/cli/img"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cases.AddFlags(rootCmd)
	rootCmd.AddGroup(cases.Group)
	rootCmd.AddCommand(cases.List, cases.Show, cases.Timeline, cases.Ask, cases.Import)
	rootCmd.AddGroup(img.Group)
	rootCmd.AddCommand(img.Portrait)
}

var rootCmd = &cobra.Command{
	Use:           "evidenx-cli",
	Long:          `Command line utilities for the Evidenx case management API`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
