package cases

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/evidenx/evidenx/internal/caseapi"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// caseEntry is a case in an import file. The field names match the JSON body of the create case endpoint.
type caseEntry struct {
	FIRNumber            string `json:"firNumber"                     toml:"fir_number"`
	Title                string `json:"title"                         toml:"title"`
	Summary              string `json:"summary"                       toml:"summary"`
	Petitioner           string `json:"petitioner"                    toml:"petitioner"`
	Accused              string `json:"accused"                       toml:"accused"`
	InvestigatingOfficer string `json:"investigatingOfficer"          toml:"investigating_officer"`
	Location             string `json:"location"                      toml:"location"`
	Description          string `json:"description,omitempty"         toml:"description"`
	Status               string `json:"status,omitempty"              toml:"status"`
	Visibility           string `json:"visibility,omitempty"          toml:"visibility"`
}

type caseFile struct {
	Cases []caseEntry `toml:"case"`
}

// parseCaseFile reads the [[case]] tables of a TOML import file.
func parseCaseFile(data []byte) ([]caseEntry, error) {
	var file caseFile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, errors.Wrap(err, "parse case file", slog.Int("row", row), slog.Int("column", col))
		}
		return nil, errors.Wrap(err, "parse case file")
	}
	if len(file.Cases) == 0 {
		return nil, errors.New("case file has no [[case]] entries")
	}
	return file.Cases, nil
}

var Import = &cobra.Command{
	Use:     "import [file.toml]",
	GroupID: "cases",
	Short:   "Register the cases of a TOML file",
	Long: `Registers every [[case]] table of the file through the API. Cases whose FIR number is already
registered are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read case file", slog.String("path", args[0]))
		}
		entries, err := parseCaseFile(data)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		var failed int
		for _, entry := range entries {
			created, createErr := client.CreateCase(cmd.Context(), entry)
			if createErr != nil {
				failed++
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", entry.FIRNumber, createErr)
				if errors.Is(createErr, caseapi.ErrUnauthorized) {
					break
				}
				continue
			}
			_, _ = fmt.Fprintf(w, "%s: registered as %s\n", created.FIRNumber, created.ID)
		}
		if failed > 0 {
			return errors.New("some cases were not imported", slog.Int("failed", failed),
				slog.Int("total", len(entries)))
		}
		return nil
	},
}
