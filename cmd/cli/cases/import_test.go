package cases

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_parseCaseFile(t *testing.T) {
	data := []byte(`
[[case]]
fir_number = "FIR/2024/010"
title = "Stolen Laptop"
summary = "A laptop was stolen from a parked car."
petitioner = "Ravi Kumar"
accused = "Unknown"
investigating_officer = "Inspector Nair"
location = "Kochi"
visibility = "Public"

[[case]]
fir_number = "FIR/2024/011"
title = "Chain Snatching"
`)
	entries, err := parseCaseFile(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Inspector Nair", entries[0].InvestigatingOfficer)
	require.Equal(t, "Public", entries[0].Visibility)
	require.Equal(t, "FIR/2024/011", entries[1].FIRNumber)
	require.Empty(t, entries[1].Status)
}

func Test_parseCaseFile_errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"unknown field", "[[case]]\nfir = \"FIR/1\"\n"},
		{"invalid syntax", "[[case]\ntitle = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCaseFile([]byte(tt.data))
			require.Error(t, err)
		})
	}
}
