package envstruct_test

import (
	"strings"
	"testing"
	"time"

	"github.com/evidenx/evidenx/internal/envstruct"
	"github.com/stretchr/testify/require"
)

func TestPopulate(t *testing.T) {
	unset := func(_ string) (string, bool) { return "", false }
	tests := []struct {
		name      string
		v         any
		lookupEnv func(string) (string, bool)
		want      any
		wantErr   error
	}{
		{
			name:      "nil",
			v:         nil,
			lookupEnv: unset,
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "not pointer",
			v:         struct{}{},
			lookupEnv: unset,
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "empty struct",
			v:         &struct{}{},
			lookupEnv: unset,
			want:      &struct{}{},
		},
		{
			name: "empty env",
			v: &struct { //nolint:exhaustruct // populated later
				Addr string `env:"EVIDENX_ADDR"`
			}{},
			lookupEnv: unset,
			wantErr:   envstruct.ErrEnvNotSet,
		},
		{
			name: "picks correct env variable",
			v: &struct { //nolint:exhaustruct // populated later
				Addr       string `env:"EVIDENX_ADDR"`
				SqliteURL  string `env:"EVIDENX_SQLITE_URL"`
				OtherValue string
			}{},
			lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			want: &struct {
				Addr       string
				SqliteURL  string
				OtherValue string
			}{Addr: "evidenx_addr", SqliteURL: "evidenx_sqlite_url", OtherValue: ""},
		},
		{
			name: "handles default value",
			v: &struct { //nolint:exhaustruct // populated later
				Addr string `env:"EVIDENX_ADDR" envDefault:"localhost:4000"`
			}{},
			lookupEnv: unset,
			want:      &struct{ Addr string }{Addr: "localhost:4000"},
		},
		{
			name: "parses typed values",
			v: &struct { //nolint:exhaustruct // populated later
				Fixtures bool          `env:"FIXTURES" envDefault:"true"`
				Limit    int           `env:"LIMIT" envDefault:"8"`
				Rate     float64       `env:"RATE" envDefault:"2.5"`
				Timeout  time.Duration `env:"TIMEOUT" envDefault:"30s"`
				Tokens   []string      `env:"TOKENS" envDefault:" a, b,,c "`
			}{},
			lookupEnv: unset,
			want: &struct {
				Fixtures bool
				Limit    int
				Rate     float64
				Timeout  time.Duration
				Tokens   []string
			}{Fixtures: true, Limit: 8, Rate: 2.5, Timeout: 30 * time.Second, Tokens: []string{"a", "b", "c"}},
		},
		{
			name: "invalid int",
			v: &struct { //nolint:exhaustruct // populated later
				Limit int `env:"LIMIT"`
			}{},
			lookupEnv: func(_ string) (string, bool) { return "eight", true },
			wantErr:   envstruct.ErrParse,
		},
		{
			name: "unsupported type",
			v: &struct { //nolint:exhaustruct // populated later
				Values map[string]string `env:"VALUES"`
			}{},
			lookupEnv: func(_ string) (string, bool) { return "", true },
			wantErr:   envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := envstruct.Populate(tt.v, tt.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, tt.want, tt.v)
		})
	}
}
