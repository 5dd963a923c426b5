package models_test

import (
	"testing"

	"github.com/evidenx/evidenx/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStringList_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want models.StringList
	}{
		{name: "nil", src: nil, want: nil},
		{name: "empty string", src: "", want: nil},
		{name: "string", src: `["witness","testimony"]`, want: models.StringList{"witness", "testimony"}},
		{name: "bytes", src: []byte(`["cctv"]`), want: models.StringList{"cctv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.StringList
			require.NoError(t, got.Scan(tt.src))
			require.Equal(t, tt.want, got)
		})
	}

	var got models.StringList
	require.Error(t, got.Scan(42))
}

func TestSeconds_Value(t *testing.T) {
	v, err := models.Seconds(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)

	v, err = models.Seconds{398, 613.5}.Value()
	require.NoError(t, err)
	require.Equal(t, "[398,613.5]", v)
}
