package period

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantField string
	}{
		{"whole month", "2024-03-01", "2024-03-31", ""},
		{"single day", "2024-02-29", "2024-02-29", ""},
		{"bad from", "01/03/2024", "2024-03-31", "from"},
		{"bad to", "2024-03-01", "2024-3-31", "to"},
		{"reversed", "2024-03-20", "2024-03-01", "to"},
		{"crosses month", "2024-03-01", "2024-04-01", "to"},
		{"same month other year", "2023-03-01", "2024-03-01", "to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.from, tt.to)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.from, r.From.Format("2006-01-02"))
				return
			}
			require.ErrorIs(t, err, ErrInvalidRange)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestRangeParams(t *testing.T) {
	r, err := Parse("2024-03-01", "2024-03-31")
	require.NoError(t, err)

	assert.Equal(t, "20240301", r.FromParam())
	assert.Equal(t, "20240331", r.ToParam())
	assert.Equal(t, "2024-03-01..2024-03-31", r.String())
}
