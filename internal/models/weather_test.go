package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SaveRequest
		wantErr string
	}{
		{name: "full range", req: SaveRequest{Location: "Paris", StartDate: "2024-01-01", EndDate: "2024-01-05"}},
		{name: "open range", req: SaveRequest{Location: "Paris"}},
		{name: "reversed range is left to the backend", req: SaveRequest{Location: "Paris", StartDate: "2024-02-01", EndDate: "2024-01-01"}},
		{name: "missing location", req: SaveRequest{StartDate: "2024-01-01"}, wantErr: "location is required"},
		{name: "bad date", req: SaveRequest{Location: "Paris", EndDate: "05/01/2024"}, wantErr: "endDate must be a date formatted YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestParseRequestDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-01-01T12:00:00Z", want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{in: "2024-01-01T12:00:00", want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{in: "2024-01-01T12:00:00.123", want: time.Date(2024, 1, 1, 12, 0, 0, 123000000, time.UTC)},
		{in: "2024-01-01", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseRequestDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	_, err := ParseRequestDate("tomorrow")
	assert.Error(t, err)
}
