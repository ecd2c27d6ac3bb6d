package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		wantLog string
	}{
		{name: "success", err: nil, want: 0},
		{
			name:    "schema error",
			err:     fmt.Errorf("clean input: %w", &domain.SchemaError{Missing: []string{"stats"}}),
			want:    1,
			wantLog: "input rejected",
		},
		{
			name:    "load error",
			err:     fmt.Errorf("load input: %w", errors.New("open sample.csv: no such file")),
			want:    1,
			wantLog: "pipeline error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			assert.Equal(t, tt.want, exitCode(logger, tt.err))
			if tt.wantLog == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.wantLog)
		})
	}
}
