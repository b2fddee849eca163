package lastfm

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		is      error
	}{
		{
			name: "valid API key",
			cfg:  Config{APIKey: "abc123def456abc123def456abc12345"},
		},
		{
			name:    "missing API key",
			cfg:     Config{},
			wantErr: true,
			is:      ErrMissingAPIKey,
		},
		{
			name:    "negative timeout",
			cfg:     Config{APIKey: "key", Timeout: -time.Second},
			wantErr: true,
		},
		{
			name:    "negative max tags",
			cfg:     Config{APIKey: "key", MaxTags: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("Validate() error = %v, want %v", err, tt.is)
			}
		})
	}
}
