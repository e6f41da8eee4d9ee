package bootstrap

import (
	"testing"
	"time"

	shared "github.com/fitsync/server/pkg"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "PORT", "TOKEN_PATH", "DESTINATIONS", "SYNC_START_DATE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if cfg.ProjectID != shared.ProjectID {
		t.Errorf("ProjectID = %q, want %q", cfg.ProjectID, shared.ProjectID)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.TokenPath != "token.json" {
		t.Errorf("TokenPath = %q, want token.json", cfg.TokenPath)
	}
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if !cfg.SyncWindowStart.Equal(want) {
		t.Errorf("SyncWindowStart = %v, want %v", cfg.SyncWindowStart, want)
	}
	if !cfg.DestinationEnabled(shared.DestinationFirestore) || !cfg.DestinationEnabled(shared.DestinationNotion) {
		t.Errorf("default Destinations = %v, want both enabled", cfg.Destinations)
	}
}

func TestLoadConfigDestinations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "notion only", raw: "notion", want: []string{"notion"}},
		{name: "both with spacing", raw: " Firestore , notion ", want: []string{"firestore", "notion"}},
		{name: "trailing comma ignored", raw: "firestore,", want: []string{"firestore"}},
		{name: "unknown rejected", raw: "firestore,bigquery", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DESTINATIONS", tt.raw)
			t.Setenv("SYNC_START_DATE", "")

			cfg, err := LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() = %v", err)
			}
			if len(cfg.Destinations) != len(tt.want) {
				t.Fatalf("Destinations = %v, want %v", cfg.Destinations, tt.want)
			}
			for i, d := range tt.want {
				if cfg.Destinations[i] != d {
					t.Errorf("Destinations[%d] = %q, want %q", i, cfg.Destinations[i], d)
				}
			}
		})
	}
}

func TestLoadConfigBadStartDate(t *testing.T) {
	t.Setenv("SYNC_START_DATE", "15-01-2025")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for malformed SYNC_START_DATE")
	}
}
