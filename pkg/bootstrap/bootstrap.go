package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/infrastructure/database"
	"github.com/fitsync/server/pkg/integrations/notion"
)

// Config holds standard configuration for the server
type Config struct {
	ProjectID          string
	Port               string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	NotionToken        string
	NotionDatabaseID   string
	TokenPath          string
	SentryDSN          string
	Environment        string
	// Destinations lists the enabled sync targets ("firestore", "notion").
	Destinations []string
	// SyncWindowStart is the fixed start of the default sync window.
	SyncWindowStart time.Time
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = shared.ProjectID // Fallback
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	tokenPath := os.Getenv("TOKEN_PATH")
	if tokenPath == "" {
		tokenPath = "token.json"
	}

	windowStart := os.Getenv("SYNC_START_DATE")
	if windowStart == "" {
		windowStart = shared.SyncWindowStart
	}
	start, err := time.Parse(time.RFC3339, windowStart)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_START_DATE %q: %w", windowStart, err)
	}

	destinations := []string{shared.DestinationFirestore, shared.DestinationNotion}
	if raw := os.Getenv("DESTINATIONS"); raw != "" {
		destinations = destinations[:0]
		for _, d := range strings.Split(raw, ",") {
			d = strings.ToLower(strings.TrimSpace(d))
			switch d {
			case shared.DestinationFirestore, shared.DestinationNotion:
				destinations = append(destinations, d)
			case "":
			default:
				return nil, fmt.Errorf("unknown destination %q in DESTINATIONS", d)
			}
		}
	}

	return &Config{
		ProjectID:          projectID,
		Port:               port,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   os.Getenv("OAUTH_REDIRECT_URL"),
		NotionToken:        os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID:   os.Getenv("NOTION_DATABASE_ID"),
		TokenPath:          tokenPath,
		SentryDSN:          os.Getenv("SENTRY_DSN"),
		Environment:        os.Getenv("ENVIRONMENT"),
		Destinations:       destinations,
		SyncWindowStart:    start,
	}, nil
}

// DestinationEnabled reports whether the named destination is configured.
func (c *Config) DestinationEnabled(name string) bool {
	for _, d := range c.Destinations {
		if d == name {
			return true
		}
	}
	return false
}

// Service holds initialized dependencies
type Service struct {
	Store        shared.DailyStore
	Destinations []shared.Destination
	Firestore    *firestore.Client
	Config       *Config
}

// NewService initializes the persistence dependencies. The Firestore client is
// always created because it backs the read API; it is only registered as a
// sync destination when enabled in the config.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	slog.Info("Initializing service", "project_id", cfg.ProjectID, "destinations", cfg.Destinations)

	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Firestore init failed", "error", err)
		return nil, fmt.Errorf("firestore init: %w", err)
	}
	adapter := database.NewFirestoreAdapter(fsClient)

	var destinations []shared.Destination
	if cfg.DestinationEnabled(shared.DestinationFirestore) {
		destinations = append(destinations, adapter)
	}
	if cfg.DestinationEnabled(shared.DestinationNotion) {
		if cfg.NotionToken == "" || cfg.NotionDatabaseID == "" {
			return nil, fmt.Errorf("notion destination enabled but NOTION_TOKEN/NOTION_DATABASE_ID not set")
		}
		destinations = append(destinations, notion.NewClient(cfg.NotionToken, cfg.NotionDatabaseID))
	}
	if len(destinations) == 0 {
		return nil, fmt.Errorf("no sync destinations configured")
	}

	return &Service{
		Store:        adapter,
		Destinations: destinations,
		Firestore:    fsClient,
		Config:       cfg,
	}, nil
}
