package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"leadscout/internal/domain"
)

const defaultSheetsEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"

// sheetHeader is the column layout of an exported lead sheet.
var sheetHeader = []interface{}{
	"Full Name",
	"Profile URL",
	"Job Title",
	"Company",
	"Country",
	"Total Experience",
	"Industry",
	"Extracted Date",
}

// SheetsConfig configures the spreadsheet exporter. AccessToken is an OAuth
// bearer token minted outside this service; credential management is not this
// client's concern.
type SheetsConfig struct {
	SpreadsheetID string
	AccessToken   string
	Endpoint      string
	MockMode      bool
	HTTP          Config
}

// SheetsClient writes selected profiles into a new tab of the configured
// spreadsheet. It implements pipeline.Exporter.
type SheetsClient struct {
	cfg    SheetsConfig
	client *client
	logger *slog.Logger

	mu   sync.Mutex
	gids map[string]int64 // sheet name → sheet id, for URL construction
}

// NewSheetsClient creates a SheetsClient.
func NewSheetsClient(cfg SheetsConfig, logger *slog.Logger) *SheetsClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultSheetsEndpoint
	}
	return &SheetsClient{
		cfg:    cfg,
		client: newClient(cfg.HTTP, logger),
		logger: logger,
		gids:   make(map[string]int64),
	}
}

func (s *SheetsClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.cfg.AccessToken}
}

// ExportProfiles creates a tab named sheetName and appends one row per
// profile. Returns the number of rows written.
func (s *SheetsClient) ExportProfiles(ctx context.Context, profiles []domain.Profile, sheetName string) (int, error) {
	s.logger.Info("Exporting profiles to sheet",
		slog.String("sheet", sheetName),
		slog.Int("profiles", len(profiles)),
	)

	if s.cfg.MockMode {
		s.mu.Lock()
		s.gids[sheetName] = int64(len(s.gids)) // stable fake sheet ids
		s.mu.Unlock()
		return len(profiles), nil
	}

	if err := s.createSheet(ctx, sheetName); err != nil {
		return 0, err
	}

	rows := make([][]interface{}, 0, len(profiles)+1)
	rows = append(rows, sheetHeader)
	extracted := time.Now().Format("2006-01-02")
	for _, p := range profiles {
		rows = append(rows, profileRow(p, extracted))
	}

	appendURL := fmt.Sprintf("%s/%s/values/%s!A1:append?valueInputOption=RAW",
		s.cfg.Endpoint, s.cfg.SpreadsheetID, url.PathEscape(sheetName))
	body := map[string]interface{}{"values": rows}
	if err := s.client.postJSON(ctx, appendURL, s.headers(), body, nil); err != nil {
		return 0, fmt.Errorf("failed to append rows: %w", err)
	}

	return len(profiles), nil
}

// SheetURL returns the browser URL for a previously created tab.
func (s *SheetsClient) SheetURL(ctx context.Context, sheetName string) (string, error) {
	s.mu.Lock()
	gid, ok := s.gids[sheetName]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown sheet %q", sheetName)
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%s",
		s.cfg.SpreadsheetID, strconv.FormatInt(gid, 10)), nil
}

func (s *SheetsClient) createSheet(ctx context.Context, sheetName string) error {
	batchURL := fmt.Sprintf("%s/%s:batchUpdate", s.cfg.Endpoint, s.cfg.SpreadsheetID)
	body := map[string]interface{}{
		"requests": []interface{}{
			map[string]interface{}{
				"addSheet": map[string]interface{}{
					"properties": map[string]interface{}{"title": sheetName},
				},
			},
		},
	}

	var resp struct {
		Replies []struct {
			AddSheet struct {
				Properties struct {
					SheetID int64 `json:"sheetId"`
				} `json:"properties"`
			} `json:"addSheet"`
		} `json:"replies"`
	}
	if err := s.client.postJSON(ctx, batchURL, s.headers(), body, &resp); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if len(resp.Replies) > 0 {
		s.mu.Lock()
		s.gids[sheetName] = resp.Replies[0].AddSheet.Properties.SheetID
		s.mu.Unlock()
	}
	return nil
}

func profileRow(p domain.Profile, extracted string) []interface{} {
	var payload domain.ProfilePayload
	if len(p.ProfileData) > 0 {
		_ = json.Unmarshal(p.ProfileData, &payload)
	}
	return []interface{}{
		payload.FullName,
		p.ProfileURL,
		p.JobTitle.String,
		p.Company,
		p.Country,
		fmt.Sprintf("%.1f", p.ExperienceYears),
		payload.Industry,
		extracted,
	}
}
