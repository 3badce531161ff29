package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boredapes/ctaplanner/internal/config"
	log "github.com/sirupsen/logrus"
)

// PostgRESTStore inserts rows through a PostgREST endpoint, such as the one fronting a
// Supabase project.
type PostgRESTStore struct {
	baseURL        string
	apiKey         string
	schedulesTable string
	eventsTable    string
	client         *http.Client
}

func NewPostgRESTStore(cfg config.PostgREST, client *http.Client) *PostgRESTStore {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &PostgRESTStore{
		baseURL:        strings.TrimRight(cfg.Url, "/"),
		apiKey:         cfg.ApiKey,
		schedulesTable: cfg.SchedulesTable,
		eventsTable:    cfg.EventsTable,
		client:         client,
	}
}

func (s *PostgRESTStore) InsertSchedule(ctx context.Context, header ScheduleHeader) error {
	return s.insert(ctx, SchedulesCollection, s.schedulesTable, []ScheduleHeader{header})
}

func (s *PostgRESTStore) InsertEvents(ctx context.Context, rows []EventRow) error {
	return s.insert(ctx, EventsCollection, s.eventsTable, rows)
}

// postgrestError is the error body PostgREST answers with.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (s *PostgRESTStore) insert(ctx context.Context, collection string, table string, rows any) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return &StoreError{Collection: collection, Message: "failed to encode rows", Err: err}
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return &StoreError{Collection: collection, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return &StoreError{Collection: collection, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var apiErr postgrestError
	message := fmt.Sprintf("store returned status %d", resp.StatusCode)
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	log.Errorf("PostgREST insert into %s failed with status %d: %s", table, resp.StatusCode, message)
	return &StoreError{Collection: collection, Message: message}
}
