package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/openverse-dev/weekly-digest/internal/domain"
)

// PublishError reports a non-201 response from the CMS. Body carries
// the raw response so a failed publish can be diagnosed without
// re-running.
type PublishError struct {
	Status int
	Body   string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish rejected with status %d: %s", e.Status, e.Body)
}

// Publisher defines the behavior of a gateway that creates digest posts
// on the CMS. Publish returns the created post's id and the raw
// response body; the body is returned on failure too so the caller can
// log it.
type Publisher interface {
	Publish(ctx context.Context, post domain.DigestPost) (int, string, error)
}

// WordPressGateway publishes posts through the WordPress REST API.
type WordPressGateway struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *log.Logger
}

// NewWordPressGateway creates a publisher for the site at baseURL,
// authenticating with basic auth.
func NewWordPressGateway(baseURL, username, password string, logger *log.Logger) *WordPressGateway {
	return &WordPressGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Publish creates a new post. Success is HTTP 201 exactly; any other
// status becomes a PublishError. A slug collision on re-run within the
// same week is the CMS's concern and is not retried here.
func (w *WordPressGateway) Publish(ctx context.Context, post domain.DigestPost) (int, string, error) {
	payload, err := json.Marshal(post)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal post payload: %w", err)
	}

	url := w.baseURL + "/wp-json/wp/v2/posts"
	w.logger.Printf("Publishing %q to %s", post.Slug, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(w.username, w.password)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to reach CMS: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read CMS response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return 0, string(body), &PublishError{Status: resp.StatusCode, Body: string(body)}
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, string(body), fmt.Errorf("failed to decode CMS response: %w", err)
	}
	return created.ID, string(body), nil
}
