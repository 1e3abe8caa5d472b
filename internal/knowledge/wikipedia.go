// Package knowledge looks up short encyclopedic summaries used to ground
// generated scripts.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	pathSummary      = "/api/rest_v1/page/summary/"
	pathOpenSearch   = "/w/api.php"
	headerUserAgent  = "User-Agent"
	headerAccept     = "Accept"
	contentTypeJSON  = "application/json"
	pageTypeStandard = "standard"
	titleSpace       = " "
	titleUnderscore  = "_"
)

const (
	errFmtCreateRequest = "failed to create knowledge request: %w"
	errFmtSendRequest   = "failed to query %s: %w"
	errFmtUnexpected    = "%w: %s returned %s"
	errFmtDecode        = "failed to decode knowledge response: %w"
	errFmtNotFound      = "%w: %q"
)

var (
	// ErrNotFound is returned when no summary exists for a topic.
	ErrNotFound = errors.New("no summary found")
	// ErrUnexpectedStatus is returned for non-OK, non-404 responses.
	ErrUnexpectedStatus = errors.New("unexpected knowledge source status")
)

// WikipediaClient fetches page summaries from a MediaWiki installation.
type WikipediaClient struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	relatedResults int
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// NewWikipediaClient creates a client for the given site root
// (e.g. "https://en.wikipedia.org").
func NewWikipediaClient(
	baseURL, userAgent string,
	relatedResults int,
	timeout time.Duration,
) *WikipediaClient {
	return &WikipediaClient{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		userAgent:      userAgent,
		relatedResults: relatedResults,
	}
}

// Summary returns the summary extract for topic. When the exact page does
// not exist the related titles from a search are tried in order.
func (c *WikipediaClient) Summary(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)

	extract, found, err := c.pageSummary(ctx, topic)
	if err != nil {
		return "", err
	}

	if found {
		return extract, nil
	}

	titles, err := c.search(ctx, topic)
	if err != nil {
		return "", err
	}

	for _, title := range titles {
		extract, found, err = c.pageSummary(ctx, title)
		if err != nil {
			return "", err
		}

		if found {
			return extract, nil
		}
	}

	return "", fmt.Errorf(errFmtNotFound, ErrNotFound, topic)
}

func (c *WikipediaClient) pageSummary(ctx context.Context, title string) (string, bool, error) {
	endpoint := c.baseURL + pathSummary +
		url.PathEscape(strings.ReplaceAll(title, titleSpace, titleUnderscore))

	var summary pageSummary

	found, err := c.getJSON(ctx, endpoint, &summary)
	if err != nil || !found {
		return "", false, err
	}

	extract := strings.TrimSpace(summary.Extract)
	if summary.Type != pageTypeStandard || extract == "" {
		return "", false, nil
	}

	return extract, true, nil
}

// search runs an opensearch query and returns the matching titles. The
// response is a positional array: [query, titles, descriptions, urls].
func (c *WikipediaClient) search(ctx context.Context, topic string) ([]string, error) {
	query := url.Values{}
	query.Set("action", "opensearch")
	query.Set("search", topic)
	query.Set("limit", strconv.Itoa(c.relatedResults))
	query.Set("namespace", "0")
	query.Set("format", "json")

	var raw []json.RawMessage

	found, err := c.getJSON(ctx, c.baseURL+pathOpenSearch+"?"+query.Encode(), &raw)
	if err != nil || !found || len(raw) < 2 {
		return nil, err
	}

	var titles []string

	err = json.Unmarshal(raw[1], &titles)
	if err != nil {
		return nil, fmt.Errorf(errFmtDecode, err)
	}

	return titles, nil
}

// getJSON fetches endpoint into target. A 404 is reported as found=false.
func (c *WikipediaClient) getJSON(ctx context.Context, endpoint string, target any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, fmt.Errorf(errFmtCreateRequest, err)
	}

	req.Header.Set(headerUserAgent, c.userAgent)
	req.Header.Set(headerAccept, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf(errFmtSendRequest, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf(errFmtUnexpected, ErrUnexpectedStatus, c.baseURL, resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(target)
	if err != nil {
		return false, fmt.Errorf(errFmtDecode, err)
	}

	return true, nil
}
