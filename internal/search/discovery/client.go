package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/google"

	"lexiguard-backend/internal/search"
)

const (
	defaultBaseURL = "https://discoveryengine.googleapis.com/v1"
	cloudScope     = "https://www.googleapis.com/auth/cloud-platform"
)

// Options configures a Discovery Engine (Vertex AI Search) client.
type Options struct {
	Project     string
	Location    string
	DatastoreID string
	// BaseURL and HTTPClient are overridable for tests. A nil HTTPClient
	// uses Application Default Credentials.
	BaseURL    string
	HTTPClient *http.Client
}

// Client queries one data store's default serving config.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New builds a client. Missing project or datastore is an error.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Project) == "" {
		return nil, errors.New("discovery: project is required")
	}
	if strings.TrimSpace(opts.DatastoreID) == "" {
		return nil, errors.New("discovery: datastore id is required")
	}
	location := opts.Location
	if location == "" {
		location = "global"
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = google.DefaultClient(ctx, cloudScope)
		if err != nil {
			return nil, fmt.Errorf("discovery: default credentials: %w", err)
		}
	}
	endpoint := fmt.Sprintf("%s/projects/%s/locations/%s/collections/default_collection/dataStores/%s/servingConfigs/default_config:search",
		base, url.PathEscape(opts.Project), url.PathEscape(location), url.PathEscape(opts.DatastoreID))
	return &Client{endpoint: endpoint, httpClient: httpClient}, nil
}

type searchRequest struct {
	Query             string            `json:"query"`
	PageSize          int               `json:"pageSize"`
	ContentSearchSpec contentSearchSpec `json:"contentSearchSpec"`
}

type contentSearchSpec struct {
	SnippetSpec snippetSpec `json:"snippetSpec"`
}

type snippetSpec struct {
	ReturnSnippet bool `json:"returnSnippet"`
}

type searchResponse struct {
	Results []struct {
		Document struct {
			DerivedStructData struct {
				Title    string `json:"title"`
				Snippets []struct {
					Snippet string `json:"snippet"`
				} `json:"snippets"`
			} `json:"derivedStructData"`
		} `json:"document"`
	} `json:"results"`
}

// Search returns the top result or nil when the data store has no match.
func (c *Client) Search(ctx context.Context, query string) (*search.Result, error) {
	payload, err := json.Marshal(searchRequest{
		Query:             query,
		PageSize:          1,
		ContentSearchSpec: contentSearchSpec{SnippetSpec: snippetSpec{ReturnSnippet: true}},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery search: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("discovery search: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discovery http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("discovery search: decode: %w", err)
	}
	if len(decoded.Results) == 0 {
		return nil, nil
	}
	// A top document without a snippet carries no evidence.
	data := decoded.Results[0].Document.DerivedStructData
	if len(data.Snippets) == 0 || strings.TrimSpace(data.Snippets[0].Snippet) == "" {
		return nil, nil
	}
	return &search.Result{Title: data.Title, Snippet: data.Snippets[0].Snippet}, nil
}
