// Package images fetches illustration candidates from Unsplash for a
// generated post. Image fetching is strictly best-effort: any failure is
// logged and the pipeline continues without images.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIURL   = "https://api.unsplash.com"
	sectionImageCap = 3
)

// Image is one illustration candidate with its attribution.
type Image struct {
	URL         string `json:"url"`
	ThumbURL    string `json:"thumb_url"`
	Description string `json:"description,omitempty"`
	Credit      string `json:"credit"`
	CreditURL   string `json:"credit_url"`
}

// Set is the image payload attached to a generation response.
type Set struct {
	Featured *Image  `json:"featured,omitempty"`
	Sections []Image `json:"sections,omitempty"`
}

// Fetcher queries the Unsplash search API.
type Fetcher struct {
	client    *http.Client
	apiURL    string
	accessKey string
}

// New creates a Fetcher. An empty access key yields a disabled fetcher that
// returns nil sets.
func New(accessKey string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		apiURL:    defaultAPIURL,
		accessKey: accessKey,
	}
}

// Enabled reports whether an access key is configured.
func (f *Fetcher) Enabled() bool { return f.accessKey != "" }

// Fetch searches for a featured image plus up to three section images using
// the primary keywords as the query. A nil Set with nil error means images
// were unavailable; callers proceed without them.
func (f *Fetcher) Fetch(ctx context.Context, primaryKeywords []string) (*Set, error) {
	if !f.Enabled() || len(primaryKeywords) == 0 {
		return nil, nil
	}

	query := strings.Join(primaryKeywords[:min(len(primaryKeywords), 2)], " ")
	results, err := f.search(ctx, query, sectionImageCap+1)
	if err != nil {
		slog.Warn("image search failed, continuing without images",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}

	set := &Set{Featured: &results[0]}
	if len(results) > 1 {
		set.Sections = results[1:]
	}
	return set, nil
}

type searchResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

func (f *Fetcher) search(ctx context.Context, query string, count int) ([]Image, error) {
	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=%d&orientation=landscape",
		f.apiURL, url.QueryEscape(query), count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+f.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	images := make([]Image, 0, len(payload.Results))
	for _, r := range payload.Results {
		images = append(images, Image{
			URL:         r.URLs.Regular,
			ThumbURL:    r.URLs.Small,
			Description: r.AltDescription,
			Credit:      r.User.Name,
			CreditURL:   r.User.Links.HTML,
		})
	}
	return images, nil
}
