package llm

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

const catalogTimeout = 30 * time.Second

// Catalog fetches and caches the router's model listing. The catalog is
// queried at most once per process: a failed fetch caches the empty list, and
// callers are expected to keep working from their configured models.
type Catalog struct {
	url   string
	token string

	mu      sync.Mutex
	fetched bool
	models  []string

	client *http.Client
}

// NewCatalog creates a catalog backed by the given models endpoint.
func NewCatalog(url, token string) *Catalog {
	return &Catalog{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: catalogTimeout},
	}
}

// Models returns the text-capable model identifiers available to the
// configured credential, fetching the catalog on first use.
func (c *Catalog) Models(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fetched {
		return c.models
	}
	c.fetched = true

	models, err := c.fetch(ctx)
	if err != nil {
		log.Printf("Unable to fetch router model list, falling back to configured models only: %v", err)
		c.models = nil
		return nil
	}
	c.models = models
	return models
}

// Reset clears the cache so tests can force a refetch.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = false
	c.models = nil
}

func (c *Catalog) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{status: resp.StatusCode, details: "model catalog fetch failed"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var catalog struct {
		Data []struct {
			ID           string `json:"id"`
			Architecture struct {
				OutputModalities []string `json:"output_modalities"`
			} `json:"architecture"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, err
	}

	var models []string
	for _, entry := range catalog.Data {
		if entry.ID == "" {
			continue
		}
		for _, modality := range entry.Architecture.OutputModalities {
			if modality == "text" {
				models = append(models, entry.ID)
				break
			}
		}
	}
	return models, nil
}
