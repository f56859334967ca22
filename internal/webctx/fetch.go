// Package webctx enriches prompts with short live web snippets. Enrichment
// is best-effort: every failure degrades to an empty result, never an error.
package webctx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	fetchTimeout = 12 * time.Second

	maxRelatedTopics = 5
	maxSnippets      = 6
	maxWikiTitles    = 3
)

// Source is one snippet with its origin URL.
type Source struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Result is the assembled context block and the sources behind it.
type Result struct {
	Text    string
	Sources []Source
}

// Fetcher produces web context for a query. Implementations must return the
// zero Result when nothing usable is available.
type Fetcher interface {
	Fetch(ctx context.Context, query string) Result
}

// Client queries the DuckDuckGo instant-answer API and falls back to
// Wikipedia search plus page summaries.
type Client struct {
	duckDuckGoURL   string
	wikiSearchURL   string
	wikiSummaryBase string
	client          *http.Client
}

// NewClient creates a fetcher against the public endpoints.
func NewClient() *Client {
	return &Client{
		duckDuckGoURL:   "https://api.duckduckgo.com/",
		wikiSearchURL:   "https://en.wikipedia.org/w/api.php",
		wikiSummaryBase: "https://en.wikipedia.org/api/rest_v1/page/summary/",
		client:          &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch returns snippets for the query, or the zero Result when both the
// search API and the encyclopedia fallback come up empty.
func (c *Client) Fetch(ctx context.Context, query string) Result {
	result, err := c.fetchDuckDuckGo(ctx, query)
	if err == nil && len(result.Sources) > 0 {
		return result
	}
	if err != nil {
		log.Printf("DuckDuckGo lookup failed, trying Wikipedia: %v", err)
	}

	result, err = c.fetchWikipedia(ctx, query)
	if err != nil {
		log.Printf("Wikipedia lookup failed: %v", err)
		return Result{}
	}
	return result
}

type duckDuckGoTopic struct {
	Text     string            `json:"Text"`
	FirstURL string            `json:"FirstURL"`
	Topics   []duckDuckGoTopic `json:"Topics"`
}

func (c *Client) fetchDuckDuckGo(ctx context.Context, query string) (Result, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"no_redirect":   {"1"},
		"skip_disambig": {"1"},
	}

	var payload struct {
		Answer        string            `json:"Answer"`
		AnswerURL     string            `json:"AnswerURL"`
		AbstractText  string            `json:"AbstractText"`
		AbstractURL   string            `json:"AbstractURL"`
		RelatedTopics []duckDuckGoTopic `json:"RelatedTopics"`
	}
	if err := c.getJSON(ctx, c.duckDuckGoURL+"?"+params.Encode(), &payload); err != nil {
		return Result{}, err
	}

	var items []Source
	if payload.Answer != "" {
		items = append(items, Source{Text: payload.Answer, URL: payload.AnswerURL})
	}
	if payload.AbstractText != "" {
		items = append(items, Source{Text: payload.AbstractText, URL: payload.AbstractURL})
	}

	related := flattenTopics(payload.RelatedTopics)
	if len(related) > maxRelatedTopics {
		related = related[:maxRelatedTopics]
	}
	items = append(items, related...)

	var cleaned []Source
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		cleaned = append(cleaned, Source{Text: text, URL: strings.TrimSpace(item.URL)})
		if len(cleaned) == maxSnippets {
			break
		}
	}

	return assemble(cleaned), nil
}

// flattenTopics lifts one level of nested topic groups into a flat list.
func flattenTopics(topics []duckDuckGoTopic) []Source {
	var rows []Source
	for _, topic := range topics {
		if topic.Text != "" {
			rows = append(rows, Source{Text: topic.Text, URL: topic.FirstURL})
			continue
		}
		for _, nested := range topic.Topics {
			if nested.Text != "" {
				rows = append(rows, Source{Text: nested.Text, URL: nested.FirstURL})
			}
		}
	}
	return rows
}

func (c *Client) fetchWikipedia(ctx context.Context, query string) (Result, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"format":   {"json"},
		"srlimit":  {fmt.Sprintf("%d", maxWikiTitles)},
	}

	var searchPayload struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.getJSON(ctx, c.wikiSearchURL+"?"+params.Encode(), &searchPayload); err != nil {
		return Result{}, err
	}

	hits := searchPayload.Query.Search
	if len(hits) > maxWikiTitles {
		hits = hits[:maxWikiTitles]
	}

	var items []Source
	for _, hit := range hits {
		var summary struct {
			Extract     string `json:"extract"`
			ContentURLs struct {
				Desktop struct {
					Page string `json:"page"`
				} `json:"desktop"`
			} `json:"content_urls"`
		}
		if err := c.getJSON(ctx, c.wikiSummaryBase+url.PathEscape(hit.Title), &summary); err != nil {
			continue
		}
		if summary.Extract == "" {
			continue
		}
		items = append(items, Source{
			Text: hit.Title + ": " + summary.Extract,
			URL:  summary.ContentURLs.Desktop.Page,
		})
	}

	return assemble(items), nil
}

// assemble numbers the snippets into the context block format the prompt
// builder splices in.
func assemble(items []Source) Result {
	if len(items) == 0 {
		return Result{}
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item.Text))
	}
	return Result{Text: strings.Join(lines, "\n"), Sources: items}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
