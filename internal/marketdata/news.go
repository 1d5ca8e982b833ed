package marketdata

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
)

// NewsItem is one headline from the market news feed.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source,omitempty"`
	Published string `json:"published,omitempty"`
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			PubDate string `xml:"pubDate"`
			Source  string `xml:"source"`
		} `xml:"item"`
	} `xml:"channel"`
}

// MarketNews searches Google News for the query and returns up to limit
// headlines, newest first as the feed orders them.
func (c *Client) MarketNews(ctx context.Context, query string, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		c.newsBaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market news: unexpected status %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode market news feed: %w", err)
	}

	items := make([]NewsItem, 0, limit)
	for _, it := range feed.Channel.Items {
		if len(items) >= limit {
			break
		}
		items = append(items, NewsItem{
			Title:     it.Title,
			Link:      it.Link,
			Source:    it.Source,
			Published: it.PubDate,
		})
	}
	return items, nil
}
