package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultBaseURL is the host serving YouTube channel feeds.
const DefaultBaseURL = "https://www.youtube.com"

type Fetcher struct {
	parser  *gofeed.Parser
	client  *http.Client
	baseURL string
}

// Video is one upload listed in a channel feed.
type Video struct {
	ID        string
	Title     string
	URL       string
	Channel   string
	Published *time.Time
}

// OPML structures for parsing
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Body    OPMLBody `xml:"body"`
}

type OPMLBody struct {
	Outlines []OPMLOutline `xml:"outline"`
}

type OPMLOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr"`
	Type     string        `xml:"type,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	HTMLURL  string        `xml:"htmlUrl,attr"`
	Outlines []OPMLOutline `xml:"outline"`
}

// NewFetcher creates a new channel feed fetcher. An empty baseURL uses
// DefaultBaseURL.
func NewFetcher(baseURL string) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "JapanesePortal/1.0"
	return &Fetcher{
		parser:  parser,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FeedURL returns the feed address for a channel. Values that already look
// like URLs are returned unchanged; anything else is treated as a channel id.
func (f *Fetcher) FeedURL(channel string) string {
	if strings.HasPrefix(channel, "http://") || strings.HasPrefix(channel, "https://") {
		return channel
	}
	return f.baseURL + "/feeds/videos.xml?channel_id=" + url.QueryEscape(channel)
}

// FetchChannel fetches and parses a channel feed, returning its videos in
// feed order.
func (f *Fetcher) FetchChannel(ctx context.Context, channel string) ([]Video, error) {
	feedURL := f.FeedURL(channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", feedURL, err)
	}
	req.Header.Set("User-Agent", "JapanesePortal/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", feedURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", feedURL, err)
	}

	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	return videosFromFeed(parsed), nil
}

func videosFromFeed(feed *gofeed.Feed) []Video {
	videos := make([]Video, 0, len(feed.Items))
	for _, item := range feed.Items {
		id := videoID(item)
		if id == "" {
			continue
		}
		v := Video{
			ID:      id,
			Title:   item.Title,
			URL:     item.Link,
			Channel: feed.Title,
		}
		if v.URL == "" {
			v.URL = "https://www.youtube.com/watch?v=" + id
		}
		if item.PublishedParsed != nil {
			v.Published = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			v.Published = item.UpdatedParsed
		}
		videos = append(videos, v)
	}
	return videos
}

// videoID prefers the yt:videoId extension and falls back to the link's v
// parameter.
func videoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && ids[0].Value != "" {
			return ids[0].Value
		}
	}
	if item.Link == "" {
		return ""
	}
	u, err := url.Parse(item.Link)
	if err != nil {
		return ""
	}
	return u.Query().Get("v")
}

// ReadOPML returns the feed URLs listed in an OPML file, folders included.
func ReadOPML(opmlPath string) ([]string, error) {
	data, err := os.ReadFile(opmlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OPML file: %w", err)
	}

	var opml OPML
	if err := xml.Unmarshal(data, &opml); err != nil {
		return nil, fmt.Errorf("failed to parse OPML: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	var processOutlines func(outlines []OPMLOutline)
	processOutlines = func(outlines []OPMLOutline) {
		for _, outline := range outlines {
			if outline.XMLURL != "" && !seen[outline.XMLURL] {
				seen[outline.XMLURL] = true
				urls = append(urls, outline.XMLURL)
			}
			if len(outline.Outlines) > 0 {
				processOutlines(outline.Outlines)
			}
		}
	}
	processOutlines(opml.Body.Outlines)
	return urls, nil
}
