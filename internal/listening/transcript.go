package listening

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
)

var (
	ErrTranscriptNotFound  = errors.New("no transcript available for the requested languages")
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrVideoUnavailable    = errors.New("video is unavailable")
)

// Entry is one caption line.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TranscriptSource retrieves caption entries for a video in the first
// available language of languages.
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID string, languages []string) ([]Entry, error)
}

// DefaultYouTubeURL is the watch page host.
const DefaultYouTubeURL = "https://www.youtube.com"

// YouTubeSource reads caption tracks from the video watch page.
type YouTubeSource struct {
	baseURL string
	client  *http.Client
	policy  *bluemonday.Policy
}

// NewYouTubeSource returns a source for baseURL (DefaultYouTubeURL when empty).
func NewYouTubeSource(baseURL string) *YouTubeSource {
	if baseURL == "" {
		baseURL = DefaultYouTubeURL
	}
	return &YouTubeSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		policy:  bluemonday.StrictPolicy(),
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type captionsBlock struct {
	Renderer struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

type playability struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// timedText is the caption XML body.
type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

func (s *YouTubeSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "youtube", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "youtube", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Service:    "youtube",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode),
		}
	}
	return body, nil
}

// decodeAfter decodes the JSON value that follows key in page.
func decodeAfter(page, key string, v any) bool {
	i := strings.Index(page, key)
	if i < 0 {
		return false
	}
	return json.NewDecoder(strings.NewReader(page[i+len(key):])).Decode(v) == nil
}

// Transcript implements TranscriptSource.
func (s *YouTubeSource) Transcript(ctx context.Context, videoID string, languages []string) ([]Entry, error) {
	page, err := s.get(ctx, s.baseURL+"/watch?v="+videoID)
	if err != nil {
		return nil, err
	}

	var captions captionsBlock
	if !decodeAfter(string(page), `"captions":`, &captions) {
		var status playability
		if decodeAfter(string(page), `"playabilityStatus":`, &status) && status.Status != "" && status.Status != "OK" {
			return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, status.Reason)
		}
		return nil, ErrTranscriptsDisabled
	}
	tracks := captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	track := pickTrack(tracks, languages)
	if track == nil {
		return nil, fmt.Errorf("%w (%s)", ErrTranscriptNotFound, strings.Join(languages, ", "))
	}

	body, err := s.get(ctx, strings.ReplaceAll(track.BaseURL, "&fmt=srv3", ""))
	if err != nil {
		return nil, err
	}
	return s.parseTimedText(body)
}

// pickTrack follows the language order, preferring manual tracks over
// generated ones for each language.
func pickTrack(tracks []captionTrack, languages []string) *captionTrack {
	for _, lang := range languages {
		var generated *captionTrack
		for i := range tracks {
			if tracks[i].LanguageCode != lang {
				continue
			}
			if tracks[i].Kind != "asr" {
				return &tracks[i]
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return generated
		}
	}
	return nil
}

func (s *YouTubeSource) parseTimedText(body []byte) ([]Entry, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	entries := make([]Entry, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		text := html.UnescapeString(t.Body)
		text = html.UnescapeString(s.policy.Sanitize(text))
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		e := Entry{Text: text}
		e.Start, _ = strconv.ParseFloat(t.Start, 64)
		e.Duration, _ = strconv.ParseFloat(t.Dur, 64)
		entries = append(entries, e)
	}
	return entries, nil
}
