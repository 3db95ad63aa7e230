// Package youtube is a thin client for the YouTube Data API v3, used to
// surface tutorial videos on the landing page.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Video is the flattened shape served to the front end.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	URL          string `json:"url"`
	EmbedURL     string `json:"embedUrl"`
}

// SearchOptions narrow a video search. Zero values fall back to defaults.
type SearchOptions struct {
	MaxResults     int
	Order          string // relevance, date, viewCount
	Duration       string // short, medium, long
	ChannelID      string
	PublishedAfter string // RFC 3339
}

// Client calls the YouTube Data API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// New creates a client. baseURL overrides the public API endpoint
// (used in tests); empty means the real one.
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Medium  thumbnail `json:"medium"`
				Default thumbnail `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// SearchVideos queries the search endpoint and flattens the result.
func (c *Client) SearchVideos(ctx context.Context, query string, opts SearchOptions) ([]Video, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 6
	}
	if opts.Order == "" {
		opts.Order = "relevance"
	}
	if opts.Duration == "" {
		opts.Duration = "medium"
	}

	params := url.Values{
		"part":              {"snippet"},
		"type":              {"video"},
		"q":                 {query},
		"maxResults":        {strconv.Itoa(opts.MaxResults)},
		"order":             {opts.Order},
		"videoDuration":     {opts.Duration},
		"key":               {c.apiKey},
		"safeSearch":        {"strict"},
		"relevanceLanguage": {"en"},
	}
	if opts.ChannelID != "" {
		params.Set("channelId", opts.ChannelID)
	}
	if opts.PublishedAfter != "" {
		params.Set("publishedAfter", opts.PublishedAfter)
	}

	var sr searchResponse
	if err := c.get(ctx, "/search", params, &sr); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(sr.Items))
	for _, item := range sr.Items {
		id := item.ID.VideoID
		if id == "" {
			continue
		}
		thumb := item.Snippet.Thumbnails.Medium.URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails.Default.URL
		}
		videos = append(videos, Video{
			ID:           id,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    thumb,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			URL:          "https://www.youtube.com/watch?v=" + id,
			EmbedURL:     "https://www.youtube.com/embed/" + id,
		})
	}
	return videos, nil
}

// VideoDetail carries per-video statistics and duration.
type VideoDetail struct {
	ID       string `json:"id"`
	Duration string `json:"duration"` // formatted, e.g. "4:13"
	Views    string `json:"views"`
	Likes    string `json:"likes"`
}

type detailsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// VideoDetails fetches duration and view counts for a set of video IDs.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]VideoDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{
		"part": {"contentDetails,statistics"},
		"id":   {strings.Join(ids, ",")},
		"key":  {c.apiKey},
	}

	var dr detailsResponse
	if err := c.get(ctx, "/videos", params, &dr); err != nil {
		return nil, err
	}

	details := make([]VideoDetail, 0, len(dr.Items))
	for _, item := range dr.Items {
		details = append(details, VideoDetail{
			ID:       item.ID,
			Duration: FormatDuration(item.ContentDetails.Duration),
			Views:    item.Statistics.ViewCount,
			Likes:    item.Statistics.LikeCount,
		})
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var durationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// FormatDuration converts an ISO 8601 duration (PT4M13S) to a clock string
// (4:13). Unparseable input comes back unchanged.
func FormatDuration(iso string) string {
	m := durationRe.FindStringSubmatch(iso)
	if m == nil {
		return iso
	}
	hours := atoiDefault(m[1])
	minutes := atoiDefault(m[2])
	seconds := atoiDefault(m[3])

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
