package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const unsplashSearchUrl = "https://api.unsplash.com/search/photos"

// UnsplashPageSize is the number of records requested per page.
const UnsplashPageSize int = 20

type UnsplashPhoto struct {
	Id             string       `json:"id"`
	Description    string       `json:"description"`
	AltDescription string       `json:"alt_description"`
	User           UnsplashUser `json:"user"`
	Urls           UnsplashUrls `json:"urls"`
}

type UnsplashUser struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type UnsplashUrls struct {
	Regular string `json:"regular"`
	Raw     string `json:"raw"`
}

type UnsplashSearchResult struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []UnsplashPhoto `json:"results"`
}

type UnsplashApi struct {
	Http      *http.Client
	accessKey string
	baseUrl   string
	log       *log.Logger
}

func NewUnsplashApi(cfg *Config) *UnsplashApi {
	baseUrl := cfg.Unsplash.BaseUrl
	if baseUrl == "" {
		baseUrl = unsplashSearchUrl
	}
	return &UnsplashApi{
		Http:      http.DefaultClient,
		accessKey: cfg.Unsplash.AccessKey,
		baseUrl:   baseUrl,
		log:       log.New(os.Stderr, "(unsplash) ", log.LstdFlags),
	}
}

// SearchPhotos always goes to the network; see CachedSearcher for the cached path.
func (unsp *UnsplashApi) SearchPhotos(ctx context.Context, query string, page int) (*SearchResult, error) {
	return unsp.FetchPhotos(ctx, query, page)
}

// FetchPhotos performs one live search request. It fails with a *ConfigError
// before touching the network when no access key is configured, and with a
// *RequestError for any non-2xx response.
func (unsp *UnsplashApi) FetchPhotos(ctx context.Context, query string, page int) (*SearchResult, error) {
	if unsp.accessKey == "" {
		return nil, &ConfigError{Field: "unsplash.com.access", Reason: "Unsplash API key is not configured"}
	}
	raw, err := unsp.fetchRaw(ctx, query, page)
	if err != nil {
		return nil, err
	}
	return decodeSearchResult(raw)
}

func (unsp *UnsplashApi) fetchRaw(ctx context.Context, query string, page int) ([]byte, error) {
	qParam := url.Values{}
	qParam.Add("query", query)
	qParam.Add("page", strconv.Itoa(page))
	qParam.Add("per_page", strconv.Itoa(UnsplashPageSize))
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, unsp.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	getReq.Header.Set("Accept-Version", "v1")
	getReq.Header.Set("Authorization", "Client-ID "+unsp.accessKey)

	resp, err := unsp.Http.Do(getReq)
	if err != nil {
		unsp.log.Println("Failed to fetch:", err.Error())
		return nil, fmt.Errorf("fetching %q page %d: %w", query, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func decodeSearchResult(raw []byte) (*SearchResult, error) {
	data := UnsplashSearchResult{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	output := make([]ImageData, len(data.Results))
	for i, el := range data.Results {
		output[i].Id = el.Id
		output[i].DisplayUrl = el.Urls.Regular
		output[i].Attribution = el.User.Name
		output[i].AltText = el.AltDescription
		if output[i].AltText == "" {
			output[i].AltText = "Image by " + el.User.Name
		}
	}
	return &SearchResult{
		Images:     output,
		Total:      data.Total,
		TotalPages: data.TotalPages,
		Raw:        json.RawMessage(raw),
	}, nil
}
