package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const baseURL = "https://www.strava.com/api/v3"

type Client struct {
	Client  *http.Client
	BaseUrl string
}

// NewClient returns a client that sends accessToken as a bearer credential
// on every request. ctx only supplies the base transport (oauth2.HTTPClient).
func NewClient(ctx context.Context, accessToken string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return &Client{
		Client:  oauth2.NewClient(ctx, src),
		BaseUrl: baseURL,
	}
}

// WithBaseURL points the client at another API root, e.g. a test server.
func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.BaseUrl = strings.TrimRight(u, "/")
	}
	return c
}

func (c *Client) NewStravaRequest(ctx context.Context, method, urlPath string, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s", c.BaseUrl, urlPath)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// do sends req and decodes a 2xx JSON body into v. Anything else comes back
// as an *APIError.
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling strava: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("error code calling strava", "statusCode", resp.StatusCode, "url", req.URL, "respBody", string(body))
		apiErr := &APIError{Response: resp}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding strava response: %w", err)
	}
	return nil
}

func (c *Client) GetAthlete(ctx context.Context) (Athlete, error) {
	req, err := c.NewStravaRequest(ctx, http.MethodGet, "athlete", nil)
	if err != nil {
		return Athlete{}, fmt.Errorf("unable to create athlete request: %w", err)
	}

	var athlete Athlete
	if err := c.do(req, &athlete); err != nil {
		return Athlete{}, fmt.Errorf("error getting athlete: %w", err)
	}
	return athlete, nil
}

func (c *Client) GetActivities(ctx context.Context, opts *ActivityListOptions) ([]Activity, error) {
	req, err := c.NewStravaRequest(ctx, http.MethodGet, "athlete/activities", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create activities request: %w", err)
	}

	if opts != nil {
		v, err := query.Values(opts)
		if err != nil {
			return nil, fmt.Errorf("unable to encode activity options: %w", err)
		}
		req.URL.RawQuery = v.Encode()
	}

	activities := make([]Activity, 0)
	if err := c.do(req, &activities); err != nil {
		return nil, fmt.Errorf("error getting activities: %w", err)
	}
	return activities, nil
}

func (c *Client) GetZones(ctx context.Context) (ZoneSet, error) {
	req, err := c.NewStravaRequest(ctx, http.MethodGet, "athlete/zones", nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zones request: %w", err)
	}

	var zones ZoneSet
	if err := c.do(req, &zones); err != nil {
		return nil, fmt.Errorf("error getting zones: %w", err)
	}
	return zones, nil
}
