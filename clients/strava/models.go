package strava

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type Athlete struct {
	ID                    int64  `json:"id"`
	Username              string `json:"username"`
	FirstName             string `json:"firstname"`
	LastName              string `json:"lastname"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	Country               string `json:"country"`
	FollowerCount         int    `json:"follower_count"`
	Profile               string `json:"profile"`
	CreatedAt             string `json:"created_at"`
	MeasurementPreference string `json:"measurement_preference"`
}

// Activity is a summary activity as returned by /athlete/activities.
// start_date_local is kept as a string so a bad date only affects the
// records that read it.
type Activity struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Distance           float64 `json:"distance"`
	MovingTime         float64 `json:"moving_time"`
	AverageSpeed       float64 `json:"average_speed"`
	TotalElevationGain float64 `json:"total_elevation_gain"`
	StartDateLocal     string  `json:"start_date_local"`
	Type               string  `json:"type"`
	Map                Map     `json:"map"`
}

type Map struct {
	ID              string `json:"id"`
	SummaryPolyline string `json:"summary_polyline"`
}

// ZoneSet is the raw /athlete/zones payload. Depending on the endpoint it is
// either a list of typed zone distributions or an object keyed by zone kind,
// so it is only decoded when shaped.
type ZoneSet json.RawMessage

func (z ZoneSet) MarshalJSON() ([]byte, error) {
	if len(z) == 0 {
		return []byte("null"), nil
	}
	return z, nil
}

func (z *ZoneSet) UnmarshalJSON(b []byte) error {
	*z = append((*z)[:0], b...)
	return nil
}

type ActivityListOptions struct {
	Before  int64 `url:"before,omitempty"`
	After   int64 `url:"after,omitempty"`
	Page    int   `url:"page,omitempty"`
	PerPage int   `url:"per_page,omitempty"`
}

// Token is the credential set handed back by the token endpoint.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type Fault struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

// APIError is returned for any non-2xx response from the Strava API.
type APIError struct {
	Response *http.Response `json:"-"`
	Message  string         `json:"message"`
	Errors   []Fault        `json:"errors"`
}

func (err *APIError) Error() string {
	msg := err.Message
	if len(err.Errors) > 0 {
		faults := make([]string, 0, len(err.Errors))
		for _, f := range err.Errors {
			faults = append(faults, fmt.Sprintf("%s.%s %s", f.Resource, f.Field, f.Code))
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(faults, ", "))
	}
	return fmt.Sprintf("%v %v: %d %v",
		err.Response.Request.Method, err.Response.Request.URL,
		err.Response.StatusCode, msg)
}

func (err *APIError) StatusCode() int {
	return err.Response.StatusCode
}
