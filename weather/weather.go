// Package weather looks up the current weather displayed on the dashboard.
//
// The lookup is informational only: it never blocks the dashboard for longer
// than a bounded wait and any failure is reported as an empty forecast.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"
)

// DefaultEndpoint is the open-meteo forecast API.
const DefaultEndpoint = "https://api.open-meteo.com/v1/forecast"

// Jakarta coordinates, the default location of the shop.
const (
	JakartaLatitude  = -6.2088
	JakartaLongitude = 106.8456
)

// DefaultTimeout bounds the wait for the lookup.
const DefaultTimeout = 2 * time.Second

// Current is the current weather at a location.
type Current struct {
	Temperature float64 // °C
	WindSpeed   float64 // km/h
	Code        int     // WMO weather interpretation code
	HasCode     bool    // Code was reported
}

// Description is a short label of the weather code, "" when unknown.
func (c Current) Description() string {
	switch {
	case !c.HasCode:
		return ""
	case c.Code == 0:
		return "clear"
	case c.Code <= 3:
		return "cloudy"
	case c.Code == 45 || c.Code == 48:
		return "fog"
	case c.Code >= 51 && c.Code <= 67:
		return "rain"
	case c.Code >= 71 && c.Code <= 77:
		return "snow"
	case c.Code >= 80 && c.Code <= 82:
		return "showers"
	case c.Code >= 95:
		return "thunderstorm"
	}
	return ""
}

func (c Current) String() string {
	s := strconv.FormatFloat(c.Temperature, 'f', -1, 64) + "°C"
	if d := c.Description(); d != "" {
		s += ", " + d
	}
	return s
}

// Client queries the forecast API for a fixed location.
type Client struct {
	HTTP      *http.Client
	Endpoint  string
	Latitude  float64
	Longitude float64
	Logger    *zap.Logger
}

// NewClient returns a client for the Jakarta forecast.
func NewClient() *Client {
	return &Client{
		HTTP:      new(http.Client),
		Endpoint:  DefaultEndpoint,
		Latitude:  JakartaLatitude,
		Longitude: JakartaLongitude,
		Logger:    zap.NewNop(),
	}
}

func (c *Client) addr() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	q.Set("current_weather", "true")
	return c.Endpoint + "?" + q.Encode()
}

// Current fetches the current weather.
func (c *Client) Current(ctx context.Context) (Current, error) {
	var jobj any
	if err := jwget(ctx, c.HTTP, c.addr(), &jobj); err != nil {
		return Current{}, fmt.Errorf("cannot get the current weather: %w", err)
	}
	temperature, err := number(jobj, "$.current_weather.temperature")
	if err != nil {
		return Current{}, err
	}
	cur := Current{Temperature: temperature}
	// wind and code are optional
	if v, err := number(jobj, "$.current_weather.windspeed"); err == nil {
		cur.WindSpeed = v
	}
	if v, err := number(jobj, "$.current_weather.weathercode"); err == nil {
		cur.Code, cur.HasCode = int(v), true
	}
	return cur, nil
}

// Lookup fetches the current weather in its own goroutine and waits at most
// timeout for it. It returns the formatted weather, or "" when the lookup
// failed or took too long.
func (c *Client) Lookup(ctx context.Context, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		cur Current
		err error
	}
	done := make(chan result, 1)
	go func() {
		cur, err := c.Current(ctx)
		done <- result{cur, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			c.logger().Debug("weather lookup failed", zap.Error(r.err))
			return ""
		}
		return r.cur.String()
	case <-ctx.Done():
		c.logger().Debug("weather lookup timed out", zap.Duration("timeout", timeout))
		return ""
	}
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// number extracts a number at path in jobj.
func number(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath may return a list of one answer
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: not a number %v", path, jval)
	}
	return val, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
