package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const forecast = `{
  "latitude": -6.25,
  "longitude": 106.875,
  "current_weather": {"temperature": 31.5, "windspeed": 7.2, "winddirection": 250, "weathercode": 2, "is_day": 1}
}`

func server(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient()
	c.HTTP = srv.Client()
	c.Endpoint = srv.URL
	return c
}

func TestCurrent(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "-6.2088" || q.Get("longitude") != "106.8456" || q.Get("current_weather") != "true" {
			http.Error(w, "bad query "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, forecast)
	})

	got, err := c.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	want := Current{Temperature: 31.5, WindSpeed: 7.2, Code: 2, HasCode: true}
	if got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
	if s := got.String(); s != "31.5°C, cloudy" {
		t.Errorf("String() = %q, want %q", s, "31.5°C, cloudy")
	}
}

func TestCurrent_NoCode(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current_weather":{"temperature":29}}`)
	})
	got, err := c.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if got.HasCode || got.Description() != "" {
		t.Errorf("Current() = %+v, description %q, want no code", got, got.Description())
	}
	if s := got.String(); s != "29°C" {
		t.Errorf("String() = %q, want %q", s, "29°C")
	}
}

func TestCurrent_Errors(t *testing.T) {
	testCases := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", http.StatusServiceUnavailable) }},
		{"not json", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>") }},
		{"no temperature", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"current_weather":{}}`) }},
		{"not a number", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"current_weather":{"temperature":"hot"}}`)
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := server(t, tc.h)
			if _, err := c.Current(context.Background()); err == nil {
				t.Error("Current() succeeded, want an error")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, forecast) })
	if got := c.Lookup(context.Background(), time.Second); got != "31.5°C, cloudy" {
		t.Errorf("Lookup() = %q, want %q", got, "31.5°C, cloudy")
	}
}

func TestLookup_FailsOpen(t *testing.T) {
	failing := server(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	if got := failing.Lookup(context.Background(), time.Second); got != "" {
		t.Errorf("Lookup() = %q on failure, want empty", got)
	}

	slow := server(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	start := time.Now()
	if got := slow.Lookup(context.Background(), 50*time.Millisecond); got != "" {
		t.Errorf("Lookup() = %q on timeout, want empty", got)
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Errorf("Lookup() waited %v, want about 50ms", d)
	}
}

func TestCached(t *testing.T) {
	var hits atomic.Int32
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, forecast)
	})
	c.HTTP = Cached(t.TempDir(), time.Hour, nil)

	for i := 0; i < 3; i++ {
		got, err := c.Current(context.Background())
		if err != nil {
			t.Fatalf("Current() #%d error: %v", i, err)
		}
		if got.Temperature != 31.5 {
			t.Errorf("Current() #%d temperature = %v, want 31.5", i, got.Temperature)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	var hits atomic.Int32
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	})
	c.HTTP = Cached(t.TempDir(), time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, err := c.Current(context.Background()); err == nil {
			t.Errorf("Current() #%d succeeded, want an error", i)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}
