package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
	"golang.org/x/time/rate"
)

func newTestRedditClient(t *testing.T, search http.HandlerFunc) *RedditClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if id, secret, ok := r.BasicAuth(); !ok || id != "id" || secret != "secret" {
			t.Errorf("token request credentials = %q/%q", id, secret)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/r/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		search(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewRedditClient(config.RedditConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		Subreddits:   "headphones, audiophile",
		AuthURL:      srv.URL + "/api/v1/access_token",
		APIURL:       srv.URL,
	})
	client.limiter = rate.NewLimiter(rate.Inf, 1)
	client.initialBackoff = time.Millisecond
	return client
}

func TestRedditClient_ExtractReviews(t *testing.T) {
	client := newTestRedditClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "sony xm5" || q.Get("sort") != "new" {
			t.Errorf("query = %v", q)
		}
		switch {
		case r.URL.Path == "/r/headphones/search" && q.Get("after") == "":
			fmt.Fprint(w, `{"data":{"after":"t3_b","children":[
				{"data":{"title":"Love them","selftext":"**Great** ANC"}},
				{"data":{"title":"","selftext":""}}]}}`)
		case r.URL.Path == "/r/headphones/search" && q.Get("after") == "t3_b":
			fmt.Fprint(w, `{"data":{"after":"","children":[{"data":{"title":"Cracked hinge"}}]}}`)
		case r.URL.Path == "/r/audiophile/search":
			fmt.Fprint(w, `{"data":{"after":"t3_z","children":[{"data":{"selftext":"Too bassy"}},{"data":{"title":"extra"}}]}}`)
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	})

	got, err := client.ExtractReviews(context.Background(), "sony xm5", 3, models.SortSubmissionDesc)
	if err != nil {
		t.Fatalf("ExtractReviews() error = %v", err)
	}
	want := []string{"Love them\nGreat ANC", "Cracked hinge", "Too bassy"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("ExtractReviews() = %q, want %q", got, want)
	}
}

func TestRedditClient_RejectsEmptyQuery(t *testing.T) {
	client := newTestRedditClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	if _, err := client.ExtractReviews(context.Background(), "  ", 10, models.SortRelevancy); !errors.Is(err, models.ErrInput) {
		t.Errorf("error = %v, want ErrInput", err)
	}
}

func TestRedditClient_RetriesTooManyRequests(t *testing.T) {
	calls := 0
	client := newTestRedditClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":{"children":[{"data":{"title":"ok"}}]}}`)
	})

	got, err := client.ExtractReviews(context.Background(), "xm5", 1, models.SortRelevancy)
	if err != nil || len(got) != 1 || calls != 2 {
		t.Errorf("got %v, %v after %d calls", got, err, calls)
	}
}
