package gcs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenSourceCachesUntilNearExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "tok-1", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if token != "tok-1" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected single fetch, got %d", calls)
	}
}

func TestTokenSourceRefetchesWhenExpiring(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		token:  "stale",
		expiry: time.Now().Add(30 * time.Second),
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "fresh", time.Now().Add(time.Hour), nil
		},
	}

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != "fresh" || calls != 1 {
		t.Fatalf("expected refetch, got token=%q calls=%d", token, calls)
	}
}

func TestTokenSourcePropagatesFetchError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("metadata unavailable")
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			return "", time.Time{}, wantErr
		},
	}

	if _, err := ts.Token(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestBucketHandleDefaults(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "semprebella-media"}
	if got := client.BucketHandle("").Name(); got != "semprebella-media" {
		t.Fatalf("expected default bucket, got %q", got)
	}
	if got := client.BucketHandle("other").Name(); got != "other" {
		t.Fatalf("expected explicit bucket, got %q", got)
	}
}

func TestBucketObjectName(t *testing.T) {
	t.Parallel()

	bucket := &Bucket{name: "semprebella-media"}
	name, ok := bucket.ObjectName("https://storage.googleapis.com/semprebella-media/produtos/abc/foto.jpg")
	if !ok || name != "produtos/abc/foto.jpg" {
		t.Fatalf("expected object name, got %q ok=%v", name, ok)
	}
	if _, ok := bucket.ObjectName("https://storage.googleapis.com/outro-bucket/foto.jpg"); ok {
		t.Fatalf("expected mismatch for foreign bucket")
	}
	if _, ok := bucket.ObjectName("https://cdn.exemplo.com/foto.jpg"); ok {
		t.Fatalf("expected mismatch for foreign host")
	}
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := parsePrivateKey("not a pem block"); err == nil {
		t.Fatalf("expected error for invalid pem")
	}
}
