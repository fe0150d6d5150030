package mirror

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// fakeBucket is a minimal path-style S3 endpoint holding objects in memory
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := b.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestMirror(t *testing.T) (*S3Mirror, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string][]byte{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	m, err := NewS3Mirror(context.Background(), Options{
		Bucket:          "stats",
		Key:             "wheel/stats.json",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	if err != nil {
		t.Fatalf("NewS3Mirror: %v", err)
	}
	return m, bucket
}

func TestS3Mirror(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch before publish", func(t *testing.T) {
		m, _ := newTestMirror(t)
		if _, err := m.Fetch(ctx); !errors.Is(err, ErrNoSnapshot) {
			t.Errorf("error = %v, want ErrNoSnapshot", err)
		}
	})

	t.Run("publish then fetch", func(t *testing.T) {
		m, bucket := newTestMirror(t)
		snap := models.StatsSnapshot{
			GeneratedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
			Prizes: []models.PrizeStat{
				{ID: "grand", Label: "Grand Prize", Cap: models.IntPtr(1), Remaining: models.IntPtr(0), TotalDistributed: 1},
				{ID: "thanks", Label: "Thank you", TotalDistributed: 4, IsAvailable: true},
			},
		}
		if err := m.Publish(ctx, snap); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		if _, ok := bucket.objects["/stats/wheel/stats.json"]; !ok {
			t.Fatalf("object not stored at path-style key, have %v", bucket.objects)
		}

		got, err := m.Fetch(ctx)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if !got.GeneratedAt.Equal(snap.GeneratedAt) || len(got.Prizes) != 2 {
			t.Fatalf("fetched %+v", got)
		}
		if *got.Prizes[0].Remaining != 0 || got.Prizes[1].Cap != nil || got.Prizes[1].TotalDistributed != 4 {
			t.Errorf("fetched prizes %+v", got.Prizes)
		}
	})
}
