package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSourceFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("Weather_station_ID,Message\n1,It's cold 5C\n2,Clear skies\n"))
	}))
	defer srv.Close()

	src := NewCSVSource(CSVOptions{UserAgent: "survey-cli-test", Timeout: 5 * time.Second, RatePerSec: 100})
	tbl, err := src.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "survey-cli-test", gotUA)
	assert.Equal(t, []string{"Weather_station_ID", "Message"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Clear skies", tbl.Rows[1]["Message"])
}

func TestCSVSourceFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewCSVSource(CSVOptions{RatePerSec: 100})
	_, err := src.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestCSVSourceFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	src := NewCSVSource(CSVOptions{RatePerSec: 100})
	_, err := src.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestCSVSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewCSVSource(CSVOptions{RatePerSec: 0.001}) // force a long limiter wait
	_, err := src.Fetch(ctx, "http://example.test/x.csv")
	require.Error(t, err)
}
