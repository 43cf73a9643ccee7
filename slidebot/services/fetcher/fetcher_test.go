package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	httputils "slidebot/slidebot/utils/http"
	"slidebot/slidebot/utils/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slide-2-2048.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpeg:" + r.URL.Path))
	}))
	defer srv.Close()

	pages := []types.PageURL{
		{Index: 1, URL: srv.URL + "/slide-1-2048.jpg"},
		{Index: 2, URL: srv.URL + "/slide-2-2048.jpg"},
		{Index: 3, URL: srv.URL + "/slide-3-2048.jpg"},
	}
	dir := t.TempDir()
	results := NewFetcher(httputils.NewClient(0), 0).Fetch(context.Background(), dir, pages)

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.True(t, results[2].OK())

	var se *StatusError
	require.True(t, errors.As(results[1].Err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.NoFileExists(t, ImagePath(dir, 2, 0))

	data, err := os.ReadFile(results[2].Image.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/slide-3-2048.jpg", string(data))

	images := Downloaded(results)
	require.Len(t, images, 2)
	assert.Equal(t, 1, images[0].Index)
	assert.Equal(t, 3, images[1].Index)
	assert.Equal(t, types.FetchSummary{Attempted: 3, Succeeded: 2}, Summarize(results))
}

func TestFetchAllFailedVersusNothingAttempted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(httputils.NewClient(0), 0)
	failed := f.Fetch(context.Background(), t.TempDir(), []types.PageURL{{Index: 1, URL: srv.URL + "/a"}})
	assert.Equal(t, types.FetchSummary{Attempted: 1, Succeeded: 0}, Summarize(failed))
	assert.Empty(t, Downloaded(failed))

	none := f.Fetch(context.Background(), t.TempDir(), nil)
	assert.Equal(t, types.FetchSummary{}, Summarize(none))
}

func TestFetchRespectsConcurrencyCap(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var pages []types.PageURL
	for i := 1; i <= 6; i++ {
		pages = append(pages, types.PageURL{Index: i, URL: srv.URL})
	}
	results := NewFetcher(httputils.NewClient(0), 2).Fetch(context.Background(), t.TempDir(), pages)
	assert.Len(t, Downloaded(results), 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestFetchTransportError(t *testing.T) {
	results := NewFetcher(httputils.NewClient(time.Second), 0).Fetch(context.Background(), t.TempDir(),
		[]types.PageURL{{Index: 1, URL: "http://127.0.0.1:1/slide-1-2048.jpg"}})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestFetchSameIndexFromTwoTemplatesKeepsBothFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	}))
	defer srv.Close()

	var pages []types.PageURL
	for i := 1; i <= 2; i++ {
		for _, v := range []string{"a", "b"} {
			pages = append(pages, types.PageURL{
				Index: i,
				URL:   srv.URL + "/slide-" + strconv.Itoa(i) + "-2048.jpg?v=" + v,
			})
		}
	}
	dir := t.TempDir()
	results := NewFetcher(httputils.NewClient(0), 0).Fetch(context.Background(), dir, pages)

	images := Downloaded(results)
	require.Len(t, images, 4)
	paths := map[string]bool{}
	for i, img := range images {
		paths[img.Path] = true
		data, err := os.ReadFile(img.Path)
		require.NoError(t, err)
		assert.Equal(t, strings.TrimPrefix(pages[i].URL, srv.URL), string(data))
	}
	assert.Len(t, paths, 4, "each URL needs its own file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, ImagePath(dir, 1, 0), images[0].Path)
	assert.Equal(t, ImagePath(dir, 1, 1), images[1].Path)
}
