package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"crewlink/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/rooms", h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL + "/some/page")
	require.NoError(t, err)
	return New(base, time.Second, zaptest.NewLogger(t))
}

func TestList(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Entry{
			{ID: "A1|A1", Name: "A1", Code: "A1", Count: 3},
			{ID: "B2|Polus", Name: "Polus", Code: "B2", Count: 0},
		})
	})

	entries, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Count)
	assert.Equal(t, game.Room{Code: "B2", Name: "Polus"}, entries[1].Room())
}

func TestListEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]\n"))
	})

	entries, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: "unexpected status",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
			want: "decode rooms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(t, tt.handler).List(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEntryRoom(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  game.Room
	}{
		{"id wins", Entry{ID: "C3|Mira", Name: "ignored", Code: "ZZ"}, game.Room{Code: "C3", Name: "Mira"}},
		{"malformed id", Entry{ID: "C3", Name: "Mira", Code: "C3"}, game.Room{Code: "C3", Name: "Mira"}},
		{"no name", Entry{Code: "C3"}, game.Room{Code: "C3", Name: "C3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Room())
		})
	}
}

func TestFind(t *testing.T) {
	entries := []Entry{
		{ID: "A1|Skeld", Code: "A1"},
		{ID: "B2|Polus", Code: "B2"},
	}

	e, err := Find(entries, "b2")
	require.NoError(t, err)
	assert.Equal(t, "B2", e.Code)

	e, err = Find(entries, "skeld")
	require.NoError(t, err)
	assert.Equal(t, "A1", e.Code)

	_, err = Find(entries, "Q9")
	assert.ErrorIs(t, err, ErrNoRoom)
}
