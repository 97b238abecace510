package albion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Query().Get("q") {
		case "Aeron":
			fmt.Fprint(w, `{"players":[
				{"Id":"p1","Name":"Aeron","GuildName":"Highland Brotherhood"},
				{"Id":"p2","Name":"Aeronwyn","GuildName":""}
			]}`)
		default:
			fmt.Fprint(w, `{"players":[]}`)
		}
	})
	mux.HandleFunc("/players/p1", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"Id":"p1","Name":"Aeron","GuildName":"Highland Brotherhood","KillFame":123,"DeathFame":45}`)
	})
	mux.HandleFunc("/players/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFindExact(t *testing.T) {
	var hits atomic.Int64
	server := newTestServer(t, &hits)
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	t.Run("exact match among prefix results", func(t *testing.T) {
		p, err := client.FindExact(context.Background(), "Aeron")
		if err != nil {
			t.Fatalf("FindExact: %v", err)
		}
		if p.ID != "p1" || p.GuildName != "Highland Brotherhood" {
			t.Errorf("FindExact = %+v, want player p1", p)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		p, err := client.FindExact(context.Background(), "Aeron")
		if err != nil {
			t.Fatalf("FindExact: %v", err)
		}
		if p.Name != "Aeron" {
			t.Errorf("Name = %q, want Aeron", p.Name)
		}
	})

	t.Run("prefix only is not a match", func(t *testing.T) {
		_, err := client.FindExact(context.Background(), "Nobody")
		if !errors.Is(err, ErrPlayerNotFound) {
			t.Errorf("err = %v, want ErrPlayerNotFound", err)
		}
	})
}

func TestSearchCachesResults(t *testing.T) {
	var hits atomic.Int64
	server := newTestServer(t, &hits)
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := client.SearchPlayers(context.Background(), "Aeron"); err != nil {
			t.Fatalf("SearchPlayers: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("API hits = %d, want 1 (cached)", got)
	}

	// Different capitalization shares the cache entry.
	if _, err := client.SearchPlayers(context.Background(), "aeron"); err != nil {
		t.Fatalf("SearchPlayers: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("API hits after case change = %d, want 1", got)
	}
}

func TestGetPlayer(t *testing.T) {
	var hits atomic.Int64
	server := newTestServer(t, &hits)
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	p, err := client.GetPlayer(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if p.KillFame != 123 || p.DeathFame != 45 {
		t.Errorf("fame = %d/%d, want 123/45", p.KillFame, p.DeathFame)
	}

	if _, err := client.GetPlayer(context.Background(), "missing"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}
