package albion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultBaseURL is the gameinfo endpoint of the Europe server.
const DefaultBaseURL = "https://gameinfo-ams.albiononline.com/api/gameinfo"

var ErrPlayerNotFound = errors.New("player not found")

// Player is the subset of the gameinfo player payload the bot cares about.
type Player struct {
	ID           string  `json:"Id"`
	Name         string  `json:"Name"`
	GuildID      string  `json:"GuildId"`
	GuildName    string  `json:"GuildName"`
	AllianceID   string  `json:"AllianceId"`
	AllianceName string  `json:"AllianceName"`
	AllianceTag  string  `json:"AllianceTag"`
	KillFame     int64   `json:"KillFame"`
	DeathFame    int64   `json:"DeathFame"`
	FameRatio    float64 `json:"FameRatio"`

	LifetimeStatistics struct {
		PvE struct {
			Total int64 `json:"Total"`
		} `json:"PvE"`
	} `json:"LifetimeStatistics"`
}

type searchResponse struct {
	Players []Player `json:"players"`
}

// Client queries the Albion Online gameinfo API. Lookups are cached because
// registration flows hit the same names repeatedly while members retry
// typos, and the API rate limits aggressively.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache
}

type cacheEntry struct {
	players   []Player
	expiresAt time.Time
}

const (
	cacheSize = 512
	cacheTTL  = 10 * time.Minute
)

func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}, nil
}

// SearchPlayers runs a name search against the gameinfo API.
func (c *Client) SearchPlayers(ctx context.Context, name string) ([]Player, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if entry, ok := c.cache.Get(key); ok {
		cached := entry.(cacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.players, nil
		}
		c.cache.Remove(key)
	}

	var res searchResponse
	if err := c.getJSON(ctx, "/search?q="+url.QueryEscape(name), &res); err != nil {
		return nil, err
	}

	c.cache.Add(key, cacheEntry{players: res.Players, expiresAt: time.Now().Add(cacheTTL)})
	return res.Players, nil
}

// FindExact resolves a name to the single player carrying it, ignoring case.
// The search endpoint returns prefix matches, so an exact pass over the
// results is still needed.
func (c *Client) FindExact(ctx context.Context, name string) (*Player, error) {
	players, err := c.SearchPlayers(ctx, name)
	if err != nil {
		return nil, err
	}
	for i := range players {
		if strings.EqualFold(players[i].Name, name) {
			return &players[i], nil
		}
	}
	return nil, ErrPlayerNotFound
}

// GetPlayer fetches one player by gameinfo id.
func (c *Client) GetPlayer(ctx context.Context, id string) (*Player, error) {
	var p Player
	if err := c.getJSON(ctx, "/players/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gameinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("Gameinfo API call",
		slog.String("type", "albion"),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrPlayerNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("gameinfo returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
