package guides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"
)

var ErrGuideNotFound = errors.New("guide not found")

// catalogKey is the object under the guide root that maps categories to
// weapon guides: {"Tank": {"1h Mace": "tank/1h_mace.md", ...}, ...}.
const catalogKey = "catalog.json"

// Entry identifies one weapon guide inside the catalog.
type Entry struct {
	Category string
	Weapon   string
	key      string
}

// Store serves weapon guide markdown out of a Spaces bucket. The catalog and
// every guide body are loaded once at startup; guides change rarely and only
// through redeploys, so there is no invalidation.
type Store struct {
	client *s3.Client
	bucket string
	root   string

	mu      sync.RWMutex
	entries []Entry
	bodies  map[string]string
}

func NewStore(spacesKey, spacesSecret, region, bucket, guideRoot string) (*Store, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		root:   strings.Trim(guideRoot, "/"),
		bodies: make(map[string]string),
	}, nil
}

// Preload fetches the catalog and all guide bodies. Guides load in parallel
// and any single failure aborts the whole preload, a partially loaded
// catalog would serve confusing "not found" errors at runtime.
func (s *Store) Preload(ctx context.Context) error {
	start := time.Now()

	raw, err := s.fetch(ctx, s.objectKey(catalogKey))
	if err != nil {
		return fmt.Errorf("failed to fetch guide catalog: %w", err)
	}

	var catalog map[string]map[string]string
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		return fmt.Errorf("malformed guide catalog: %w", err)
	}

	var entries []Entry
	for category, weapons := range catalog {
		for weapon, key := range weapons {
			entries = append(entries, Entry{Category: category, Weapon: weapon, key: key})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Weapon < entries[j].Weapon
	})

	bodies := make(map[string]string, len(entries))
	var bodiesMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			body, err := s.fetch(gctx, s.objectKey(e.key))
			if err != nil {
				return fmt.Errorf("failed to fetch guide %s/%s: %w", e.Category, e.Weapon, err)
			}
			bodiesMu.Lock()
			bodies[e.key] = body
			bodiesMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = entries
	s.bodies = bodies
	s.mu.Unlock()

	slog.Info("Weapon guides loaded",
		slog.String("type", "guides"),
		slog.Int("count", len(entries)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// Entries lists the catalog grouped the way it was authored.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

// Categories returns the catalog's category names in sorted order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, e := range s.entries {
		if len(out) == 0 || out[len(out)-1] != e.Category {
			out = append(out, e.Category)
		}
	}
	return out
}

// Guide returns the rendered guide body for a catalog entry, with shared
// snippets expanded.
func (s *Store) Guide(category, weapon string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Category == category && e.Weapon == weapon {
			body, ok := s.bodies[e.key]
			if !ok {
				return "", ErrGuideNotFound
			}
			return InsertSnippets(body), nil
		}
	}
	return "", ErrGuideNotFound
}

// Search fuzzy-matches weapon names, best match first.
func (s *Store) Search(query string, limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Weapon
	}

	matches := fuzzy.Find(query, names)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = s.entries[m.Index]
	}
	return out
}

func (s *Store) objectKey(key string) string {
	if s.root == "" {
		return key
	}
	return s.root + "/" + key
}

func (s *Store) fetch(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return "", err
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
