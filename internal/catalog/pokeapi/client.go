package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	fetchTimeout = 30 * time.Second
)

// Client is a catalog.Provider backed by the PokeAPI REST catalog.
// Concurrent lookups of the same id share one upstream round trip.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	generations *catalog.GenerationTable
	names       *catalog.NameTable
	locale      string

	group singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// WithRateLimit caps upstream requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(client *Client) {
		if perSecond <= 0 {
			client.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		client.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// WithNameTable supplies localized names for species the API has no
// translation for.
func WithNameTable(t *catalog.NameTable) Option {
	return func(client *Client) { client.names = t }
}

func WithLocale(locale string) Option {
	return func(client *Client) { client.locale = locale }
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(10), 10),
		generations: catalog.Generations(),
		locale:      "ko",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
}

type speciesResponse struct {
	Names []struct {
		Name     string        `json:"name"`
		Language namedResource `json:"language"`
	} `json:"names"`
	FlavorTextEntries []struct {
		FlavorText string        `json:"flavor_text"`
		Language   namedResource `json:"language"`
	} `json:"flavor_text_entries"`
}

func (c *Client) Get(ctx context.Context, id int) (*catalog.Item, error) {
	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := c.group.DoChan(strconv.Itoa(id), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return c.fetch(fetchCtx, id)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	// Callers may modify the item, so each gets its own copy.
	item := *res.Val.(*catalog.Item)
	item.Types = append(catalog.TypeTags(nil), item.Types...)
	return &item, nil
}

func (c *Client) fetch(ctx context.Context, id int) (*catalog.Item, error) {
	var pokemon pokemonResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/pokemon/%d", id), &pokemon); err != nil {
		return nil, fmt.Errorf("failed to fetch pokemon %d: %w", id, err)
	}

	var species speciesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/pokemon-species/%d", id), &species); err != nil {
		// Names and descriptions are optional decoration.
		slog.Warn("failed to fetch species", "id", id, "error", err)
	}

	types := make(catalog.TypeTags, 0, len(pokemon.Types))
	for _, t := range pokemon.Types {
		types = append(types, strings.ToLower(t.Type.Name))
	}

	item := &catalog.Item{
		ID:            pokemon.ID,
		Name:          pokemon.Name,
		LocalizedName: c.localizedName(pokemon.ID, species),
		Generation:    c.generations.GenerationOf(pokemon.ID),
		Types:         types,
		ImageURL:      pokemon.Sprites.FrontDefault,
		Description:   c.description(species),
		UpdatedAt:     time.Now().UTC(),
	}
	slog.Info("fetched catalog item from PokeAPI", "id", item.ID, "name", item.Name)
	return item, nil
}

func (c *Client) localizedName(id int, species speciesResponse) string {
	for _, n := range species.Names {
		if n.Language.Name == c.locale {
			return n.Name
		}
	}
	if name, ok := c.names.Lookup(id); ok {
		return name
	}
	return ""
}

// description prefers the configured locale and falls back to English.
func (c *Client) description(species speciesResponse) string {
	var fallback string
	for _, entry := range species.FlavorTextEntries {
		switch entry.Language.Name {
		case c.locale:
			return cleanFlavorText(entry.FlavorText)
		case "en":
			if fallback == "" {
				fallback = entry.FlavorText
			}
		}
	}
	return cleanFlavorText(fallback)
}

func cleanFlavorText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, worldcup.ErrNotFound)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("PokeAPI returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
