// Package resolve turns human-readable board, list, and card names into
// upstream identifiers. Resolution combines an allow-list guard, a TTL
// cache of confirmed resolutions, an exact match scan over the live
// listing, and Levenshtein-based fuzzy matching with an ambiguity policy
// that prefers telling the caller to disambiguate over guessing.
package resolve

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Candidate is one record from an upstream listing or search response.
type Candidate struct {
	ID   string
	Name string
}

// Lister is the upstream collaborator the resolver fetches live name
// listings from. Implemented by the Trello client.
type Lister interface {
	// BoardNames lists the boards visible to the authenticated member.
	BoardNames(ctx context.Context) ([]Candidate, error)
	// ListNames lists the open lists on a board.
	ListNames(ctx context.Context, boardID string) ([]Candidate, error)
	// CardNames lists the open cards on a board. Fallback path only:
	// boards can carry thousands of cards, CardSearch is tried first.
	CardNames(ctx context.Context, boardID string) ([]Candidate, error)
	// CardSearch runs a name-scoped search for cards on a board, in
	// upstream relevance order.
	CardSearch(ctx context.Context, name, boardID string) ([]Candidate, error)
}

// Thresholds are the fuzzy-match tuning constants. The values carry no
// stated derivation; they are kept configurable rather than re-derived.
type Thresholds struct {
	// Accept is the minimum similarity for a fuzzy match on the listing path.
	Accept float64
	// FallbackAccept is the stricter minimum on the card search-fallback
	// path, where scoping guarantees are weaker.
	FallbackAccept float64
	// AmbiguityGap: top two scores closer than this are unresolvable.
	AmbiguityGap float64
}

// DefaultThresholds returns the standard tuning constants.
func DefaultThresholds() Thresholds {
	return Thresholds{Accept: 0.8, FallbackAccept: 0.9, AmbiguityGap: 0.05}
}

// Bounds on candidate names surfaced in failure hints.
const (
	maxAmbiguousHints = 10
	maxNoMatchHints   = 5
)

// Resolution is a successful name→id resolution. Exact reports whether
// the name matched a live candidate (or cached confirmation) exactly,
// as opposed to being accepted by fuzzy matching.
type Resolution struct {
	ID    string `json:"id"`
	Exact bool   `json:"exact_match"`
}

// Resolver resolves resource names against live upstream listings.
// Safe for concurrent use; concurrent misses for the same name are
// coalesced into a single upstream fetch.
type Resolver struct {
	api   Lister
	cache *Cache
	guard *ScopeGuard
	th    Thresholds
	group singleflight.Group
}

// New creates a resolver. cache may be nil to disable caching.
func New(api Lister, cache *Cache, guard *ScopeGuard, th Thresholds) *Resolver {
	if guard == nil {
		guard = NewScopeGuard(nil, "")
	}
	return &Resolver{api: api, cache: cache, guard: guard, th: th}
}

// Guard returns the access scope guard, for callers that need the
// configured default board name.
func (r *Resolver) Guard() *ScopeGuard { return r.guard }

// CacheStats reports resolver cache counters, or a zero snapshot when
// caching is disabled.
func (r *Resolver) CacheStats() CacheStats {
	if r.cache == nil {
		return CacheStats{}
	}
	return r.cache.Stats()
}

// InvalidateBoard drops all cached child resolutions under a board and
// the board's own cached name mapping. Called after mutations that
// change board structure.
func (r *Resolver) InvalidateBoard(boardID string) {
	if r.cache != nil {
		r.cache.InvalidateScope(boardID)
	}
}

// ResolveBoard resolves a board name to its id. The scope guard runs
// first: a denied name fails before any network access.
func (r *Resolver) ResolveBoard(ctx context.Context, name string) (Resolution, error) {
	if err := r.guard.Check(name); err != nil {
		return Resolution{}, err
	}
	if r.cache != nil {
		if id, ok := r.cache.Get(name); ok {
			return Resolution{ID: id, Exact: true}, nil
		}
	}
	return r.coalesce(ctx, "board::"+normalizeName(name), func(ctx context.Context) (Resolution, error) {
		cands, err := r.api.BoardNames(ctx)
		if err != nil {
			return Resolution{}, &Error{Kind: KindUpstream, Resource: "board", Name: name, Err: err}
		}
		return r.fromListing("board", "", name, cands, r.th.Accept)
	})
}

// ResolveList resolves a list name under an already-resolved board.
func (r *Resolver) ResolveList(ctx context.Context, boardID, name string) (Resolution, error) {
	if r.cache != nil {
		if id, ok := r.cache.GetScoped(boardID, "list:"+normalizeName(name)); ok {
			return Resolution{ID: id, Exact: true}, nil
		}
	}
	return r.coalesce(ctx, "list:"+boardID+":"+normalizeName(name), func(ctx context.Context) (Resolution, error) {
		cands, err := r.api.ListNames(ctx, boardID)
		if err != nil {
			return Resolution{}, &Error{Kind: KindUpstream, Resource: "list", Name: name, Err: err}
		}
		return r.fromListing("list", boardID, name, cands, r.th.Accept)
	})
}

// ResolveCard resolves a card name under an already-resolved board.
// Cards are searched rather than listed, because card counts do not stay
// small: the upstream search endpoint is queried first, and only when it
// returns nothing does the resolver fall back to the full open-card
// listing, with the stricter acceptance threshold.
func (r *Resolver) ResolveCard(ctx context.Context, boardID, name string) (Resolution, error) {
	if r.cache != nil {
		if id, ok := r.cache.GetScoped(boardID, "card:"+normalizeName(name)); ok {
			return Resolution{ID: id, Exact: true}, nil
		}
	}
	return r.coalesce(ctx, "card:"+boardID+":"+normalizeName(name), func(ctx context.Context) (Resolution, error) {
		hits, err := r.api.CardSearch(ctx, name, boardID)
		if err != nil {
			return Resolution{}, &Error{Kind: KindUpstream, Resource: "card", Name: name, Err: err}
		}
		if len(hits) > 0 {
			return r.fromSearch(boardID, name, hits), nil
		}

		// Search found nothing; scan the full open-card listing.
		cands, err := r.api.CardNames(ctx, boardID)
		if err != nil {
			return Resolution{}, &Error{Kind: KindUpstream, Resource: "card", Name: name, Err: err}
		}
		return r.fromListing("card", boardID, name, cands, r.th.FallbackAccept)
	})
}

// coalesce funnels concurrent identical lookups through singleflight so
// simultaneous misses for the same (scope, name) issue one upstream fetch.
func (r *Resolver) coalesce(ctx context.Context, key string, fn func(context.Context) (Resolution, error)) (Resolution, error) {
	v, err, _ := r.group.Do(key, func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return Resolution{}, err
	}
	return v.(Resolution), nil
}

// fromListing applies the shared exact→fuzzy policy to a fetched listing.
func (r *Resolver) fromListing(resource, scope, name string, cands []Candidate, accept float64) (Resolution, error) {
	if len(cands) == 0 {
		return Resolution{}, &Error{Kind: KindNotFound, Resource: resource, Name: name}
	}

	want := normalizeName(name)
	for _, c := range cands {
		if normalizeName(c.Name) == want {
			r.store(resource, scope, name, c.ID)
			return Resolution{ID: c.ID, Exact: true}, nil
		}
	}

	names := make([]string, 0, len(cands))
	for _, c := range cands {
		names = append(names, c.Name)
	}
	ranked := rankCandidates(name, names)

	best, ok := bestFuzzyMatch(ranked, r.th.AmbiguityGap)
	if !ok {
		return Resolution{}, &Error{
			Kind:       KindAmbiguous,
			Resource:   resource,
			Name:       name,
			Candidates: topNames(ranked, maxAmbiguousHints),
		}
	}
	if best.Score < accept {
		return Resolution{}, &Error{
			Kind:       KindNoMatch,
			Resource:   resource,
			Name:       name,
			Candidates: topNames(ranked, maxNoMatchHints),
		}
	}

	for _, c := range cands {
		if c.Name == best.Name {
			slog.Info("resolve.fuzzy", "resource", resource, "name", name, "match", c.Name, "score", best.Score)
			r.store(resource, scope, name, c.ID)
			return Resolution{ID: c.ID, Exact: false}, nil
		}
	}
	// Unreachable: best.Name came from cands.
	return Resolution{}, &Error{Kind: KindNoMatch, Resource: resource, Name: name}
}

// fromSearch picks a card from a non-empty search result. An exact
// (case-insensitive) name match wins; otherwise the first result is
// accepted as-is — the upstream's own relevance ranking is authoritative
// when no exact match exists among a small result set.
func (r *Resolver) fromSearch(boardID, name string, hits []Candidate) Resolution {
	want := normalizeName(name)
	for _, h := range hits {
		if normalizeName(h.Name) == want {
			r.store("card", boardID, name, h.ID)
			return Resolution{ID: h.ID, Exact: true}
		}
	}
	top := hits[0]
	slog.Info("resolve.search", "name", name, "match", top.Name, "results", len(hits))
	r.store("card", boardID, name, top.ID)
	return Resolution{ID: top.ID, Exact: false}
}

// store records a confirmed resolution in the cache, if one is attached.
func (r *Resolver) store(resource, scope, name, id string) {
	if r.cache == nil {
		return
	}
	switch resource {
	case "board":
		r.cache.Set(name, id)
	default:
		r.cache.SetScoped(scope, resource+":"+normalizeName(name), id)
	}
}
