// Package source adapts a nostr relay pool to the backfill and live ports
package source

import (
	"context"
	"time"

	"rektwatch/internal/adapters/nostr"
	bfdom "rektwatch/internal/services/backfill/domain"
	livedom "rektwatch/internal/services/live/domain"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Pool is the part of *nostr.Pool the source uses
type Pool interface {
	Query(ctx context.Context, f nostr.Filter) ([]nostr.Event, error)
	Subscribe(ctx context.Context, f nostr.Filter, onEvent func(nostr.Event), onReady func()) (*nostr.Subscription, error)
}

// Source reads the text notes of one author
type Source struct {
	pool   Pool
	author string
}

var (
	_ bfdom.Source   = (*Source)(nil)
	_ livedom.Source = (*Source)(nil)
)

// New reads notes by author (hex pubkey) from pool
func New(pool Pool, author string) *Source { return &Source{pool: pool, author: author} }

func (s *Source) filter() nostr.Filter {
	return nostr.Filter{Authors: []string{s.author}, Kinds: []int{nostr.KindTextNote}}
}

// Post converts a relay event to a RawPost
func Post(e nostr.Event) rekt.RawPost {
	return rekt.RawPost{SourceEventID: e.ID, Content: e.Content, CreatedAt: e.Time()}
}

// QueryHistorical implements backfill/domain.Source. Posts come back oldest
// first; with an error they may be partial.
func (s *Source) QueryHistorical(ctx context.Context, hf bfdom.HistoryFilter) ([]rekt.RawPost, error) {
	f := s.filter()
	f.Limit = hf.Limit
	if hf.Since != nil {
		f.Since = nostr.Timestamp(*hf.Since)
	}
	evs, err := s.pool.Query(ctx, f)
	out := make([]rekt.RawPost, len(evs))
	for i, e := range evs {
		out[i] = Post(e)
	}
	return out, err
}

// Subscribe implements live/domain.Source
func (s *Source) Subscribe(ctx context.Context, since time.Time, onPost func(rekt.RawPost), onReady func()) (livedom.Subscription, error) {
	f := s.filter()
	f.Since = nostr.Timestamp(since)
	sub, err := s.pool.Subscribe(ctx, f, func(e nostr.Event) { onPost(Post(e)) }, onReady)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
