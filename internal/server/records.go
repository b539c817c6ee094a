package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/blockpad/pkg/cache"
	"github.com/matzehuels/blockpad/pkg/observability"
	"github.com/matzehuels/blockpad/pkg/store"
)

// observeStore wraps a store call with observability hook emission.
func (s *Server) observeStore(ctx context.Context, op, id string, fn func() error) error {
	hooks := observability.Store()
	hooks.OnStoreOp(ctx, s.backend, op, id)
	start := time.Now()
	if err := fn(); err != nil {
		hooks.OnStoreError(ctx, s.backend, op, id, err)
		return err
	}
	hooks.OnStoreComplete(ctx, s.backend, op, id, time.Since(start))
	return nil
}

// loadRecord fetches a record by ID, reading through the document cache.
func (s *Server) loadRecord(ctx context.Context, id string) (*store.Record, error) {
	key := s.keyer.DocumentKey(s.namespace, id)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var rec store.Record
		if err := json.Unmarshal(data, &rec); err == nil {
			observability.Cache().OnCacheHit(ctx, "document")
			return &rec, nil
		}
		// Corrupt entry: fall through to the store.
	}
	observability.Cache().OnCacheMiss(ctx, "document")

	var rec *store.Record
	err := s.observeStore(ctx, "load", id, func() error {
		var err error
		rec, err = s.store.Load(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TTLDocument); err == nil {
			observability.Cache().OnCacheSet(ctx, "document", len(data))
		}
	}
	return rec, nil
}

// saveRecord persists a record and invalidates its cache entry.
func (s *Server) saveRecord(ctx context.Context, rec *store.Record) error {
	err := s.observeStore(ctx, "save", rec.ID, func() error {
		return s.store.Save(ctx, rec)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, rec.ID)
	return nil
}

// deleteRecord removes a record and invalidates its cache entry.
func (s *Server) deleteRecord(ctx context.Context, id string) error {
	err := s.observeStore(ctx, "delete", id, func() error {
		return s.store.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// listRecords returns document summaries, newest first.
func (s *Server) listRecords(ctx context.Context) ([]store.Info, error) {
	var infos []store.Info
	err := s.observeStore(ctx, "list", "", func() error {
		var err error
		infos, err = s.store.List(ctx)
		return err
	})
	return infos, err
}

// invalidate drops a document's cache entry. Failures are logged, not
// returned: the entry expires on its own TTL.
func (s *Server) invalidate(ctx context.Context, id string) {
	key := s.keyer.DocumentKey(s.namespace, id)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidation failed", "id", id, "error", err)
	}
}
