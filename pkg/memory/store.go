package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goclaw/anima/config"
)

// Recall scoring weights. Importance dominates, recency fades over a
// 30-day window, and repeated access adds at most 0.2.
const (
	importanceWeight  = 0.5
	recencyWeight     = 0.3
	accessScoreCap    = 0.2
	recencyWindowDays = 30

	// Retention tier: entries this important or this young survive
	// cleanup regardless of access history.
	retentionImportance = 0.8
	retentionMaxAge     = 7 * 24 * time.Hour

	// Recall only matches on tokens longer than this.
	minRecallTokenLen = 3
)

// Eviction tiers reported to telemetry and hooks.
const (
	EvictionTierRetention = "retention"
	EvictionTierDuplicate = "duplicate"
	EvictionTierCapacity  = "capacity"
)

// ErrEmptyContent is returned when remembering blank content.
var ErrEmptyContent = errors.New("memory: content cannot be empty")

// storeLogger is the minimal logger interface used by Store.
type storeLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopStoreLogger struct{}

func (nopStoreLogger) Debug(msg string, args ...any) {}
func (nopStoreLogger) Info(msg string, args ...any)  {}
func (nopStoreLogger) Warn(msg string, args ...any)  {}
func (nopStoreLogger) Error(msg string, args ...any) {}

// Telemetry records store activity.
type Telemetry interface {
	SetMemoryEntries(count float64)
	RecordMemoryOp(op string)
	RecordEviction(tier string, count int)
	RecordPersistFailure()
	RecordRecallDuration(duration time.Duration)
}

type nopTelemetry struct{}

func (nopTelemetry) SetMemoryEntries(count float64)              {}
func (nopTelemetry) RecordMemoryOp(op string)                    {}
func (nopTelemetry) RecordEviction(tier string, count int)       {}
func (nopTelemetry) RecordPersistFailure()                       {}
func (nopTelemetry) RecordRecallDuration(duration time.Duration) {}

// EvictionHook observes eviction batches.
type EvictionHook func(tier string, count, remaining int)

// PersistFailureHook observes failed saves.
type PersistFailureHook func(err error)

// Store is the agent's long-term memory: a bounded in-memory entry
// list persisted as one document. All mutations happen under the
// store mutex; saving is owned by a single writer goroutine that the
// mutating methods signal.
type Store struct {
	mu       sync.RWMutex
	cfg      *config.MemoryConfig
	backend  DocumentStore
	entries  []*Entry
	degraded bool
	started  bool

	logger    storeLogger
	telemetry Telemetry
	onEvict   EvictionHook
	onPersist PersistFailureHook
	writer    *writer
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(l storeLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTelemetry attaches a metrics sink.
func WithTelemetry(t Telemetry) Option {
	return func(s *Store) {
		if t != nil {
			s.telemetry = t
		}
	}
}

// WithEvictionHook observes eviction batches, e.g. to publish events.
func WithEvictionHook(hook EvictionHook) Option {
	return func(s *Store) { s.onEvict = hook }
}

// WithPersistFailureHook observes failed saves.
func WithPersistFailureHook(hook PersistFailureHook) Option {
	return func(s *Store) { s.onPersist = hook }
}

// NewStore creates a store over the given backend. Call Start to load
// the document and begin persisting.
func NewStore(cfg *config.MemoryConfig, backend DocumentStore, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("memory: config cannot be nil")
	}
	if backend == nil {
		return nil, fmt.Errorf("memory: backend cannot be nil")
	}
	s := &Store{
		cfg:       cfg,
		backend:   backend,
		logger:    nopStoreLogger{},
		telemetry: nopTelemetry{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start loads the persisted document and starts the writer goroutine.
// An unreadable document logs a warning and starts empty rather than
// failing; memory is useful even when its history is not.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("memory: store already started")
	}

	doc, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("memory document unreadable, starting empty", "error", err)
		doc = &Document{Version: DocumentVersion}
	}

	s.entries = s.entries[:0]
	for _, e := range doc.Entries {
		if e != nil {
			s.entries = append(s.entries, e)
		}
	}
	if len(s.entries) > s.maxEntries() {
		s.cleanupLocked()
	}

	s.writer = newWriter(s.backend, s.snapshotDocument, s.onSaveResult, 0)
	s.writer.start()
	s.started = true
	s.telemetry.SetMemoryEntries(float64(len(s.entries)))

	s.logger.Info("memory store started",
		"entries", len(s.entries),
		"max_entries", s.maxEntries(),
	)
	return nil
}

// Stop flushes a final save and closes the backend.
func (s *Store) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	w := s.writer
	s.writer = nil
	s.mu.Unlock()

	w.close()
	err := s.backend.Close()
	s.logger.Info("memory store stopped")
	return err
}

// Remember stores a new entry and schedules persistence. Exceeding
// capacity triggers cleanup.
func (s *Store) Remember(ctx context.Context, content, memType string, importance float64, tags []string) (*Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if memType == "" {
		memType = TypeConversation
	}
	if importance < 0 {
		importance = 0
	} else if importance > 1 {
		importance = 1
	}

	entry := &Entry{
		ID:         uuid.New().String(),
		Content:    content,
		Type:       memType,
		Importance: importance,
		Tags:       tags,
		CreatedAt:  s.now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.maxEntries() {
		s.cleanupLocked()
	}
	s.telemetry.SetMemoryEntries(float64(len(s.entries)))
	s.mu.Unlock()

	s.telemetry.RecordMemoryOp("remember")
	s.requestSave()
	return entry.Clone(), nil
}

// Recall returns the most relevant entries for the query, highest
// score first. Returned entries have their access count bumped and
// last-access time set; that mutation is part of the scoring model
// and is persisted.
func (s *Store) Recall(ctx context.Context, query string, limit int) ([]*Entry, error) {
	start := time.Now()
	defer func() { s.telemetry.RecordRecallDuration(time.Since(start)) }()

	if limit <= 0 {
		limit = s.recallLimit()
	}
	tokens := recallTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		entry *Entry
		score float64
	}
	var candidates []scored
	for _, e := range s.entries {
		content := strings.ToLower(e.Content)
		for _, tok := range tokens {
			if strings.Contains(content, tok) {
				candidates = append(candidates, scored{entry: e, score: scoreEntry(e, now)})
				break
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.CreatedAt.After(candidates[j].entry.CreatedAt)
	})
	if limit < len(candidates) {
		candidates = candidates[:limit]
	}

	results := make([]*Entry, 0, len(candidates))
	for _, c := range candidates {
		c.entry.AccessCount++
		c.entry.LastAccessed = now.UTC()
		results = append(results, c.entry.Clone())
	}

	if len(results) > 0 {
		s.requestSaveLocked()
	}
	s.telemetry.RecordMemoryOp("recall")
	return results, nil
}

// Search returns entries containing the query as a substring, ranked
// by importance then recency. Unlike Recall it never mutates access
// counts.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.recallLimit()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Content), query) {
			matches = append(matches, e)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Importance != matches[j].Importance {
			return matches[i].Importance > matches[j].Importance
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if limit < len(matches) {
		matches = matches[:limit]
	}

	results := make([]*Entry, 0, len(matches))
	for _, e := range matches {
		results = append(results, e.Clone())
	}
	s.telemetry.RecordMemoryOp("search")
	return results, nil
}

// Cleanup runs eviction and returns how many entries were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	evicted := s.cleanupLocked()
	s.telemetry.SetMemoryEntries(float64(len(s.entries)))
	s.mu.Unlock()

	if evicted > 0 {
		s.requestSave()
	}
	return evicted
}

// cleanupLocked is the two-tier eviction pass: drop entries that are
// neither important nor recent, collapse duplicate content, then
// truncate to capacity by access count.
func (s *Store) cleanupLocked() int {
	before := len(s.entries)
	now := s.now()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Importance >= retentionImportance || e.Age(now) < retentionMaxAge {
			kept = append(kept, e)
		}
	}
	if dropped := before - len(kept); dropped > 0 {
		s.reportEviction(EvictionTierRetention, dropped, len(kept))
	}

	seen := make(map[string]struct{}, len(kept))
	deduped := kept[:0]
	for _, e := range kept {
		if _, dup := seen[e.Content]; dup {
			continue
		}
		seen[e.Content] = struct{}{}
		deduped = append(deduped, e)
	}
	if dropped := len(kept) - len(deduped); dropped > 0 {
		s.reportEviction(EvictionTierDuplicate, dropped, len(deduped))
	}

	max := s.maxEntries()
	if len(deduped) > max {
		sort.SliceStable(deduped, func(i, j int) bool {
			return deduped[i].AccessCount > deduped[j].AccessCount
		})
		dropped := len(deduped) - max
		deduped = deduped[:max]
		s.reportEviction(EvictionTierCapacity, dropped, len(deduped))
	}

	s.entries = deduped
	return before - len(s.entries)
}

func (s *Store) reportEviction(tier string, count, remaining int) {
	s.telemetry.RecordEviction(tier, count)
	s.logger.Debug("memory eviction", "tier", tier, "count", count, "remaining", remaining)
	if s.onEvict != nil {
		s.onEvict(tier, count, remaining)
	}
}

// Reflections returns the newest reflection entries.
func (s *Store) Reflections(limit int) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reflections []*Entry
	for _, e := range s.entries {
		if e.Type == TypeReflection {
			reflections = append(reflections, e)
		}
	}
	sort.SliceStable(reflections, func(i, j int) bool {
		return reflections[i].CreatedAt.After(reflections[j].CreatedAt)
	})
	if limit > 0 && limit < len(reflections) {
		reflections = reflections[:limit]
	}

	out := make([]*Entry, 0, len(reflections))
	for _, e := range reflections {
		out = append(out, e.Clone())
	}
	return out
}

// DeleteWeak removes entries whose relevance score falls below the
// threshold and returns how many were removed.
func (s *Store) DeleteWeak(threshold float64) int {
	now := s.now()

	s.mu.Lock()
	before := len(s.entries)
	kept := s.entries[:0]
	for _, e := range s.entries {
		if scoreEntry(e, now) >= threshold {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	removed := before - len(s.entries)
	s.telemetry.SetMemoryEntries(float64(len(s.entries)))
	s.mu.Unlock()

	if removed > 0 {
		s.telemetry.RecordMemoryOp("delete_weak")
		s.requestSave()
	}
	return removed
}

// List returns a page of entries, newest first, plus the total count.
func (s *Store) List(limit, offset int) ([]*Entry, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]*Entry, len(s.entries))
	copy(ordered, s.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	total := len(ordered)
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*Entry, 0, end-offset)
	for _, e := range ordered[offset:end] {
		page = append(page, e.Clone())
	}
	return page, total
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	removed := len(s.entries)
	s.entries = nil
	s.telemetry.SetMemoryEntries(0)
	s.mu.Unlock()

	if removed > 0 {
		s.telemetry.RecordMemoryOp("clear")
		s.requestSave()
	}
	return removed
}

// Stats summarizes the store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalEntries: len(s.entries),
		ByType:       make(map[string]int),
		Degraded:     s.degraded,
	}
	if len(s.entries) == 0 {
		return stats
	}

	total := 0.0
	for _, e := range s.entries {
		stats.ByType[e.Type]++
		total += e.Importance
	}
	stats.AverageImportance = total / float64(len(s.entries))
	return stats
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Degraded reports whether the last save attempt failed.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *Store) maxEntries() int {
	if s.cfg.MaxEntries > 0 {
		return s.cfg.MaxEntries
	}
	return 1000
}

func (s *Store) recallLimit() int {
	if s.cfg.RecallLimit > 0 {
		return s.cfg.RecallLimit
	}
	return 5
}

func (s *Store) requestSave() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.requestSaveLocked()
}

func (s *Store) requestSaveLocked() {
	if s.writer != nil {
		s.writer.request()
	}
}

// snapshotDocument is the writer's view of the store.
func (s *Store) snapshotDocument() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e.Clone())
	}
	return &Document{
		Version: DocumentVersion,
		SavedAt: s.now().UTC(),
		Entries: entries,
	}
}

// onSaveResult tracks persistence health. A failed save degrades the
// store but never crashes the process or aborts a turn.
func (s *Store) onSaveResult(err error) {
	s.mu.Lock()
	wasDegraded := s.degraded
	s.degraded = err != nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("memory persist failed", "error", err)
		s.telemetry.RecordPersistFailure()
		if s.onPersist != nil {
			s.onPersist(err)
		}
		return
	}
	if wasDegraded {
		s.logger.Info("memory persistence recovered")
	}
}

// scoreEntry is the recall relevance score.
func scoreEntry(e *Entry, now time.Time) float64 {
	recency := 1 - e.Age(now).Hours()/(24*recencyWindowDays)
	if recency < 0 {
		recency = 0
	}
	access := float64(e.AccessCount) / 10
	if access > accessScoreCap {
		access = accessScoreCap
	}
	return e.Importance*importanceWeight + recency*recencyWeight + access
}

// recallTokens splits a query into lowercase tokens long enough to
// match on.
func recallTokens(query string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > minRecallTokenLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
