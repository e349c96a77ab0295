package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/codanna/codanna/internal/lang"
)

// Store provides symbol-shaped operations over a generic Storage,
// grounded on the teacher's internal/index/store.go: same key-hash +
// batch-index shape, rebuilt around lang.Symbol/lang.FileID instead of
// the teacher's SymbolInfo DTO. Indices are file-hash+id (the primary
// record), name (spec 6's by-name lookup), and kind (replacing the
// teacher's type+tag pair, since lang.Symbol carries neither).
//
// lang.SymbolID is only unique within one Parse call, so the name and
// kind indices store full symbol keys (file-hash+id) rather than bare
// IDs — an index entry must be resolvable on its own, without a caller
// supplying the file it came from, since a project-wide query spans
// many files whose IDs otherwise collide.
type Store struct {
	storage Storage
	config  Config
}

// Config configures Store behavior.
type Config struct {
	QueryCacheTTL time.Duration
	CacheEnabled  bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueryCacheTTL: 30 * time.Minute,
		CacheEnabled:  true,
	}
}

// New creates a Store over storage.
func New(storage Storage, config Config) *Store {
	return &Store{storage: storage, config: config}
}

// IndexFile replaces every symbol previously stored for path with
// symbols, and records path's FileRecord (language, hash, symbol
// count). It is the unit of work re-run by internal/watch on file
// change, matching spec 6's "Parse re-runs on whole-file granularity".
func (s *Store) IndexFile(ctx context.Context, path, languageID string, content []byte, file lang.FileID, symbols []*lang.Symbol) error {
	if err := s.DeleteFile(ctx, path); err != nil {
		return fmt.Errorf("clear previous index for %s: %w", path, err)
	}

	batch := s.storage.Batch()
	pathHash := s.hashString(path)

	for _, symbol := range symbols {
		idStr := strconv.FormatUint(uint64(symbol.ID), 10)
		symbolKey := SymbolKey(pathHash, idStr)
		data, err := MarshalValue(symbol)
		if err != nil {
			return fmt.Errorf("marshal symbol %s: %w", symbol.Name, err)
		}
		batch.Set(symbolKey, data)

		fullKey := string(symbolKey)
		if err := s.addToIndex(ctx, batch, NameKey(symbol.Name), fullKey); err != nil {
			return fmt.Errorf("update name index for %s: %w", symbol.Name, err)
		}
		if err := s.addToIndex(ctx, batch, KindKey(string(symbol.Kind)), fullKey); err != nil {
			return fmt.Errorf("update kind index for %s: %w", symbol.Name, err)
		}
	}

	record := FileRecord{
		Path:        path,
		Hash:        s.hashBytes(content),
		Size:        int64(len(content)),
		ModTime:     time.Now(),
		Language:    languageID,
		SymbolCount: len(symbols),
		IndexedAt:   time.Now(),
	}
	recordData, err := MarshalValue(record)
	if err != nil {
		return fmt.Errorf("marshal file record for %s: %w", path, err)
	}
	batch.Set(FileKey(pathHash), recordData)

	return s.storage.WriteBatch(ctx, batch)
}

// GetSymbol retrieves one symbol by the file it was indexed from and
// its SymbolID.
func (s *Store) GetSymbol(ctx context.Context, path string, id lang.SymbolID) (*lang.Symbol, error) {
	pathHash := s.hashString(path)
	return s.getSymbolByKey(ctx, SymbolKey(pathHash, strconv.FormatUint(uint64(id), 10)))
}

func (s *Store) getSymbolByKey(ctx context.Context, key []byte) (*lang.Symbol, error) {
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var symbol lang.Symbol
	if err := UnmarshalValue(data, &symbol); err != nil {
		return nil, fmt.Errorf("unmarshal symbol: %w", err)
	}
	return &symbol, nil
}

// GetSymbolsInFile returns every symbol stored under path.
func (s *Store) GetSymbolsInFile(ctx context.Context, path string) ([]*lang.Symbol, error) {
	pathHash := s.hashString(path)
	prefix := []byte(PrefixSymbol + pathHash + ":")

	var symbols []*lang.Symbol
	iter := s.storage.Scan(ctx, prefix, ScanOptions{})
	defer iter.Close()

	for iter.Next() {
		var symbol lang.Symbol
		if err := UnmarshalValue(iter.Value(), &symbol); err != nil {
			continue
		}
		symbols = append(symbols, &symbol)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return symbols, nil
}

// GetFileRecord retrieves the FileRecord for path.
func (s *Store) GetFileRecord(ctx context.Context, path string) (*FileRecord, error) {
	data, err := s.storage.Get(ctx, FileKey(s.hashString(path)))
	if err != nil {
		return nil, err
	}

	var record FileRecord
	if err := UnmarshalValue(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal file record: %w", err)
	}
	return &record, nil
}

// DeleteFile removes path's FileRecord and every symbol stored under it.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	symbols, err := s.GetSymbolsInFile(ctx, path)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil
		}
		return err
	}

	pathHash := s.hashString(path)
	batch := s.storage.Batch()
	batch.Delete(FileKey(pathHash))

	for _, symbol := range symbols {
		symbolKey := SymbolKey(pathHash, strconv.FormatUint(uint64(symbol.ID), 10))
		batch.Delete(symbolKey)
		fullKey := string(symbolKey)
		if err := s.removeFromIndex(ctx, batch, NameKey(symbol.Name), fullKey); err != nil {
			return fmt.Errorf("update name index: %w", err)
		}
		if err := s.removeFromIndex(ctx, batch, KindKey(string(symbol.Kind)), fullKey); err != nil {
			return fmt.Errorf("update kind index: %w", err)
		}
	}

	return s.storage.WriteBatch(ctx, batch)
}

// Query selects symbols by name or kind (spec 6's two lookup axes).
type Query struct {
	Name  string
	Kind  lang.Kind
	Limit int
}

// FindSymbols resolves query against the name/kind indices project-
// wide (the indices store full, file-qualified keys, so no file needs
// to be named up front) and fetches each matching symbol. Results are
// cached for QueryCacheTTL when caching is enabled.
func (s *Store) FindSymbols(ctx context.Context, query Query) ([]*lang.Symbol, error) {
	queryHash := s.hashQuery(query)
	if s.config.CacheEnabled {
		if keys, ok := s.cachedQueryKeys(ctx, queryHash); ok {
			return s.resolveSymbolKeys(ctx, keys, query.Limit), nil
		}
	}

	var indexKey []byte
	switch {
	case query.Name != "":
		indexKey = NameKey(query.Name)
	case query.Kind != "":
		indexKey = KindKey(string(query.Kind))
	default:
		return nil, fmt.Errorf("query must set Name or Kind")
	}

	keys, err := s.readIndex(ctx, indexKey)
	if err != nil {
		return nil, err
	}

	if s.config.CacheEnabled {
		s.cacheQueryKeys(ctx, queryHash, keys)
	}

	return s.resolveSymbolKeys(ctx, keys, query.Limit), nil
}

func (s *Store) resolveSymbolKeys(ctx context.Context, keys []string, limit int) []*lang.Symbol {
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	symbols := make([]*lang.Symbol, 0, len(keys))
	for _, key := range keys {
		symbol, err := s.getSymbolByKey(ctx, []byte(key))
		if err != nil {
			continue
		}
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })
	return symbols
}

func (s *Store) cachedQueryKeys(ctx context.Context, queryHash string) ([]string, bool) {
	data, err := s.storage.Get(ctx, QueryKey(queryHash))
	if err != nil {
		return nil, false
	}

	var cached cachedQuery
	if err := UnmarshalValue(data, &cached); err != nil {
		return nil, false
	}
	if time.Now().After(cached.ExpiresAt) {
		s.storage.Delete(ctx, QueryKey(queryHash))
		return nil, false
	}

	return cached.SymbolIDs, true
}

func (s *Store) cacheQueryKeys(ctx context.Context, queryHash string, keys []string) {
	cached := cachedQuery{
		SymbolIDs: keys,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(s.config.QueryCacheTTL),
	}
	data, err := MarshalValue(cached)
	if err != nil {
		return
	}
	s.storage.Set(ctx, QueryKey(queryHash), data)
}

func (s *Store) addToIndex(ctx context.Context, batch Batch, indexKey []byte, symbolKey string) error {
	keys, err := s.readIndex(ctx, indexKey)
	if err != nil {
		return err
	}
	for _, existing := range keys {
		if existing == symbolKey {
			return nil
		}
	}
	keys = append(keys, symbolKey)
	data, err := MarshalValue(keys)
	if err != nil {
		return err
	}
	batch.Set(indexKey, data)
	return nil
}

func (s *Store) removeFromIndex(ctx context.Context, batch Batch, indexKey []byte, symbolKey string) error {
	keys, err := s.readIndex(ctx, indexKey)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(keys))
	for _, existing := range keys {
		if existing != symbolKey {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == 0 {
		batch.Delete(indexKey)
		return nil
	}
	data, err := MarshalValue(remaining)
	if err != nil {
		return err
	}
	batch.Set(indexKey, data)
	return nil
}

func (s *Store) readIndex(ctx context.Context, indexKey []byte) ([]string, error) {
	data, err := s.storage.Get(ctx, indexKey)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	if err := UnmarshalValue(data, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) hashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func (s *Store) hashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *Store) hashQuery(query Query) string {
	return s.hashString(fmt.Sprintf("%s:%s:%d", strings.ToLower(query.Name), query.Kind, query.Limit))
}

// Storage returns the underlying key-value storage.
func (s *Store) Storage() Storage { return s.storage }

// Close closes the underlying storage.
func (s *Store) Close() error { return s.storage.Close() }
