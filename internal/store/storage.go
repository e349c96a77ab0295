// Package store persists lang.Symbol records and exposes name/kind
// lookups and per-file queries over them. Grounded on the teacher's
// internal/index/{storage,badger,store}.go: the generic Storage/Batch/
// Txn/Iterator key-value abstraction is kept nearly verbatim (it never
// depended on the teacher's SymbolInfo shape to begin with), while the
// symbol-shaped layer above it is rebuilt around lang.Symbol/lang.FileID/
// lang.SymbolID instead of the teacher's standalone SymbolInfo DTO.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Storage is the unified key-value interface every persistence backend
// implements: get/set/delete, prefix scanning, batch writes, and
// transactions, matching the teacher's Storage interface exactly.
type Storage interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	Has(ctx context.Context, key []byte) (bool, error)

	Batch() Batch
	WriteBatch(ctx context.Context, batch Batch) error

	Scan(ctx context.Context, prefix []byte, opts ScanOptions) Iterator

	Transaction(ctx context.Context, fn func(Txn) error) error

	Backup(ctx context.Context, w io.Writer) error
	Restore(ctx context.Context, r io.Reader) error
	Close() error

	Stats() StorageStats
	Size() (int64, error)

	GC(ctx context.Context) error
	Compact(ctx context.Context) error
}

// Batch represents a collection of operations executed atomically.
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Clear()
	Size() int
}

// Txn represents a transaction for atomic multi-operation updates.
type Txn interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	Scan(prefix []byte, opts ScanOptions) Iterator
}

// Iterator provides sequential access to key-value pairs.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close()
}

// ScanOptions controls prefix scanning behavior.
type ScanOptions struct {
	Reverse    bool
	Limit      int
	KeysOnly   bool
	StartAfter []byte
}

// StorageStats reports storage performance and usage.
type StorageStats struct {
	TotalSize  int64 `json:"total_size"`
	KeyCount   int64 `json:"key_count"`
	IndexSize  int64 `json:"index_size"`

	ReadCount  int64 `json:"read_count"`
	WriteCount int64 `json:"write_count"`
	ScanCount  int64 `json:"scan_count"`

	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`

	AvgReadTime  int64 `json:"avg_read_time"`
	AvgWriteTime int64 `json:"avg_write_time"`
	AvgScanTime  int64 `json:"avg_scan_time"`

	LastUpdated time.Time `json:"last_updated"`
}

const (
	PrefixSymbol = "sym:"   // sym:{file_hash}:{symbol_id} -> storedSymbol
	PrefixFile   = "file:"  // file:{file_path_hash} -> FileRecord
	PrefixName   = "name:"  // name:{lowercased symbol name} -> []symbol key (sym:...)
	PrefixKind   = "kind:"  // kind:{lang.Kind} -> []symbol key (sym:...)
	PrefixQuery  = "query:" // query:{query_hash} -> cachedQuery
)

// FileRecord tracks one indexed file's identity for incremental
// re-indexing (content hash + mtime) and reporting (language, symbol
// count), the same fields the teacher's FileMetadata carries.
type FileRecord struct {
	Path        string    `json:"path"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Language    string    `json:"language"`
	SymbolCount int       `json:"symbol_count"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// cachedQuery caches a FindSymbols result for QueryCacheTTL.
type cachedQuery struct {
	Query     string          `json:"query"`
	SymbolIDs []string        `json:"symbol_ids"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func SymbolKey(fileHash, symbolID string) []byte {
	return []byte(PrefixSymbol + fileHash + ":" + symbolID)
}

func FileKey(pathHash string) []byte {
	return []byte(PrefixFile + pathHash)
}

func NameKey(name string) []byte {
	return []byte(PrefixName + strings.ToLower(name))
}

func KindKey(kind string) []byte {
	return []byte(PrefixKind + strings.ToLower(kind))
}

func QueryKey(queryHash string) []byte {
	return []byte(PrefixQuery + queryHash)
}

func MarshalValue(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func UnmarshalValue(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// StorageError wraps a failed storage operation with its key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

var ErrKeyNotFound = &StorageError{Op: "get", Err: io.EOF}
