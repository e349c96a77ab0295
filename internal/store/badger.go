package store

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// BadgerStorage implements Storage on top of BadgerDB, grounded on the
// teacher's internal/index/badger.go verbatim (this layer never
// depended on the teacher's symbol shape, only on []byte keys/values).
type BadgerStorage struct {
	db    *badger.DB
	opts  BadgerOptions
	stats *badgerStats
	mutex sync.RWMutex
}

// BadgerOptions configures the BadgerDB instance.
type BadgerOptions struct {
	Dir      string
	InMemory bool
	ReadOnly bool

	ValueLogFileSize        int64
	NumMemtables            int
	NumLevelZeroTables      int
	NumLevelZeroTablesStall int
	SyncWrites              bool
	CompactL0OnClose        bool

	BlockCacheSize int64
	IndexCacheSize int64
}

// DefaultBadgerOptions returns tuned options for code-indexing workloads.
func DefaultBadgerOptions(dir string) BadgerOptions {
	return BadgerOptions{
		Dir:                     dir,
		ValueLogFileSize:        1 << 30,
		NumMemtables:            5,
		NumLevelZeroTables:      5,
		NumLevelZeroTablesStall: 15,
		SyncWrites:              false,
		CompactL0OnClose:        true,
		BlockCacheSize:          256,
		IndexCacheSize:          64,
	}
}

type badgerStats struct {
	readCount   int64
	writeCount  int64
	scanCount   int64
	deleteCount int64

	cacheHits   int64
	cacheMisses int64

	totalReadTime  int64
	totalWriteTime int64
	totalScanTime  int64

	lastUpdated time.Time
}

// NewBadgerStorage opens a BadgerDB-backed Storage.
func NewBadgerStorage(opts BadgerOptions) (*BadgerStorage, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithValueLogFileSize(opts.ValueLogFileSize).
		WithNumMemtables(opts.NumMemtables).
		WithNumLevelZeroTables(opts.NumLevelZeroTables).
		WithNumLevelZeroTablesStall(opts.NumLevelZeroTablesStall).
		WithSyncWrites(opts.SyncWrites).
		WithCompactL0OnClose(opts.CompactL0OnClose)

	if opts.BlockCacheSize > 0 {
		badgerOpts = badgerOpts.WithBlockCacheSize(opts.BlockCacheSize << 20)
	}
	if opts.IndexCacheSize > 0 {
		badgerOpts = badgerOpts.WithIndexCacheSize(opts.IndexCacheSize << 20)
	}

	badgerOpts = badgerOpts.
		WithDetectConflicts(false).
		WithNumGoroutines(8).
		WithCompression(options.ZSTD)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.ReadOnly {
		badgerOpts = badgerOpts.WithReadOnly(true)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	storage := &BadgerStorage{
		db:   db,
		opts: opts,
		stats: &badgerStats{
			lastUpdated: time.Now(),
		},
	}

	go storage.runGC()

	return storage, nil
}

func (bs *BadgerStorage) runGC() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		for {
			if err := bs.db.RunValueLogGC(0.5); err != nil {
				break
			}
		}
	}
}

func (bs *BadgerStorage) Get(ctx context.Context, key []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&bs.stats.readCount, 1)
		atomic.AddInt64(&bs.stats.totalReadTime, time.Since(start).Nanoseconds())
	}()

	var result []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				atomic.AddInt64(&bs.stats.cacheMisses, 1)
				return ErrKeyNotFound
			}
			return err
		}

		atomic.AddInt64(&bs.stats.cacheHits, 1)
		return item.Value(func(val []byte) error {
			result = append([]byte{}, val...)
			return nil
		})
	})

	return result, err
}

func (bs *BadgerStorage) Set(ctx context.Context, key, value []byte) error {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&bs.stats.writeCount, 1)
		atomic.AddInt64(&bs.stats.totalWriteTime, time.Since(start).Nanoseconds())
	}()

	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (bs *BadgerStorage) Delete(ctx context.Context, key []byte) error {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&bs.stats.deleteCount, 1)
		atomic.AddInt64(&bs.stats.totalWriteTime, time.Since(start).Nanoseconds())
	}()

	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (bs *BadgerStorage) Has(ctx context.Context, key []byte) (bool, error) {
	err := bs.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

type badgerBatch struct {
	wb    *badger.WriteBatch
	count int
}

func (bs *BadgerStorage) Batch() Batch {
	return &badgerBatch{wb: bs.db.NewWriteBatch()}
}

func (bb *badgerBatch) Set(key, value []byte) {
	bb.wb.Set(key, value)
	bb.count++
}

func (bb *badgerBatch) Delete(key []byte) {
	bb.wb.Delete(key)
	bb.count++
}

func (bb *badgerBatch) Clear() {
	bb.wb.Cancel()
	bb.count = 0
}

func (bb *badgerBatch) Size() int { return bb.count }

func (bs *BadgerStorage) WriteBatch(ctx context.Context, batch Batch) error {
	bb, ok := batch.(*badgerBatch)
	if !ok {
		return fmt.Errorf("invalid batch type")
	}

	start := time.Now()
	defer func() {
		atomic.AddInt64(&bs.stats.writeCount, int64(bb.count))
		atomic.AddInt64(&bs.stats.totalWriteTime, time.Since(start).Nanoseconds())
	}()

	return bb.wb.Flush()
}

type badgerIterator struct {
	iter   *badger.Iterator
	txn    *badger.Txn
	ctx    context.Context
	err    error
	closed bool
	first  bool
}

func (bi *badgerIterator) Next() bool {
	if bi.closed || bi.err != nil {
		return false
	}

	select {
	case <-bi.ctx.Done():
		bi.err = bi.ctx.Err()
		return false
	default:
	}

	if !bi.first {
		bi.first = true
		return bi.iter.Valid()
	}

	bi.iter.Next()
	return bi.iter.Valid()
}

func (bi *badgerIterator) Key() []byte {
	if !bi.iter.Valid() {
		return nil
	}
	return bi.iter.Item().KeyCopy(nil)
}

func (bi *badgerIterator) Value() []byte {
	if !bi.iter.Valid() {
		return nil
	}

	var value []byte
	bi.err = bi.iter.Item().Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	return value
}

func (bi *badgerIterator) Error() error { return bi.err }

func (bi *badgerIterator) Close() {
	if !bi.closed {
		bi.iter.Close()
		if bi.txn != nil {
			bi.txn.Discard()
			bi.txn = nil
		}
		bi.closed = true
	}
}

func (bs *BadgerStorage) Scan(ctx context.Context, prefix []byte, opts ScanOptions) Iterator {
	start := time.Now()
	defer func() {
		atomic.AddInt64(&bs.stats.scanCount, 1)
		atomic.AddInt64(&bs.stats.totalScanTime, time.Since(start).Nanoseconds())
	}()

	txn := bs.db.NewTransaction(false)
	badgerOpts := badger.DefaultIteratorOptions
	badgerOpts.Reverse = opts.Reverse
	badgerOpts.PrefetchValues = !opts.KeysOnly
	badgerOpts.Prefix = prefix

	iter := txn.NewIterator(badgerOpts)

	if opts.StartAfter != nil {
		iter.Seek(opts.StartAfter)
		if iter.Valid() && string(iter.Item().Key()) == string(opts.StartAfter) {
			iter.Next()
		}
	} else {
		iter.Seek(prefix)
	}

	return &badgerIterator{iter: iter, txn: txn, ctx: ctx}
}

type badgerTxn struct {
	txn *badger.Txn
	bs  *BadgerStorage
}

func (bs *BadgerStorage) Transaction(ctx context.Context, fn func(Txn) error) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn, bs: bs})
	})
}

func (bt *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := bt.txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	var result []byte
	err = item.Value(func(val []byte) error {
		result = append([]byte{}, val...)
		return nil
	})
	return result, err
}

func (bt *badgerTxn) Set(key, value []byte) error { return bt.txn.Set(key, value) }
func (bt *badgerTxn) Delete(key []byte) error      { return bt.txn.Delete(key) }

func (bt *badgerTxn) Has(key []byte) (bool, error) {
	_, err := bt.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (bt *badgerTxn) Scan(prefix []byte, opts ScanOptions) Iterator {
	badgerOpts := badger.DefaultIteratorOptions
	badgerOpts.Reverse = opts.Reverse
	badgerOpts.PrefetchValues = !opts.KeysOnly
	badgerOpts.Prefix = prefix

	iter := bt.txn.NewIterator(badgerOpts)
	iter.Seek(prefix)

	return &badgerIterator{iter: iter, ctx: context.Background()}
}

func (bs *BadgerStorage) Backup(ctx context.Context, w io.Writer) error {
	_, err := bs.db.Backup(w, 0)
	return err
}

func (bs *BadgerStorage) Restore(ctx context.Context, r io.Reader) error {
	return bs.db.Load(r, 256)
}

func (bs *BadgerStorage) Close() error { return bs.db.Close() }

func (bs *BadgerStorage) Stats() StorageStats {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	lsm, vlog := bs.db.Size()

	readCount := atomic.LoadInt64(&bs.stats.readCount)
	writeCount := atomic.LoadInt64(&bs.stats.writeCount)
	scanCount := atomic.LoadInt64(&bs.stats.scanCount)

	totalReadTime := atomic.LoadInt64(&bs.stats.totalReadTime)
	totalWriteTime := atomic.LoadInt64(&bs.stats.totalWriteTime)
	totalScanTime := atomic.LoadInt64(&bs.stats.totalScanTime)

	var avgReadTime, avgWriteTime, avgScanTime int64
	if readCount > 0 {
		avgReadTime = totalReadTime / readCount
	}
	if writeCount > 0 {
		avgWriteTime = totalWriteTime / writeCount
	}
	if scanCount > 0 {
		avgScanTime = totalScanTime / scanCount
	}

	var keyCount int64
	_ = bs.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keyCount++
		}
		return nil
	})

	return StorageStats{
		KeyCount:     keyCount,
		TotalSize:    lsm + vlog,
		IndexSize:    lsm,
		ReadCount:    readCount,
		WriteCount:   writeCount,
		ScanCount:    scanCount,
		CacheHits:    atomic.LoadInt64(&bs.stats.cacheHits),
		CacheMisses:  atomic.LoadInt64(&bs.stats.cacheMisses),
		AvgReadTime:  avgReadTime,
		AvgWriteTime: avgWriteTime,
		AvgScanTime:  avgScanTime,
		LastUpdated:  bs.stats.lastUpdated,
	}
}

func (bs *BadgerStorage) Size() (int64, error) {
	lsm, vlog := bs.db.Size()
	return lsm + vlog, nil
}

func (bs *BadgerStorage) GC(ctx context.Context) error {
	for {
		err := bs.db.RunValueLogGC(0.5)
		if err != nil {
			if err == badger.ErrNoRewrite {
				return nil
			}
			return err
		}
	}
}

func (bs *BadgerStorage) Compact(ctx context.Context) error {
	for level := 0; level < 7; level++ {
		if err := bs.db.Flatten(level); err != nil {
			return err
		}
	}
	return nil
}

// DropAll removes all data; used by tests.
func (bs *BadgerStorage) DropAll(ctx context.Context) error { return bs.db.DropAll() }

// Path returns the database directory.
func (bs *BadgerStorage) Path() string { return bs.opts.Dir }

var _ Storage = (*BadgerStorage)(nil)
