package db

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"soulp/config"
	"soulp/logs"

	"github.com/dgraph-io/badger/v2"
)

var ErrClosed = errors.New("database is not initialized or closed")

// Manager 封装 BadgerDB 的管理器
// 写入先进队列，ForceFlush 时在同一个事务中整体提交
type Manager struct {
	Db *badger.DB
	mu sync.RWMutex

	// 队列通道，写队列 goroutine 从这里取写请求
	writeQueueChan chan WriteTask
	// 强制刷盘通道
	forceFlushChan chan flushRequest
	// 通知写队列 goroutine 停止
	stopChan chan struct{}
	wg       sync.WaitGroup

	metrics queueMetrics
	cfg     *config.DatabaseConfig
}

type flushRequest struct {
	done chan error
}

// NewManager 按路径打开 badger
func NewManager(path string) (*Manager, error) {
	cfg := config.DefaultConfig().Database
	cfg.Path = path
	return NewManagerWithConfig(&cfg)
}

// NewManagerWithConfig cfg.InMemory 时不落盘
func NewManagerWithConfig(cfg *config.DatabaseConfig) (*Manager, error) {
	if cfg == nil {
		def := config.DefaultConfig().Database
		cfg = &def
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// badger v2 不自动创建父目录，需要手动创建
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
		if cfg.ValueLogFileSize > 0 {
			opts.ValueLogFileSize = cfg.ValueLogFileSize
		}
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	manager := &Manager{
		Db:  db,
		cfg: cfg,
	}
	manager.InitWriteQueue(cfg.WriteQueueSize)
	logs.Debug("[DB] opened path=%q in_memory=%v", cfg.Path, cfg.InMemory)
	return manager, nil
}

func (manager *Manager) Close() {
	// 1. 先同步 flush，已经入队的写请求全部落盘
	if err := manager.ForceFlush(); err != nil {
		logs.Error("[db.Close] force flush failed: %v", err)
	}

	// 2. 通知写队列 goroutine 停止并等待退出
	if manager.stopChan != nil {
		select {
		case <-manager.stopChan:
		default:
			close(manager.stopChan)
		}
	}
	manager.wg.Wait()

	// 3. 关闭 DB
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if manager.Db != nil {
		_ = manager.Db.Close()
		manager.Db = nil
	}
}

func (manager *Manager) db() (*badger.DB, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	if manager.Db == nil {
		return nil, ErrClosed
	}
	return manager.Db, nil
}

// Get 实现 vm.DBManager 接口；不存在时返回 (nil, nil)
func (manager *Manager) Get(key string) ([]byte, error) {
	db, err := manager.db()
	if err != nil {
		return nil, err
	}

	var value []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Scan 扫描指定前缀的所有键值对
func (manager *Manager) Scan(prefix string) (map[string][]byte, error) {
	db, err := manager.db()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte)
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// flushBatch 整个 batch 一个事务，要么全部写入要么全部不写
func (manager *Manager) flushBatch(batch []WriteTask) error {
	if len(batch) == 0 {
		return nil
	}
	db, err := manager.db()
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		for _, t := range batch {
			var err error
			switch t.Op {
			case OpSet:
				err = txn.Set(t.Key, t.Value)
			case OpDelete:
				err = txn.Delete(t.Key)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", t.Op, t.Key, err)
			}
		}
		return nil
	})
}
