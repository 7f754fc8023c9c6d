package db

import (
	"fmt"
	"sync/atomic"
	"time"

	"soulp/logs"
)

// queueMetrics 写队列运行统计
type queueMetrics struct {
	enqueueSetTotal    uint64
	enqueueDeleteTotal uint64
	flushBatchTotal    uint64
	flushedTaskTotal   uint64
	flushErrTotal      uint64
	forceFlushTotal    uint64
}

// QueueStats 写队列统计快照
type QueueStats struct {
	EnqueueSet    uint64
	EnqueueDelete uint64
	FlushBatches  uint64
	FlushedTasks  uint64
	FlushErrors   uint64
	ForceFlushes  uint64
	Depth         int
	Capacity      int
}

// InitWriteQueue 启动写队列 goroutine
// 队列只在 ForceFlush 或停止时落盘，保证一次调用的写集在同一个事务里
func (manager *Manager) InitWriteQueue(size int) {
	if size <= 0 {
		size = 4096
	}
	manager.writeQueueChan = make(chan WriteTask, size)
	manager.forceFlushChan = make(chan flushRequest, 1)
	manager.stopChan = make(chan struct{})

	manager.wg.Add(1)
	go manager.runWriteQueue()
}

func (manager *Manager) runWriteQueue() {
	defer manager.wg.Done()
	batch := make([]WriteTask, 0, 64)

	flushCurrentBatch := func() error {
		if len(batch) == 0 {
			return nil
		}
		count := len(batch)
		start := time.Now()
		err := manager.flushBatch(batch)
		atomic.AddUint64(&manager.metrics.flushBatchTotal, 1)
		atomic.AddUint64(&manager.metrics.flushedTaskTotal, uint64(count))
		if err != nil {
			atomic.AddUint64(&manager.metrics.flushErrTotal, 1)
			logs.Error("[DBQueue] flush batch=%d failed: %v", count, err)
		} else {
			logs.Trace("[DBQueue] flushed batch=%d took=%s", count, time.Since(start))
		}
		batch = batch[:0]
		return err
	}

	for {
		select {
		case <-manager.stopChan:
			batch = manager.drainWriteQueue(batch)
			err := flushCurrentBatch()
			manager.resolvePendingForceFlush(err)
			return
		case task := <-manager.writeQueueChan:
			batch = append(batch, task)
		case req := <-manager.forceFlushChan:
			atomic.AddUint64(&manager.metrics.forceFlushTotal, 1)
			batch = manager.drainWriteQueue(batch)
			req.done <- flushCurrentBatch()
			close(req.done)
		}
	}
}

// ForceFlush 把已入队的写请求作为一个事务提交，返回提交结果
func (manager *Manager) ForceFlush() error {
	if manager.forceFlushChan == nil {
		return nil
	}
	select {
	case <-manager.stopChan:
		return fmt.Errorf("write queue already stopped")
	default:
	}

	req := flushRequest{done: make(chan error, 1)}
	select {
	case manager.forceFlushChan <- req:
	case <-manager.stopChan:
		return fmt.Errorf("write queue already stopped")
	}
	select {
	case err := <-req.done:
		return err
	case <-manager.stopChan:
		select {
		case err := <-req.done:
			return err
		case <-time.After(time.Second):
			return fmt.Errorf("write queue stopped before flush completed")
		}
	}
}

func (manager *Manager) drainWriteQueue(batch []WriteTask) []WriteTask {
	for {
		select {
		case task := <-manager.writeQueueChan:
			batch = append(batch, task)
		default:
			return batch
		}
	}
}

func (manager *Manager) resolvePendingForceFlush(err error) {
	for {
		select {
		case req := <-manager.forceFlushChan:
			req.done <- err
			close(req.done)
		default:
			return
		}
	}
}

func (manager *Manager) EnqueueSet(key, value string) {
	manager.writeQueueChan <- WriteTask{
		Key:   []byte(key),
		Value: []byte(value),
		Op:    OpSet,
	}
	atomic.AddUint64(&manager.metrics.enqueueSetTotal, 1)
}

func (manager *Manager) EnqueueDel(key string) {
	manager.writeQueueChan <- WriteTask{
		Key: []byte(key),
		Op:  OpDelete,
	}
	atomic.AddUint64(&manager.metrics.enqueueDeleteTotal, 1)
}

// Stats 写队列统计
func (manager *Manager) Stats() QueueStats {
	return QueueStats{
		EnqueueSet:    atomic.LoadUint64(&manager.metrics.enqueueSetTotal),
		EnqueueDelete: atomic.LoadUint64(&manager.metrics.enqueueDeleteTotal),
		FlushBatches:  atomic.LoadUint64(&manager.metrics.flushBatchTotal),
		FlushedTasks:  atomic.LoadUint64(&manager.metrics.flushedTaskTotal),
		FlushErrors:   atomic.LoadUint64(&manager.metrics.flushErrTotal),
		ForceFlushes:  atomic.LoadUint64(&manager.metrics.forceFlushTotal),
		Depth:         len(manager.writeQueueChan),
		Capacity:      cap(manager.writeQueueChan),
	}
}
