package stats

import (
	"sync"
)

// Stats HTTP 接口调用次数，供 /stats 查看
type Stats struct {
	statsLock     sync.RWMutex
	apiCallCounts map[string]uint64
}

func NewStats() *Stats {
	return &Stats{
		apiCallCounts: make(map[string]uint64),
	}
}

// 记录API调用
func (h *Stats) RecordAPICall(apiName string) {
	h.statsLock.Lock()
	defer h.statsLock.Unlock()
	h.apiCallCounts[apiName]++
}

// 获取API调用统计（副本）
func (h *Stats) GetAPICallStats() map[string]uint64 {
	h.statsLock.RLock()
	defer h.statsLock.RUnlock()

	out := make(map[string]uint64, len(h.apiCallCounts))
	for api, count := range h.apiCallCounts {
		out[api] = count
	}
	return out
}
