package timer

import (
	"time"

	"github.com/godyy/glog"
)

// HeapOption Heap 选项.
type HeapOption func(*Heap)

// WithHeapLogger 日志工具选项.
func WithHeapLogger(logger glog.Logger) HeapOption {
	return func(th *Heap) {
		th.logger = logger.Named("timer")
	}
}

// WithHeapPool 回调协程池选项.
// size > 0 时, 到期回调提交到大小为 size 的协程池中执行, 不同定时器的回调可能并发执行.
func WithHeapPool(size int) HeapOption {
	return func(th *Heap) {
		if size > 0 {
			th.poolSize = size
		}
	}
}

// WithHeapPoolExpiry 协程池空闲 worker 回收周期选项, 默认 50ms.
// Stop 之后池内的清理 goroutine 最迟在一个周期后退出.
func WithHeapPoolExpiry(expiry time.Duration) HeapOption {
	return func(th *Heap) {
		if expiry > 0 {
			th.poolExpiry = expiry
		}
	}
}
