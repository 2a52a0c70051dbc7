package gtimer

import (
	"time"

	"github.com/godyy/glog"
	"github.com/godyy/gtimer/timer"
)

// optionSet 选项集合.
type optionSet struct {
	logger       glog.Logger        // 日志工具.
	system       timer.System       // 外部定时器系统.
	systemSet    bool               // 是否指定了外部定时器系统.
	heapOptions  []timer.HeapOption // 内部 Heap 选项.
	closeTimeout time.Duration      // Close 等待回调结束的最长时间.
}

// Option 选项.
type Option func(*optionSet)

// WithLogger 日志工具选项.
func WithLogger(logger glog.Logger) Option {
	return func(opts *optionSet) {
		opts.logger = logger
	}
}

// WithTimerSystem 定时器系统选项.
// 多个 MultiTimer 可共享同一个定时器系统, 此时 MultiTimer 关闭时不会停止该系统,
// 由调用方负责其生命周期.
func WithTimerSystem(system timer.System) Option {
	return func(opts *optionSet) {
		opts.system = system
		opts.systemSet = true
	}
}

// WithHeapOptions 内部 Heap 选项. 指定 WithTimerSystem 时无效.
func WithHeapOptions(options ...timer.HeapOption) Option {
	return func(opts *optionSet) {
		opts.heapOptions = append(opts.heapOptions, options...)
	}
}

// WithCloseTimeout Close 等待回调结束的最长时间选项, 默认 5s.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(opts *optionSet) {
		opts.closeTimeout = timeout
	}
}
