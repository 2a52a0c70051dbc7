package gtimer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/godyy/glog"
	"github.com/godyy/gtimer/timer"
	pkgerrors "github.com/pkg/errors"
)

// Handler MultiTimer 事件处理器.
type Handler interface {
	// OnTimerFired 处理定时器到期事件.
	// 在定时器系统的调度 goroutine 上调用, 调用期间不持有 MultiTimer 的锁, 因此
	// 可以在其中调用 StartTimer/StopTimer. 使用协程池时, 不同 id 的回调可能并发执行.
	OnTimerFired(id int)
}

// HandlerFunc 函数形式的 Handler.
type HandlerFunc func(id int)

func (f HandlerFunc) OnTimerFired(id int) { f(id) }

// MultiTimer 多路定时器.
// 以整数 id 区分任意数量的周期定时器, 所有定时器到期时都回调同一个 Handler.
// 每个 id 在第一次 StartTimer 时创建对应的代理, 之后直到 Close 都不会移除,
// 停止的定时器只是不再调度.
type MultiTimer struct {
	handler     Handler       // 事件处理器.
	system      timer.System  // 定时器系统.
	ownedHeap   *timer.Heap   // 自身创建的定时器系统, Close 时停止.
	mtx         sync.Mutex    // 保护 proxies.
	proxies     []*timerProxy // 定时器代理, 按创建顺序排列.
	closed      atomic.Bool   // 是否已关闭.
	dispatchMtx sync.RWMutex  // 分发回调时读锁定, Close 通过写锁等待回调结束.
	waitTimeout time.Duration // Close 等待回调结束的最长时间.
	logger      glog.Logger   // 日志工具.
}

// defaultCloseTimeout Close 等待回调结束的默认最长时间.
const defaultCloseTimeout = 5 * time.Second

// CreateMultiTimer 创建 MultiTimer.
// 未通过 WithTimerSystem 指定定时器系统时, 创建独占的 timer.Heap.
func CreateMultiTimer(handler Handler, options ...Option) (*MultiTimer, error) {
	if handler == nil {
		return nil, ErrHandlerNil
	}

	var optSet optionSet
	for _, opt := range options {
		opt(&optSet)
	}

	if optSet.systemSet && optSet.system == nil {
		return nil, pkgerrors.WithMessage(ErrTimerSystemNil, "create multi timer")
	}

	m := &MultiTimer{
		handler:     handler,
		waitTimeout: defaultCloseTimeout,
	}
	if optSet.closeTimeout > 0 {
		m.waitTimeout = optSet.closeTimeout
	}

	m.initLogger(optSet.logger)

	if optSet.systemSet {
		m.system = optSet.system
	} else {
		heapOptions := append([]timer.HeapOption{timer.WithHeapLogger(m.logger)}, optSet.heapOptions...)
		m.ownedHeap = timer.NewHeap(heapOptions...)
		m.system = m.ownedHeap
	}

	return m, nil
}

// initLogger 初始化日志工具.
func (m *MultiTimer) initLogger(logger glog.Logger) {
	if logger == nil {
		logger = createStdLogger(glog.WarnLevel)
	}
	m.logger = logger.Named("MultiTimer")
}

// findProxy 查找 id 对应的代理. 从最新创建的代理开始反向查找.
// 调用方需持有 mtx.
func (m *MultiTimer) findProxy(id int) *timerProxy {
	for i := len(m.proxies) - 1; i >= 0; i-- {
		if p := m.proxies[i]; p.id == id {
			return p
		}
	}
	return nil
}

// StartTimer 以 interval 为周期启动 id 对应的定时器.
// 若该定时器已在运行, 以新的周期重新调度. interval <= 0 时定时器停止.
// Close 之后调用什么也不做.
func (m *MultiTimer) StartTimer(id int, interval time.Duration) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.closed.Load() {
		return
	}

	if p := m.findProxy(id); p != nil {
		p.start(interval)
		return
	}

	p := newTimerProxy(id, m)
	m.proxies = append(m.proxies, p)
	p.start(interval)

	m.logger.WithFields(lfdId(id), lfdInterval(interval)).Debug("timer created")
}

// StopTimer 停止 id 对应的定时器. id 不存在或已停止时什么也不做.
// 已经开始分发的回调不会被撤回, 可能在 StopTimer 返回后才执行完毕.
func (m *MultiTimer) StopTimer(id int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if p := m.findProxy(id); p != nil {
		p.stop()
	}
}

// IsTimerRunning 返回 id 对应的定时器是否在运行. id 不存在时返回 false.
func (m *MultiTimer) IsTimerRunning(id int) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if p := m.findProxy(id); p != nil {
		return p.isRunning()
	}
	return false
}

// TimerInterval 返回 id 对应的定时器周期. id 不存在或定时器已停止时返回 0.
func (m *MultiTimer) TimerInterval(id int) time.Duration {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if p := m.findProxy(id); p != nil {
		return p.interval()
	}
	return 0
}

// Len 返回已创建代理的定时器数量, 包括已停止的定时器.
func (m *MultiTimer) Len() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.proxies)
}

// Close 关闭 MultiTimer.
// 停止并释放所有定时器, 等待正在执行的回调返回, 再停止自身创建的定时器系统并
// 等待其调度 goroutine 退出. 正常返回后 Handler 不会再被调用.
// 等待回调超过 WithCloseTimeout 指定的时间时记录错误并直接返回, 在
// Handler.OnTimerFired 中调用 Close 即属于这种情况, 此时当前回调之外的
// 回调也可能尚未结束.
func (m *MultiTimer) Close() {
	m.mtx.Lock()
	if m.closed.Load() {
		m.mtx.Unlock()
		return
	}
	m.closed.Store(true)
	n := len(m.proxies)
	for _, p := range m.proxies {
		p.release()
	}
	m.proxies = nil
	m.mtx.Unlock()

	deadline := time.NewTimer(m.waitTimeout)
	defer deadline.Stop()

	// 此时不持有 mtx, 回调中调用 StartTimer 等不会死锁.
	drained := m.waitDispatches(deadline.C)
	if !drained {
		m.logger.ErrorFields("wait timer handlers timeout", lfdTimeout(m.waitTimeout))
	}

	if m.ownedHeap != nil {
		m.ownedHeap.Stop()
		if drained {
			select {
			case <-m.ownedHeap.Done():
			case <-deadline.C:
				m.logger.ErrorFields("wait timer system exit timeout", lfdTimeout(m.waitTimeout))
			}
		}
	}

	m.logger.InfoFields("closed", lfdTimers(n))
}

// waitDispatches 等待已通过分发检查的回调结束, deadline 先到时返回 false.
func (m *MultiTimer) waitDispatches(deadline <-chan time.Time) bool {
	done := make(chan struct{})
	go func() {
		m.dispatchMtx.Lock()
		m.dispatchMtx.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-deadline:
		return false
	}
}

// onTimerFired 由代理在定时器到期时调用.
func (m *MultiTimer) onTimerFired(id int) {
	m.dispatchMtx.RLock()
	defer m.dispatchMtx.RUnlock()

	if m.closed.Load() {
		return
	}

	m.handler.OnTimerFired(id)
}
