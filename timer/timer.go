package timer

import (
	"sync"
	"time"
)

// Callback 定时器到期回调.
type Callback interface {
	// OnTimer 定时器到期时调用.
	OnTimer()
}

// CallbackFunc 函数形式的 Callback.
type CallbackFunc func()

func (f CallbackFunc) OnTimer() { f() }

// Timer 单ID周期定时器.
// 每个 Timer 只有一个回调槽位, 调度由 System 完成, 回调在 System 的调度
// goroutine 上执行. Timer 并发安全.
type Timer struct {
	sys      System        // 定时器系统.
	cb       Callback      // 到期回调.
	mtx      sync.Mutex    // 互斥锁.
	tid      TimerId       // 当前调度的定时器ID, 停止时为 TimerIdNone.
	interval time.Duration // 当前周期, 停止时为 0.
}

// NewTimer 构造 Timer.
func NewTimer(sys System, cb Callback) *Timer {
	if sys == nil {
		panic("timer system is nil")
	}

	if cb == nil {
		panic("callback is nil")
	}

	return &Timer{
		sys: sys,
		cb:  cb,
	}
}

// Start 以 interval 为周期启动定时器.
// 若定时器已在运行, 先取消原有调度再以新周期重新调度. interval <= 0 等同于 Stop.
func (t *Timer) Start(interval time.Duration) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.cancel()

	if interval <= 0 {
		return
	}

	tid := t.sys.StartTimer(interval, true, nil, t.fire)
	if tid == TimerIdNone {
		// 定时器系统已停止.
		return
	}

	t.tid = tid
	t.interval = interval
}

// Stop 停止定时器. 已停止时什么也不做.
// 已经开始执行的回调不会被撤回.
func (t *Timer) Stop() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.cancel()
}

// IsRunning 返回定时器是否在运行.
func (t *Timer) IsRunning() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.tid != TimerIdNone
}

// Interval 返回定时器周期. 定时器未运行时返回 0.
func (t *Timer) Interval() time.Duration {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.interval
}

// cancel 取消当前调度. 调用方需持有 mtx.
func (t *Timer) cancel() {
	if t.tid == TimerIdNone {
		return
	}
	t.sys.StopTimer(t.tid)
	t.tid = TimerIdNone
	t.interval = 0
}

// fire 定时器系统回调.
// 丢弃已被取消或被重新调度的旧定时器的到期事件.
func (t *Timer) fire(args *TimerArgs) {
	t.mtx.Lock()
	current := args.TID == t.tid
	t.mtx.Unlock()

	if !current {
		return
	}

	t.cb.OnTimer()
}
