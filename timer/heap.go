package timer

import (
	"sync"
	"time"

	"github.com/godyy/glog"
	"github.com/godyy/gutils/container/heap"
	"github.com/panjf2000/ants"
)

// defaultPoolExpiry 协程池空闲 worker 的回收周期, 也决定 Stop 后池内清理 goroutine 的退出时间.
const defaultPoolExpiry = 50 * time.Millisecond

// schedule Heap 中的一次调度.
type schedule struct {
	tid    TimerId
	index  int
	period time.Duration
	repeat bool
	args   any
	fn     TimerFunc
	due    int64 // UnixNano.
}

func (s *schedule) HeapLess(other *schedule) bool {
	if s.due != other.due {
		return s.due < other.due
	}
	return s.tid < other.tid
}

func (s *schedule) HeapIndex() int { return s.index }

func (s *schedule) SetHeapIndex(index int) { s.index = index }

// firing 一次待执行的到期回调.
type firing struct {
	fn   TimerFunc
	args *TimerArgs
}

// Heap 基于最小堆的 System 实现.
// 所有调度共用一个 time.Timer 和一个 goroutine. 回调默认在该 goroutine 中串行
// 执行, 配置 WithHeapPool 后提交到 ants 协程池并发执行.
// 周期调度落后超过一个周期时跳过错过的到期, 不会补发.
type Heap struct {
	mu     sync.Mutex
	wakeup *time.Timer
	lastId TimerId
	queue  *heap.Heap[*schedule]
	byId   map[TimerId]*schedule
	closed bool
	cClose chan struct{} // Stop 时关闭.
	cDone  chan struct{} // run 退出时关闭.

	poolSize   int
	poolExpiry time.Duration
	pool       *ants.Pool

	logger glog.Logger
}

// NewHeap 构造 Heap 并启动调度 goroutine.
func NewHeap(options ...HeapOption) *Heap {
	th := &Heap{
		wakeup:     time.NewTimer(time.Hour),
		queue:      heap.NewHeap[*schedule](),
		byId:       make(map[TimerId]*schedule),
		cClose:     make(chan struct{}),
		cDone:      make(chan struct{}),
		poolExpiry: defaultPoolExpiry,
	}
	th.wakeup.Stop()

	for _, opt := range options {
		opt(th)
	}

	if th.logger == nil {
		th.logger = createStdLogger(glog.WarnLevel)
	}

	if th.poolSize > 0 {
		pool, err := ants.NewPool(th.poolSize, ants.WithExpiryDuration(th.poolExpiry))
		if err != nil {
			th.logger.ErrorFields("create callback pool, fallback to inline callbacks",
				lfdPoolSize(th.poolSize),
				lfdError(err))
		} else {
			th.pool = pool
		}
	}

	go th.run()

	return th
}

// StartTimer 注册调度. delay 必须为正, f 不能为 nil.
func (th *Heap) StartTimer(delay time.Duration, periodic bool, args any, f TimerFunc) TimerId {
	if delay <= 0 {
		panic("timer: non-positive delay")
	}
	if f == nil {
		panic("timer: nil TimerFunc")
	}

	due := time.Now().Add(delay).UnixNano()

	th.mu.Lock()
	defer th.mu.Unlock()

	if th.closed {
		return TimerIdNone
	}

	th.lastId++
	s := &schedule{
		tid:    th.lastId,
		index:  -1,
		period: delay,
		repeat: periodic,
		args:   args,
		fn:     f,
		due:    due,
	}
	th.queue.Push(s)
	th.byId[s.tid] = s
	if th.queue.Top() == s {
		th.rearm()
	}

	return s.tid
}

// StopTimer 取消调度. 已经取出等待执行的回调仍会执行.
func (th *Heap) StopTimer(tid TimerId) {
	th.mu.Lock()
	defer th.mu.Unlock()

	s, ok := th.byId[tid]
	if !ok {
		return
	}

	wasTop := th.queue.Top() == s
	th.queue.Remove(s.index)
	delete(th.byId, tid)
	if wasTop {
		th.rearm()
	}
}

// Len 返回未取消的调度数量.
func (th *Heap) Len() int {
	th.mu.Lock()
	defer th.mu.Unlock()
	return len(th.byId)
}

// Stopped 返回是否已调用 Stop.
func (th *Heap) Stopped() bool {
	th.mu.Lock()
	defer th.mu.Unlock()
	return th.closed
}

// Done 返回在调度 goroutine 退出后关闭的 channel.
func (th *Heap) Done() <-chan struct{} {
	return th.cDone
}

// Stop 丢弃全部调度并通知调度 goroutine 退出, 可重复调用.
// 不等待正在执行的回调; 需要等待时使用 Done.
// 协程池的清理 goroutine 在一个回收周期内退出.
func (th *Heap) Stop() {
	th.mu.Lock()
	defer th.mu.Unlock()

	if th.closed {
		return
	}

	th.closed = true
	th.wakeup.Stop()
	th.byId = make(map[TimerId]*schedule)
	th.queue = heap.NewHeap[*schedule]()
	close(th.cClose)

	if th.pool != nil {
		th.pool.Release()
	}

	th.logger.Debug("stopped")
}

// rearm 按堆顶重新设置唤醒时间. 调用方需持有 mu.
func (th *Heap) rearm() {
	if !th.wakeup.Stop() {
		select {
		case <-th.wakeup.C:
		default:
		}
	}
	if th.queue.Len() == 0 {
		return
	}
	th.wakeup.Reset(time.Duration(th.queue.Top().due - time.Now().UnixNano()))
}

// collect 取出所有已到期的调度, 周期调度放回堆中.
func (th *Heap) collect(batch []firing) []firing {
	now := time.Now().UnixNano()

	th.mu.Lock()
	defer th.mu.Unlock()

	if th.closed {
		return batch
	}

	for th.queue.Len() > 0 {
		s := th.queue.Top()
		if s.due > now {
			break
		}

		batch = append(batch, firing{fn: s.fn, args: &TimerArgs{TID: s.tid, Args: s.args}})

		if !s.repeat {
			th.queue.Remove(s.index)
			delete(th.byId, s.tid)
			continue
		}

		s.due += int64(s.period)
		if s.due <= now {
			s.due = now + int64(s.period)
		}
		th.queue.Fix(s.index)
	}

	th.rearm()
	return batch
}

// dispatch 执行到期回调. 协程池提交失败且 Heap 未停止时在当前 goroutine 执行.
func (th *Heap) dispatch(f firing) {
	if th.pool == nil {
		f.fn(f.args)
		return
	}

	if err := th.pool.Submit(func() { f.fn(f.args) }); err != nil {
		if th.Stopped() {
			return
		}
		th.logger.ErrorFields("submit callback to pool, invoke inline",
			lfdTimerId(f.args.TID),
			lfdError(err))
		f.fn(f.args)
	}
}

func (th *Heap) run() {
	defer close(th.cDone)

	var batch []firing
	for {
		select {
		case <-th.wakeup.C:
			batch = th.collect(batch[:0])
			for i := range batch {
				select {
				case <-th.cClose:
				default:
					th.dispatch(batch[i])
				}
				batch[i] = firing{}
			}
		case <-th.cClose:
			return
		}
	}
}
