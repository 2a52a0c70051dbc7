package gtimer

import (
	"time"

	"github.com/godyy/gtimer/timer"
)

// timerProxy 单个逻辑定时器的代理.
// 持有一个 timer.Timer, 到期时携带自身 id 通知所属的 MultiTimer.
type timerProxy struct {
	id    int          // 逻辑定时器ID, 构造后不变.
	owner *MultiTimer  // 所属 MultiTimer, 不持有其生命周期.
	timer *timer.Timer // 底层定时器.
}

func newTimerProxy(id int, owner *MultiTimer) *timerProxy {
	p := &timerProxy{
		id:    id,
		owner: owner,
	}
	p.timer = timer.NewTimer(owner.system, p)
	return p
}

// OnTimer 底层定时器到期, 转发给 owner.
func (p *timerProxy) OnTimer() {
	p.owner.onTimerFired(p.id)
}

func (p *timerProxy) start(interval time.Duration) {
	p.timer.Start(interval)
}

func (p *timerProxy) stop() {
	p.timer.Stop()
}

func (p *timerProxy) isRunning() bool {
	return p.timer.IsRunning()
}

func (p *timerProxy) interval() time.Duration {
	return p.timer.Interval()
}

// release 释放代理, 先停止底层定时器.
func (p *timerProxy) release() {
	p.timer.Stop()
}
