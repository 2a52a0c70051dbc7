package timer

import "time"

// TimerId 由 System 分配的调度ID, 同一 System 内唯一.
type TimerId = uint64

// TimerIdNone 表示没有调度, System 已停止时 StartTimer 返回该值.
const TimerIdNone TimerId = 0

// TimerArgs 到期时传给 TimerFunc 的参数.
type TimerArgs struct {
	TID  TimerId // 到期的调度ID.
	Args any     // StartTimer 时传入的附加参数.
}

// TimerFunc 到期回调.
type TimerFunc func(*TimerArgs)

// System 调度服务. Timer 通过它注册与取消调度, 到期回调在 System 自己的
// goroutine 上执行.
type System interface {
	// StartTimer 在 delay 后调用 f, periodic 为 true 时以 delay 为周期重复调用.
	StartTimer(delay time.Duration, periodic bool, args any, f TimerFunc) TimerId

	// StopTimer 取消调度. tid 未知时忽略.
	StopTimer(tid TimerId)
}
