package gtimer

import "errors"

// ErrHandlerNil 未指定 Handler.
var ErrHandlerNil = errors.New("handler nil")

// ErrTimerSystemNil 指定的定时器系统为 nil.
var ErrTimerSystemNil = errors.New("timer system nil")
