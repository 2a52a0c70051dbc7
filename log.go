package gtimer

import (
	"time"

	"github.com/godyy/glog"
	"go.uber.org/zap"
)

// createStdLogger 创建标准输出的 logger.
func createStdLogger(level glog.Level) glog.Logger {
	return glog.NewLogger(&glog.Config{
		Level:        level,
		EnableCaller: true,
		CallerSkip:   0,
		Development:  true,
		Cores:        []glog.CoreConfig{glog.NewStdCoreConfig()},
	})
}

func lfdId(id int) zap.Field {
	return zap.Int("id", id)
}

func lfdInterval(interval time.Duration) zap.Field {
	return zap.Duration("interval", interval)
}

func lfdTimers(n int) zap.Field {
	return zap.Int("timers", n)
}

func lfdTimeout(timeout time.Duration) zap.Field {
	return zap.Duration("timeout", timeout)
}
