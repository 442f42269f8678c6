package rtkernel

import "go.uber.org/zap"

// logger returns k.zlog, or a no-op logger if the kernel was constructed
// without one. Config.Logger is optional; callers never need to check
// for nil themselves.
func (k *Kernel) logger() *zap.Logger {
	if k.zlog == nil {
		return zap.NewNop()
	}
	return k.zlog
}
