package common

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/haeksim/noonsongi/common/logger"
)

var pollGoPool gopool.Pool

func init() {
	pollGoPool = gopool.NewPool("gopool.PollPool", math.MaxInt32, gopool.NewConfig())
	pollGoPool.SetPanicHandler(func(ctx context.Context, i interface{}) {
		logger.Error(ctx, fmt.Sprintf("panic in gopool.PollPool: %v\n%s", i, debug.Stack()))
	})
}

// PollCtxGo runs f on the poll pool. ctx only carries values for the panic handler;
// f is responsible for honouring its own cancellation.
func PollCtxGo(ctx context.Context, f func()) {
	pollGoPool.CtxGo(ctx, f)
}
