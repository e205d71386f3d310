package command

import (
	"context"
	"log/slog"
	"sync"
)

// onceLog remembers which messages a directive already logged so soft
// failures that repeat every frame are reported a single time.
type onceLog struct {
	seen sync.Map
}

func (o *onceLog) log(c *Context, level slog.Level, msg string, args ...any) {
	if _, dup := o.seen.LoadOrStore(msg, struct{}{}); dup {
		return
	}
	c.logger().Log(context.Background(), level, msg, args...)
}
