package telegram

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// chatLimiter throttles commands per chat so one busy group cannot
// starve the others. Limiters are never evicted; a chat costs a few
// dozen bytes and the bot serves a bounded set of conversations.
type chatLimiter struct {
	mu        sync.Mutex
	limiters  map[int64]*rate.Limiter
	perMinute int
}

func newChatLimiter(perMinute int) *chatLimiter {
	return &chatLimiter{
		limiters:  make(map[int64]*rate.Limiter),
		perMinute: perMinute,
	}
}

func (l *chatLimiter) allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[chatID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.limiters[chatID] = limiter
	}
	return limiter.Allow()
}
