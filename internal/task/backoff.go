package task

import "time"

// backoffDelay returns the wait before the next generation attempt:
// base doubled per completed attempt, clamped at cap. attempt is
// 1-based, so the delay after the first failure is base itself.
func backoffDelay(attempt int, base, cap time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if cap > 0 && delay > cap {
		return cap
	}
	return delay
}
