package marketdata

import "time"

// SetNow overrides the client clock so news-window tests are deterministic.
func SetNow(c *Client, f func() time.Time) { c.now = f }
