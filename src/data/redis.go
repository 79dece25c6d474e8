package data

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis parses a redis:// URL into a client. The connection is established lazily.
func Redis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("data: redis: %w", err)
	}
	return redis.NewClient(opt), nil
}
