package main

import (
	"encoding/json"
	"time"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const brpopTimeout = 5 * time.Second

type jobQueue struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func newJobQueue(redisURL, key string) (*jobQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid REDIS_URL %q", redisURL)
	}
	return &jobQueue{client: redis.NewClient(opts), key: key, timeout: brpopTimeout}, nil
}

// next blocks for up to the queue timeout. ok is false when nothing arrived.
func (q *jobQueue) next() (payload string, ok bool, err error) {
	res, err := q.client.BRPop(q.timeout, q.key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if len(res) != 2 {
		return "", false, errors.Errorf("unexpected BRPOP reply: %v", res)
	}
	return res[1], true, nil
}

func decodeJob(payload string) (sidekiqJob, error) {
	var job sidekiqJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return sidekiqJob{}, errors.Wrap(err, "invalid job json")
	}
	return job, nil
}

func (q *jobQueue) Close() error {
	return q.client.Close()
}
