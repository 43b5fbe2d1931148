package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

const (
	defaultCourseTTL = 5 * time.Minute
	generationTTL    = 24 * time.Hour
)

// setIfGeneration writes KEYS[1] only while KEYS[2] still holds ARGV[1].
// A missing generation counts as "0".
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// CourseCache stores serialised courses under course:<id> with a TTL.
// Every invalidation bumps course:gen:<id>, and Set refuses to write a
// value read under an older generation.
type CourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCourseCache creates a CourseCache wrapping the given Redis client. A
// non-positive ttl selects the default.
func NewCourseCache(client *redis.Client, ttl time.Duration) *CourseCache {
	if ttl <= 0 {
		ttl = defaultCourseTTL
	}
	return &CourseCache{client: client, ttl: ttl}
}

// Get returns the cached course, or nil on a miss, together with the
// current generation to hand back to Set.
func (c *CourseCache) Get(ctx context.Context, id string) (*domain.Course, int64, error) {
	vals, err := c.client.MGet(ctx, c.key(id), c.genKey(id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("course cache get: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}

	var course domain.Course
	if err := json.Unmarshal([]byte(raw), &course); err != nil {
		return nil, gen, fmt.Errorf("course cache decode: %w", err)
	}
	return &course, gen, nil
}

// Set stores course if no invalidation happened since gen was read. A
// skipped write is not an error.
func (c *CourseCache) Set(ctx context.Context, course *domain.Course, gen int64) error {
	raw, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("course cache encode: %w", err)
	}
	err = setIfGeneration.Run(ctx, c.client,
		[]string{c.key(course.ID), c.genKey(course.ID)},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("course cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached course and bumps its generation.
func (c *CourseCache) Invalidate(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(id))
		pipe.Incr(ctx, c.genKey(id))
		pipe.Expire(ctx, c.genKey(id), generationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("course cache invalidate: %w", err)
	}
	return nil
}

func (c *CourseCache) key(id string) string {
	return fmt.Sprintf("course:%s", id)
}

func (c *CourseCache) genKey(id string) string {
	return fmt.Sprintf("course:gen:%s", id)
}

func parseGeneration(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("course cache generation %q: %w", s, err)
	}
	return gen, nil
}
