package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"skillsync/internal/models"
)

const questionSetTTL = 24 * time.Hour

type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func (c *RedisCache) SetQuestionSet(set *models.QuestionSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("qset:%d", set.ID)
	return c.client.Set(c.ctx, key, data, questionSetTTL).Err()
}

func (c *RedisCache) GetQuestionSet(id uint) (*models.QuestionSet, error) {
	key := fmt.Sprintf("qset:%d", id)
	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var set models.QuestionSet
	err = json.Unmarshal(data, &set)
	return &set, err
}

func (c *RedisCache) InvalidateQuestionSet(id uint) error {
	key := fmt.Sprintf("qset:%d", id)
	return c.client.Del(c.ctx, key).Err()
}

// OTP storage. Codes live under a purpose-scoped key ("verify", "reset") so a
// password-reset code cannot be replayed as an email-verification code.

func (c *RedisCache) SetOTP(purpose, email, code string, ttl time.Duration) error {
	key := fmt.Sprintf("otp:%s:%s", purpose, email)
	return c.client.Set(c.ctx, key, code, ttl).Err()
}

func (c *RedisCache) GetOTP(purpose, email string) (string, error) {
	key := fmt.Sprintf("otp:%s:%s", purpose, email)
	return c.client.Get(c.ctx, key).Result()
}

func (c *RedisCache) DeleteOTP(purpose, email string) error {
	key := fmt.Sprintf("otp:%s:%s", purpose, email)
	return c.client.Del(c.ctx, key).Err()
}
