package broker

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ragchat/internal/domain/job"
)

// ValkeyBroker implements job.Broker against a Valkey/Redis server.
type ValkeyBroker struct {
	client valkey.Client
}

// NewValkeyBroker constructs a ValkeyBroker.
func NewValkeyBroker(client valkey.Client) *ValkeyBroker {
	return &ValkeyBroker{client: client}
}

// Push implements job.Broker via LPUSH.
func (b *ValkeyBroker) Push(ctx context.Context, key string, value string) error {
	cmd := b.client.B().Lpush().Key(key).Element(value).Build()
	return b.client.Do(ctx, cmd).Error()
}

// BlockingPop implements job.Broker via BRPOP.
func (b *ValkeyBroker) BlockingPop(ctx context.Context, key string, timeout time.Duration) (string, bool, error) {
	cmd := b.client.B().Brpop().Key(key).Timeout(timeout.Seconds()).Build()
	resp := b.client.Do(ctx, cmd)
	values, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(values) < 2 {
		return "", false, nil
	}
	raw, err := values[1].ToString()
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

// Set implements job.Broker via SET with EX.
func (b *ValkeyBroker) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	cmd := b.client.B().Set().Key(key).Value(value).Ex(ttl).Build()
	return b.client.Do(ctx, cmd).Error()
}

// Get implements job.Broker via GET.
func (b *ValkeyBroker) Get(ctx context.Context, key string) (string, bool, error) {
	resp := b.client.Do(ctx, b.client.B().Get().Key(key).Build())
	value, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Ping implements job.Broker for readiness checks.
func (b *ValkeyBroker) Ping(ctx context.Context) error {
	return b.client.Do(ctx, b.client.B().Ping().Build()).Error()
}

var _ job.Broker = (*ValkeyBroker)(nil)
