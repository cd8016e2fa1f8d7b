// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/config"
)

func TestKey(t *testing.T) {
	t.Parallel()

	a := Key("u1", "ensemble", 10, "")
	b := Key("u1", "ensemble", 10, "listing.price < 1.0")
	c := Key("u1|ensemble", "", 10, "")
	if a == b || a == c {
		t.Errorf("keys collide: %q %q %q", a, b, c)
	}
	if !strings.HasPrefix(b, userPrefix("u1")) {
		t.Errorf("key %q lacks user prefix", b)
	}
	if strings.HasPrefix(c, userPrefix("u1")) {
		t.Errorf("key %q of another user shares the prefix", c)
	}
}

func TestMemory_InvalidateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory(100, time.Minute)

	k1 := Key("u1", "ensemble", 10, "")
	k2 := Key("u1", "kmeans", 5, "")
	k3 := Key("u2", "ensemble", 10, "")
	for _, k := range []string{k1, k2, k3} {
		if err := m.Set(ctx, "", k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	if v, ok, err := m.Get(ctx, k1); err != nil || !ok || string(v) != k1 {
		t.Errorf("Get(k1) = %q, %v, %v", v, ok, err)
	}

	if err := m.InvalidateUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Get(ctx, k1); ok {
		t.Error("k1 should be gone")
	}
	if _, ok, _ := m.Get(ctx, k2); ok {
		t.Error("k2 should be gone")
	}
	if _, ok, _ := m.Get(ctx, k3); !ok {
		t.Error("k3 of another user should remain")
	}
	if m.Backend() != config.CacheBackendMemory {
		t.Errorf("Backend() = %q", m.Backend())
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var c Cache = Nop{}

	if err := c.Set(ctx, "u", "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Nop Get() = %v, %v", ok, err)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: config.CacheBackendNone, want: config.CacheBackendNone},
		{backend: config.CacheBackendMemory, want: config.CacheBackendMemory},
		{backend: "memcached", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			t.Parallel()
			c, err := New(ctx, &config.CacheConfig{Backend: tt.backend, TTL: time.Minute, MaxEntries: 10}, zerolog.Nop())
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if c.Backend() != tt.want {
				t.Errorf("Backend() = %q, want %q", c.Backend(), tt.want)
			}
		})
	}
}

// mockRedisClient is an in-memory redisClient.
type mockRedisClient struct {
	data    map[string][]byte
	sets    map[string]map[string]struct{}
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{
		data: map[string][]byte{},
		sets: map[string]map[string]struct{}{},
		ttls: map[string]time.Duration{},
	}
}

func (m *mockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(v))
	return cmd
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = value.([]byte)
	m.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		m.deleted = append(m.deleted, k)
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
		if _, ok := m.sets[k]; ok {
			delete(m.sets, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func (m *mockRedisClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	set := m.sets[key]
	if set == nil {
		set = map[string]struct{}{}
		m.sets[key] = set
	}
	for _, mem := range members {
		set[mem.(string)] = struct{}{}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(members)))
	return cmd
}

func (m *mockRedisClient) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	out := []string{}
	for k := range m.sets[key] {
		out = append(out, k)
	}
	cmd.SetVal(out)
	return cmd
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.ttls[key] = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (m *mockRedisClient) Close() error { return nil }

func TestRedis_SetGetInvalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newMockRedisClient()
	r := newRedis(client, "ps:", 90*time.Second)

	k1 := Key("u1", "ensemble", 10, "")
	k2 := Key("u2", "ensemble", 10, "")
	if err := r.Set(ctx, "u1", k1, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := r.Set(ctx, "u2", k2, []byte("two")); err != nil {
		t.Fatal(err)
	}
	if client.ttls["ps:data:"+k1] != 90*time.Second {
		t.Errorf("ttl = %v", client.ttls["ps:data:"+k1])
	}

	v, ok, err := r.Get(ctx, k1)
	if err != nil || !ok || string(v) != "one" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}

	if err := r.InvalidateUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := r.Get(ctx, k1); ok {
		t.Error("u1 key should be gone")
	}
	if _, ok, _ := r.Get(ctx, k2); !ok {
		t.Error("u2 key should remain")
	}
}

func TestRedis_Miss(t *testing.T) {
	t.Parallel()
	r := newRedis(newMockRedisClient(), "ps:", time.Minute)

	v, ok, err := r.Get(context.Background(), "nope")
	if v != nil || ok || err != nil {
		t.Errorf("Get() = %v, %v, %v, want clean miss", v, ok, err)
	}
}

func TestRedis_GetError(t *testing.T) {
	t.Parallel()
	client := newMockRedisClient()
	client.getErr = errors.New("connection refused")
	r := newRedis(client, "ps:", time.Minute)

	if _, ok, err := r.Get(context.Background(), "k"); ok || err == nil {
		t.Errorf("Get() = %v, %v, want error", ok, err)
	}
}
