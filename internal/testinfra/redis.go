// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage is the Redis image used by integration tests.
	DefaultRedisImage = "redis:7-alpine"

	redisPort = "6379/tcp"
)

// RedisContainer is a running Redis server.
type RedisContainer struct {
	testcontainers.Container

	// Addr is host:port, ready for redis.Options.Addr.
	Addr string
}

// NewRedisContainer starts Redis and waits until it accepts connections.
// The container is terminated when the test ends.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        DefaultRedisImage,
			ExposedPorts: []string{redisPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(redisPort),
				wait.ForLog("Ready to accept connections"),
			).WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { CleanupContainer(t, container) })

	addr, err := endpoint(ctx, container, redisPort)
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	return &RedisContainer{Container: container, Addr: addr}
}

// NATSContainer is a running NATS server with JetStream.
type NATSContainer struct {
	testcontainers.Container

	// URL is nats://host:port.
	URL string
}

// NewNATSContainer starts nats with JetStream enabled.
func NewNATSContainer(t *testing.T) *NATSContainer {
	t.Helper()
	SkipIfNoDocker(t)

	const natsPort = "4222/tcp"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.12-alpine",
			Cmd:          []string{"-js"},
			ExposedPorts: []string{natsPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(natsPort),
				wait.ForLog("Server is ready"),
			).WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start nats container: %v", err)
	}
	t.Cleanup(func() { CleanupContainer(t, container) })

	addr, err := endpoint(ctx, container, natsPort)
	if err != nil {
		t.Fatalf("nats endpoint: %v", err)
	}
	return &NATSContainer{Container: container, URL: fmt.Sprintf("nats://%s", addr)}
}
