// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
)

// mockService is a suture.Service that fails a configured number of times
// before running until canceled.
type mockService struct {
	name       string
	failTimes  int32
	failCount  atomic.Int32
	startCount atomic.Int32
	stopCount  atomic.Int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	if m.failTimes > 0 && m.failCount.Add(1) <= m.failTimes {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
