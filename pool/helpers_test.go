package pool

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func readyPool(t *testing.T, options CreateOptions) *Pool {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	p, err := New(logger, options)
	require.NoError(t, err)
	return p
}

func mustAllocate(t *testing.T, p *Pool, size int) Handle {
	t.Helper()

	h, err := p.Allocate(size)
	require.NoError(t, err)
	require.True(t, h.Valid())
	return h
}
