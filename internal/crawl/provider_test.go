package crawl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pageparse/crawler/internal/backend"
)

func TestProvider_EnsureBuildsOnce(t *testing.T) {
	t.Parallel()

	h := &fakeHandle{}
	calls := 0
	p := NewProvider(func() backend.Handle {
		calls++
		return h
	})

	require.Same(t, h, p.Ensure().(*fakeHandle))
	require.Same(t, h, p.Ensure().(*fakeHandle))
	require.Equal(t, 1, calls)
}

func TestProvider_EnsureRetriesAfterNilFactoryResult(t *testing.T) {
	t.Parallel()

	h := &fakeHandle{}
	calls := 0
	p := NewProvider(func() backend.Handle {
		calls++
		if calls == 1 {
			return nil
		}
		return h
	})

	require.Nil(t, p.Ensure())
	require.Same(t, h, p.Ensure().(*fakeHandle))
	require.Equal(t, 2, calls)
}

func TestProvider_ResetDropsHandle(t *testing.T) {
	t.Parallel()

	calls := 0
	p := NewProvider(func() backend.Handle {
		calls++
		return &fakeHandle{}
	})

	first := p.Ensure()
	p.Reset()
	second := p.Ensure()

	require.Equal(t, 2, calls)
	require.NotSame(t, first.(*fakeHandle), second.(*fakeHandle))
}

func TestProvider_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var p *Provider
	require.Nil(t, p.Ensure())
}

func TestProvider_SetBypassesFactory(t *testing.T) {
	t.Parallel()

	p := NewProvider(func() backend.Handle {
		t.Fatal("factory must not run")
		return nil
	})

	h := &fakeHandle{}
	p.Set(h)
	require.Same(t, h, p.Ensure().(*fakeHandle))
}
