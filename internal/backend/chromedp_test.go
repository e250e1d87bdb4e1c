package backend

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConnectRemote_UnreachableServerYieldsNilHandle(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	// Port 1 is never a DevTools endpoint; the dial fails immediately.
	h := NewRemoteChromeHeadless("127.0.0.1", "1", logger)
	require.Nil(t, h)

	entries := logs.FilterMessage("[FAIL] connect browser backend").All()
	require.Len(t, entries, 1)
	require.Equal(t, "127.0.0.1", entries[0].ContextMap()["addr"])
}

func TestConnectRemote_NilHandleFailsGuard(t *testing.T) {
	t.Parallel()

	h := NewRemoteChrome("127.0.0.1", "1", zap.NewNop())
	require.Nil(t, h)
	require.ErrorIs(t, Guard("navigate", h), ErrNoHandle)
}

func TestChromeElement_AfterCloseReportsFault(t *testing.T) {
	t.Parallel()

	// A stale element whose tab is gone must fail like any backend fault.
	c := &Chrome{logger: zap.NewNop(), timeout: time.Second}
	el := &chromeElement{chrome: c, nodeID: 1}

	_, err := el.Text(context.Background())
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, "find", berr.Op)

	_, err = el.Attribute(context.Background(), "src")
	require.ErrorAs(t, err, &berr)
	require.Equal(t, "find", berr.Op)
}

// TestChrome_Live exercises the full navigate/find/close path against a real
// browser. It needs a DevTools endpoint, e.g.
//
//	docker run -p 9222:9222 chromedp/headless-shell
//	WEBPARSER_CHROME_ADDR=127.0.0.1 WEBPARSER_CHROME_PORT=9222 go test ./internal/backend/
func TestChrome_Live(t *testing.T) {
	addr := os.Getenv("WEBPARSER_CHROME_ADDR")
	if addr == "" {
		t.Skip("WEBPARSER_CHROME_ADDR not set")
	}
	port := os.Getenv("WEBPARSER_CHROME_PORT")
	if port == "" {
		port = "9222"
	}

	h := NewRemoteChromeHeadless(addr, port, zap.NewNop())
	require.NotNil(t, h)
	chrome, ok := h.(*Chrome)
	require.True(t, ok)
	defer chrome.Shutdown()

	ctx := context.Background()
	require.NoError(t, h.Navigate(ctx, "about:blank"))

	el, err := h.Find(ctx, "body")
	require.NoError(t, err)
	_, err = el.Text(ctx)
	require.NoError(t, err)

	require.NoError(t, h.Close(ctx))

	// Close with no open tab reports a fault.
	err = h.Close(ctx)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, "close", berr.Op)

	// The connection survives a close.
	require.NoError(t, h.Navigate(ctx, "about:blank"))
	require.NoError(t, h.Close(ctx))
}
