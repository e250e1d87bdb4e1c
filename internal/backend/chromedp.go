package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// defaultNavTimeout bounds a single navigate/find/close round trip when the
// caller's context carries no deadline of its own.
const defaultNavTimeout = 45 * time.Second

// Chrome drives a Chrome browser over the DevTools protocol. With an address
// it attaches to a remote browser (the usual deployment, one shared browser
// server); without one it launches a local headless instance.
type Chrome struct {
	logger      *zap.Logger
	profile     Profile
	timeout     time.Duration
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// The Headless flag only takes effect when no address is given and a local
// browser is launched. A remote browser's headless-ness is a property of the
// server it attaches to, so against a remote address the visible and
// headless constructors behave identically; script toggling applies per tab
// either way.

// NewRemoteChrome connects with the default visible profile.
func NewRemoteChrome(addr, port string, logger *zap.Logger) Handle {
	return connectRemote(addr, port, Profile{}, logger)
}

// NewRemoteChromeNoScript connects with script execution disabled.
func NewRemoteChromeNoScript(addr, port string, logger *zap.Logger) Handle {
	return connectRemote(addr, port, Profile{DisableScripts: true}, logger)
}

// NewRemoteChromeHeadless connects with the headless profile.
func NewRemoteChromeHeadless(addr, port string, logger *zap.Logger) Handle {
	return connectRemote(addr, port, Profile{Headless: true}, logger)
}

// NewRemoteChromeHeadlessNoScript connects headless with scripts disabled.
func NewRemoteChromeHeadlessNoScript(addr, port string, logger *zap.Logger) Handle {
	return connectRemote(addr, port, Profile{Headless: true, DisableScripts: true}, logger)
}

// connectRemote establishes the browser connection for a profile. Connection
// failures are not fatal: they log a warning plus the underlying error and
// yield a nil handle, which callers surface later as ErrNoHandle.
func connectRemote(addr, port string, profile Profile, logger *zap.Logger) Handle {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if addr != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(
			context.Background(),
			fmt.Sprintf("http://%s:%s", addr, port),
		)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", profile.Headless),
			chromedp.Flag("disable-gpu", true),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	warmupCtx, cancel := context.WithTimeout(browserCtx, defaultNavTimeout)
	defer cancel()
	if err := chromedp.Run(warmupCtx); err != nil {
		logger.Warn("[FAIL] connect browser backend",
			zap.String("addr", addr),
			zap.String("port", port),
			zap.Bool("headless", profile.Headless),
		)
		logger.Info("connect detail", zap.Error(err))
		browserStop()
		allocCancel()
		return nil
	}

	logger.Info("[OK] connect browser backend",
		zap.String("addr", addr),
		zap.Bool("headless", profile.Headless),
		zap.Bool("scripts_disabled", profile.DisableScripts),
	)
	return &Chrome{
		logger:      logger,
		profile:     profile,
		timeout:     defaultNavTimeout,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
	}
}

// Navigate opens url in the current tab, creating one if the previous tab was
// closed. The handle applies its profile (script toggling) per tab.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if c.tabCtx == nil {
		c.tabCtx, c.tabCancel = chromedp.NewContext(c.browserCtx)
	}

	actions := []chromedp.Action{
		c.profileSetupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := c.run(ctx, actions...); err != nil {
		return &Error{Op: "navigate", Err: err}
	}
	return nil
}

// Find locates the first node matching selector (CSS or XPath) on the current
// page.
func (c *Chrome) Find(ctx context.Context, selector string) (Element, error) {
	if c.tabCtx == nil {
		return nil, &Error{Op: "find", Err: errors.New("no open page")}
	}

	var nodes []*cdp.Node
	err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return nil, &Error{Op: "find", Err: err}
	}
	if len(nodes) == 0 {
		return nil, &Error{Op: "find", Err: fmt.Errorf("%w for %q", ErrNotFound, selector)}
	}
	return &chromeElement{chrome: c, nodeID: nodes[0].NodeID}, nil
}

// Close releases the current tab. The browser connection survives, so the
// handle can Navigate again afterwards. Closing without an open tab is a
// backend error, reported the same way a live fault would be.
func (c *Chrome) Close(ctx context.Context) error {
	if c.tabCancel == nil {
		return &Error{Op: "close", Err: errors.New("no open page")}
	}
	c.tabCancel()
	c.tabCtx = nil
	c.tabCancel = nil
	return nil
}

// Shutdown tears down the browser connection entirely. The handle is not
// usable afterwards.
func (c *Chrome) Shutdown() {
	if c.tabCancel != nil {
		c.tabCancel()
		c.tabCtx = nil
		c.tabCancel = nil
	}
	c.browserStop()
	c.allocCancel()
}

func (c *Chrome) profileSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if !c.profile.DisableScripts {
			return nil
		}
		if err := emulation.SetScriptExecutionDisabled(true).Do(ctx); err != nil {
			return fmt.Errorf("disable scripts: %w", err)
		}
		return nil
	})
}

// run executes actions against the current tab, bounded by the handle timeout
// and canceled early if the caller's context finishes first. Elements held
// across a Close reach here with no tab; that is a fault, not a panic.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if c.tabCtx == nil {
		return errors.New("no open page")
	}
	taskCtx, cancel := context.WithTimeout(c.tabCtx, c.timeout)
	defer cancel()

	stop := forwardCancel(ctx, cancel)
	defer stop()

	return chromedp.Run(taskCtx, actions...)
}

type chromeElement struct {
	chrome *Chrome
	nodeID cdp.NodeID
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.chrome.run(ctx, chromedp.Text([]cdp.NodeID{e.nodeID}, &text, chromedp.ByNodeID))
	if err != nil {
		return "", &Error{Op: "find", Err: err}
	}
	return text, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	err := e.chrome.run(ctx, chromedp.AttributeValue([]cdp.NodeID{e.nodeID}, name, &value, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", &Error{Op: "find", Err: err}
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
