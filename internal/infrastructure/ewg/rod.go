package ewg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/infrastructure/observability"
)

// RodOptions configures the headless Chrome instance
type RodOptions struct {
	Bin               string // empty lets the launcher find or download Chrome
	ControlURL        string // attach to an existing DevTools endpoint instead of launching
	Headless          bool
	NavigationTimeout time.Duration
}

// RodBrowser owns one shared Chrome process and opens an incognito context per page
type RodBrowser struct {
	opts    RodOptions
	mu      sync.Mutex
	browser *rod.Browser
	cleanup func() // stops the Chrome process this browser launched, if any
	launch  func(RodOptions) (string, func(), error)
	dial    func(controlURL string) (*rod.Browser, error)
	logger  zerolog.Logger
}

// NewRodBrowser creates a browser that is started lazily on first use
func NewRodBrowser(opts RodOptions) *RodBrowser {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	return &RodBrowser{
		opts:   opts,
		launch: launchChrome,
		dial:   dialChrome,
		logger: observability.Component("browser"),
	}
}

func launchChrome(opts RodOptions) (string, func(), error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set(flags.NoSandbox).
		Set(flags.Flag("disable-dev-shm-usage"))
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	u, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return "", nil, err
	}
	return u, l.Cleanup, nil
}

func dialChrome(controlURL string) (*rod.Browser, error) {
	// The shared browser outlives any single request
	browser := rod.New().ControlURL(controlURL).Context(context.Background())
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

func (b *RodBrowser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return b.browser, nil
		}
		b.logger.Warn().Msg("stale browser connection detected, reconnecting")
		_ = b.browser.Close()
		b.browser = nil
	}

	// A previous process is either stale or never got a connection
	b.stopProcess()

	controlURL := b.opts.ControlURL
	if controlURL == "" {
		u, cleanup, err := b.launch(b.opts)
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		b.cleanup = cleanup
	}

	browser, err := b.dial(controlURL)
	if err != nil {
		b.stopProcess()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	b.logger.Info().Str("control_url", controlURL).Msg("browser connected")
	b.browser = browser
	return browser, nil
}

func (b *RodBrowser) stopProcess() {
	if b.cleanup != nil {
		b.cleanup()
		b.cleanup = nil
	}
}

// OpenPage returns a blank page in a fresh incognito context bound to ctx
func (b *RodBrowser) OpenPage(ctx context.Context) (Page, func(), error) {
	browser, err := b.connect()
	if err != nil {
		return nil, nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, nil, fmt.Errorf("create page: %w", err)
	}

	release := sync.OnceFunc(func() {
		if err := page.Close(); err != nil {
			b.logger.Debug().Err(err).Msg("close page")
		}
		if err := incognito.Close(); err != nil {
			b.logger.Debug().Err(err).Msg("close incognito context")
		}
	})

	return &rodPage{page: page, ctx: ctx, navTimeout: b.opts.NavigationTimeout}, release, nil
}

// Close shuts down the shared browser and any process it launched
func (b *RodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	b.stopProcess()
	return err
}

type rodPage struct {
	page       *rod.Page
	ctx        context.Context
	navTimeout time.Duration
}

func (p *rodPage) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.navTimeout)
	defer cancel()
	return p.page.Context(ctx).Navigate(url)
}

func (p *rodPage) WaitElement(selector string, timeout time.Duration) (Element, error) {
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, err
	}
	return &rodElement{el: el.Context(p.ctx)}, nil
}

func (p *rodPage) Elements(selector string) ([]Element, error) {
	els, err := p.page.Context(p.ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (*string, error) {
	return e.el.Attribute(name)
}

func (e *rodElement) InnerHTML() (string, error) {
	prop, err := e.el.Property("innerHTML")
	if err != nil {
		return "", err
	}
	return prop.Str(), nil
}

func (e *rodElement) Elements(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

func (e *rodElement) Next() (Element, error) {
	next, err := e.el.Next()
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, errNoSibling
		}
		return nil, err
	}
	return &rodElement{el: next}, nil
}

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out
}
