package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Page is a fetched document. A non-2xx status is not an error; the body is
// still returned so the caller can record what the server sent.
type Page struct {
	HTTPStatus int
	HTML       string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

const userAgent = "blog-writer-trainer/1.0"

// HTTPFetcher downloads pages with a plain HTTP client.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPFetcher(timeout time.Duration, maxBytes int) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: int64(maxBytes),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}
	return Page{HTTPStatus: resp.StatusCode, HTML: string(body)}, nil
}

// ChromeFetcher renders pages in headless Chrome so client-side rendered
// blogs yield their text. Each fetch runs in its own browser process.
type ChromeFetcher struct {
	timeout  time.Duration
	maxBytes int
}

func NewChromeFetcher(timeout time.Duration, maxBytes int) *ChromeFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &ChromeFetcher{timeout: timeout, maxBytes: maxBytes}
}

func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var (
		mu     sync.Mutex
		status int
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		if status == 0 {
			status = int(resp.Response.Status)
		}
		mu.Unlock()
	})

	var document string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &document),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Page{}, fmt.Errorf("render %s: timed out after %s", url, f.timeout)
		}
		return Page{}, fmt.Errorf("render %s: %w", url, err)
	}
	mu.Lock()
	httpStatus := status
	mu.Unlock()
	if httpStatus == 0 {
		httpStatus = http.StatusOK
	}
	if len(document) > f.maxBytes {
		document = document[:f.maxBytes]
	}
	return Page{HTTPStatus: httpStatus, HTML: document}, nil
}

// ValidURL reports whether raw uses an http or https scheme.
func ValidURL(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
