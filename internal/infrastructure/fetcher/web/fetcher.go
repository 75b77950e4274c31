// Package web fetches whitelisted pages and reduces them to clean plain
// text. HTML goes through readability-style extraction, PDFs through the
// pdf text extractor; the pipeline never sees markup.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/extractor/pdftext"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/resilience"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// minExtractedChars rejects pages whose extraction produced nothing
	// useful, typically bot walls or empty templates.
	minExtractedChars = 100

	maxResponseBytes = 20 << 20
)

type Fetcher struct {
	httpClient *http.Client
	rateLimit  rate.Limit
	executor   *resilience.Executor

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher builds a fetcher that makes at most ratePerSecond requests
// per second to each host. Official sites are small; politeness matters
// more than throughput.
func NewFetcher(timeout time.Duration, ratePerSecond float64, executor *resilience.Executor) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		rateLimit:  rate.Limit(ratePerSecond),
		executor:   executor,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(parsed.Hostname())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.rateLimit, 1)
		f.limiters[host] = l
	}
	return l
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.FetchedPage, error) {
	if err := f.limiterFor(url).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var page *domain.FetchedPage
	fn := func(callCtx context.Context) error {
		p, err := f.fetchOnce(callCtx, url)
		if err != nil {
			return err
		}
		page = p
		return nil
	}

	var err error
	if f.executor != nil {
		err = f.executor.Execute(ctx, "fetch", fn, classifyFetchError)
	} else {
		err = fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*domain.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &fetchStatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	var title, text string
	contentType := resp.Header.Get("Content-Type")
	if isPDF(contentType, url) {
		text, err = pdftext.Extract(body)
		if err != nil {
			return nil, fmt.Errorf("extract pdf %s: %w", url, err)
		}
	} else {
		title, text, err = ExtractArticle(body)
		if err != nil {
			return nil, fmt.Errorf("extract html %s: %w", url, err)
		}
	}

	text = CleanText(text)
	if len([]rune(text)) < minExtractedChars {
		return nil, domain.WrapError(domain.ErrEmptyExtraction, "fetch", fmt.Errorf("%s yielded %d chars", url, len([]rune(text))))
	}

	return &domain.FetchedPage{
		URL:       url,
		Title:     title,
		Text:      text,
		FetchDate: time.Now().UTC(),
	}, nil
}

func isPDF(contentType, url string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.SplitN(url, "?", 2)[0]), ".pdf")
}

type fetchStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *fetchStatusError) Error() string {
	return fmt.Sprintf("fetch %s status: %s", e.URL, e.Status)
}

func classifyFetchError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{}
	}
	if domain.IsKind(err, domain.ErrEmptyExtraction) {
		return resilience.Verdict{}
	}

	var statusErr *fetchStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.Verdict{Retryable: true, RecordFailure: true}
		default:
			return resilience.Verdict{}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}
	return resilience.Verdict{RecordFailure: true}
}
