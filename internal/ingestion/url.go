package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgent is sent with every page fetch.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ProofdIn/1.0)"

// maxPageBytes caps how much of a response body is read.
const maxPageBytes = 5 << 20

// FetchError represents an error while fetching or reading a job page.
type FetchError struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ErrForbiddenAddress is the cause of a FetchError for pages on loopback, private,
// link-local, multicast or unspecified addresses.
var ErrForbiddenAddress = errors.New("destination address not allowed")

// maxRedirects bounds how many redirects a single fetch follows.
const maxRedirects = 5

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// Fetcher downloads job pages and extracts their readable text.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	allowPrivate bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// AllowPrivateNetworks lets the fetcher reach loopback and private addresses.
func AllowPrivateNetworks() FetcherOption {
	return func(f *Fetcher) { f.allowPrivate = true }
}

// NewFetcher returns a Fetcher with the given request timeout. Unless AllowPrivateNetworks
// is given, every connection, including those made for redirects, is checked against
// the resolved IP address at dial time.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &Fetcher{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !f.allowPrivate {
		dialer.Control = guardDial
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	// A proxy would be the only address the dial check sees.
	transport.Proxy = nil

	f.client = &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return f
}

// guardDial runs after DNS resolution with the literal address being dialled.
func guardDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || forbiddenIP(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
	}
	return nil
}

func forbiddenIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip)
}

// FetchText downloads rawURL and returns the cleaned text of its main content.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrForbiddenAddress) {
			return "", &FetchError{URL: rawURL, Message: "destination address not allowed", Cause: ErrForbiddenAddress}
		}
		return "", &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		return CleanText(string(body)), nil
	}

	text, err := ExtractMainText(string(body), platformFor(parsed.Host))
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "content extraction failed", Cause: err}
	}
	if text == "" {
		return "", &FetchError{URL: rawURL, Message: "page has no readable text"}
	}
	return text, nil
}

// ExtractMainText parses HTML, removes navigation, scripts, forms and other noise, and
// returns the cleaned text of the first element matching the platform's content selectors,
// falling back to the body.
func ExtractMainText(html string, p Platform) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(strings.Join(noiseSelectors(p), ", ")).Remove()

	var main *goquery.Selection
	for _, selector := range contentSelectors(p) {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	// Block elements become line breaks so list items and paragraphs stay separate
	main.Find("br").ReplaceWithHtml("\n")
	main.Find("p, li, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(main.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return CleanText(strings.Join(kept, "\n")), nil
}
