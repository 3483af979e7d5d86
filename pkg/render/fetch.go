package render

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/httputil"
	"github.com/jmswint/plantbeam/pkg/observability"
)

const (
	// maxErrorExcerpt bounds how much of an HTML error page is carried
	// into the diagnostic message.
	maxErrorExcerpt = 500

	// maxBodyBytes caps response reads. Rendered diagrams are far smaller
	// than this; the cap guards against a misbehaving server.
	maxBodyBytes = 10 << 20

	// fetchAttempts and fetchRetryDelay govern retries of timed-out
	// fetches. Only timeouts retry.
	fetchAttempts   = 2
	fetchRetryDelay = 500 * time.Millisecond
)

func (r *Renderer) fetch(ctx context.Context, name, rawURL string) ([]byte, string, error) {
	host, path := splitURL(rawURL)
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "build request for %s", name)
	}

	// Timed-out requests get retried; a refused connection or an HTTP
	// error status is answered once and reported as-is.
	var resp *http.Response
	doErr := httputil.Retry(ctx, fetchAttempts, fetchRetryDelay, func() error {
		res, err := r.client.Do(req)
		if err != nil {
			var ne net.Error
			if stderrors.As(err, &ne) && ne.Timeout() {
				return &httputil.RetryableError{Err: err}
			}
			return err
		}
		resp = res
		return nil
	})
	if doErr != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, doErr)
		code := errors.ErrCodeServerUnreachable
		var ne net.Error
		if stderrors.As(doErr, &ne) && ne.Timeout() {
			code = errors.ErrCodeTimeout
		}
		return nil, "", errors.Wrap(code, doErr, "fetch diagram from %s", name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "read response from %s", name)
	}

	contentType := resp.Header.Get("Content-Type")
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, contentType, errors.New(errors.ErrCodeRenderFailed,
			"server %s returned status %d: %s", name, resp.StatusCode, errorExcerpt(body, contentType))
	}
	if !strings.Contains(contentType, "image") {
		return nil, contentType, errors.New(errors.ErrCodeNonImageContent,
			"server %s returned %s instead of an image: %s", name, contentType, errorExcerpt(body, contentType))
	}
	return body, contentType, nil
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, ""
	}
	return u.Host, u.Path
}

var (
	htmlBodyRe = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)
)

// errorExcerpt pulls readable text out of an error response. PlantUML
// servers answer syntax errors with HTML pages; the useful diagnostic is
// the body text, not the markup.
func errorExcerpt(body []byte, contentType string) string {
	text := string(body)
	if strings.Contains(contentType, "html") || strings.Contains(text, "<body") {
		if m := htmlBodyRe.FindStringSubmatch(text); m != nil {
			text = m[1]
		}
		text = htmlTagRe.ReplaceAllString(text, " ")
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxErrorExcerpt {
		text = text[:maxErrorExcerpt] + "..."
	}
	return text
}
