package fileinfo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/replicate/pfetch/pkg/client"
	"github.com/replicate/pfetch/pkg/logging"
)

var epochMillisRegexp = regexp.MustCompile(`^\d+$`)

// ResolveRemote queries rawURL for its size, modification time and filename. A HEAD request is
// issued first; servers that answer 405 are asked again with a GET whose body is closed unread.
// knownSize, if not nil, is used when the server does not report Content-Length. A non-2xx final
// status is not an error: the returned info has Exists set to false.
func ResolveRemote(ctx context.Context, httpClient client.HTTPClient, rawURL string, knownSize *int64) (RemoteFileInfo, error) {
	logger := logging.FromContext(ctx)
	info := RemoteFileInfo{URL: rawURL, Filename: filenameFromURL(rawURL)}

	resp, err := doMetadataRequest(ctx, httpClient, http.MethodHead, rawURL)
	if err != nil {
		return info, err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		logger.Debug().Str("url", rawURL).Msg("HEAD not allowed, retrying with GET")
		resp, err = doMetadataRequest(ctx, httpClient, http.MethodGet, rawURL)
		if err != nil {
			return info, err
		}
	}
	// only the headers are needed, closing here avoids pulling a GET body
	defer resp.Body.Close()

	if resp.Request != nil && resp.Request.URL != nil {
		if trueURL := resp.Request.URL.String(); trueURL != rawURL {
			logger.Info().Str("url", rawURL).Str("redirect_url", trueURL).Msg("Redirect")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Msg("Remote file not found")
		return info, nil
	}
	info.Exists = true

	if size, ok := parseContentLength(resp.Header.Get("Content-Length")); ok {
		info.Size = &size
	} else if knownSize != nil {
		size := *knownSize
		info.Size = &size
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		lastModified, err := ParseLastModified(lm)
		if err != nil {
			return info, fmt.Errorf("error parsing Last-Modified header %q for %s: %w", lm, rawURL, err)
		}
		info.LastModified = &lastModified
	}

	if name, ok := FilenameFromContentDisposition(resp.Header.Get("Content-Disposition")); ok {
		info.Filename = name
	}
	return info, nil
}

func doMetadataRequest(ctx context.Context, httpClient client.HTTPClient, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request for %s: %w", method, rawURL, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing %s request for %s: %w", method, rawURL, err)
	}
	return resp, nil
}

func parseContentLength(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size < 0 {
		return 0, false
	}
	return size, true
}

// ParseLastModified accepts either a bare integer, interpreted as milliseconds since the Unix
// epoch, or an HTTP date in RFC 1123, RFC 850 or asctime form. The result is in UTC.
func ParseLastModified(value string) (time.Time, error) {
	if epochMillisRegexp.MatchString(value) {
		millis, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(millis).UTC(), nil
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// filenameFromURL returns the percent-decoded last path segment of rawURL. Separators produced by
// decoding, such as %2F, are stripped like those in a Content-Disposition filename.
func filenameFromURL(rawURL string) string {
	segment := path.Base(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		escaped := u.EscapedPath()
		segment = escaped[strings.LastIndex(escaped, "/")+1:]
		if name, err := url.PathUnescape(segment); err == nil {
			segment = name
		}
	}
	name, _ := sanitizeFilename(segment)
	return name
}
