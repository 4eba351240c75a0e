package processr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type itemKind int

const (
	itemFile itemKind = iota
	itemLink
	itemReader
)

// Item identifies what gets submitted for processing. Construct one with
// FileItem, LinkItem, or ReaderItem; the variant is decided by the caller
// rather than sniffed at submission time.
type Item struct {
	kind   itemKind
	path   string
	link   string
	name   string
	reader io.Reader
}

// FileItem submits the file at path. The file is opened when the submission
// runs; an unreadable path fails with ErrStreamOpen before any network call.
func FileItem(path string) Item {
	return Item{kind: itemFile, path: path}
}

// LinkItem submits a URL for the server to fetch.
func LinkItem(link string) Item {
	return Item{kind: itemLink, link: link}
}

// ReaderItem submits the contents of r under the given filename.
func ReaderItem(name string, r io.Reader) Item {
	return Item{kind: itemReader, name: name, reader: r}
}

// ClassifyString maps a raw string to a link when it carries an HTTP(S)
// scheme and to a local file path otherwise.
func ClassifyString(value string) Item {
	trimmed := strings.TrimSpace(value)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return LinkItem(trimmed)
	}
	return FileItem(trimmed)
}

// SubmitOptions selects the artifacts to derive from the submitted item. Size
// specs have the form "WxH", "Wx", or "xH".
type SubmitOptions struct {
	ThumbnailSizes    []string
	ImagePreviewSizes []string
}

// normalizeSizes joins size specs into the single comma-separated string the
// API expects. Empty and absent lists return "" so the field can be omitted
// entirely.
func normalizeSizes(sizes []string) string {
	cleaned := make([]string, 0, len(sizes))
	for _, size := range sizes {
		if size = strings.TrimSpace(size); size != "" {
			cleaned = append(cleaned, size)
		}
	}
	return strings.Join(cleaned, ",")
}

// Submit creates a processing resource for the item with one POST /resources
// call. A link rejected because the server could not reach it is fetched by
// the client and resubmitted once as a stream; every other error is terminal.
func (c *Client) Submit(ctx context.Context, item Item, opts SubmitOptions) (*Resource, error) {
	resource, err := c.submitOnce(ctx, item, opts)
	if err != nil && item.kind == itemLink && IsLinkUnreachable(err) {
		if c.logger != nil {
			c.logger.Debug("link unreachable by server, retrying as stream", "link", item.link)
		}
		return c.resubmitLinkAsStream(ctx, item.link, opts)
	}
	return resource, err
}

func (c *Client) submitOnce(ctx context.Context, item Item, opts SubmitOptions) (*Resource, error) {
	var (
		req *http.Request
		err error
	)
	switch item.kind {
	case itemLink:
		req, err = c.newLinkRequest(ctx, item.link, opts)
	case itemFile:
		file, openErr := os.Open(item.path)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrStreamOpen, openErr)
		}
		defer file.Close()
		req, err = c.newStreamRequest(ctx, filepath.Base(item.path), file, opts)
	case itemReader:
		req, err = c.newStreamRequest(ctx, item.name, item.reader, opts)
	default:
		return nil, fmt.Errorf("unknown item kind %d", item.kind)
	}
	if err != nil {
		return nil, err
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resource Resource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, fmt.Errorf("decode created resource: %w", err)
	}
	return &resource, nil
}

// resubmitLinkAsStream fetches the link with the caller's own connectivity and
// submits the content as a file. Used when the link lives on a network the
// server cannot reach. Failures here do not trigger another retry.
func (c *Client) resubmitLinkAsStream(ctx context.Context, link string, opts SubmitOptions) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build link fetch request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch link: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: fetch link: http %d", ErrStreamOpen, resp.StatusCode)
	}
	return c.submitOnce(ctx, ReaderItem(linkFilename(link), resp.Body), opts)
}

func linkFilename(link string) string {
	parsed, err := url.Parse(link)
	if err == nil {
		if base := path.Base(parsed.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	return "link"
}

func (c *Client) newLinkRequest(ctx context.Context, link string, opts SubmitOptions) (*http.Request, error) {
	form := url.Values{}
	form.Set("link", link)
	if sizes := normalizeSizes(opts.ThumbnailSizes); sizes != "" {
		form.Set("thumbnailSizes", sizes)
	}
	if sizes := normalizeSizes(opts.ImagePreviewSizes); sizes != "" {
		form.Set("imagePreviewSizes", sizes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/resources", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// newStreamRequest builds a binary submission with a streaming multipart
// body: the payload is piped into the request as it is read rather than
// buffered, so arbitrarily large files never sit in memory. Form fields are
// written before the file part: the server begins processing on the first
// byte of the binary payload.
func (c *Client) newStreamRequest(ctx context.Context, filename string, reader io.Reader, opts SubmitOptions) (*http.Request, error) {
	if filename = strings.TrimSpace(filename); filename == "" {
		filename = "upload"
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(writer, filename, reader, opts))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/resources", pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func writeMultipart(writer *multipart.Writer, filename string, reader io.Reader, opts SubmitOptions) error {
	if sizes := normalizeSizes(opts.ThumbnailSizes); sizes != "" {
		if err := writer.WriteField("thumbnailSizes", sizes); err != nil {
			return fmt.Errorf("write thumbnailSizes field: %w", err)
		}
	}
	if sizes := normalizeSizes(opts.ImagePreviewSizes); sizes != "" {
		if err := writer.WriteField("imagePreviewSizes", sizes); err != nil {
			return fmt.Errorf("write imagePreviewSizes field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamRead, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}
	return nil
}
