// Package catalogclient talks to the Catalog Service over HTTP on behalf
// of the register.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	appcheckout "github.com/grocerypos/backend/internal/application/checkout"
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20
	uploadField     = "image"
)

// ErrCatalogUnavailable is returned when the Catalog Service cannot be reached
var ErrCatalogUnavailable = shared.NewDomainError("CATALOG_UNAVAILABLE", "Cannot reach the product catalog")

// Client is an HTTP CatalogGateway
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the Catalog Service at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalogclient: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the Catalog Service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProducts returns the whole catalog, newest first
func (c *Client) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	return c.SearchProducts(ctx, appcatalog.ProductListFilter{})
}

// SearchProducts lists products filtered by category and search term on the server
func (c *Client) SearchProducts(ctx context.Context, filter appcatalog.ProductListFilter) ([]*catalog.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var responses []appcatalog.ProductResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", q, nil, &responses); err != nil {
		return nil, err
	}

	products := make([]*catalog.Product, 0, len(responses))
	for _, r := range responses {
		p, err := r.ToDomain()
		if err != nil {
			c.logger.Warn("skipping invalid product from catalog", zap.Int64("product_id", r.ID), zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// LookupProduct resolves a barcode or product id
func (c *Client) LookupProduct(ctx context.Context, code string) (*catalog.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, appcatalog.ErrProductNotFound
	}

	var resp appcatalog.ProductResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/lookup", url.Values{"code": {code}}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain()
}

// CreateProduct adds a product and returns its id
func (c *Client) CreateProduct(ctx context.Context, req appcatalog.ProductRequest) (int64, error) {
	var resp appcatalog.CreateProductResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateProduct replaces a product's fields
func (c *Client) UpdateProduct(ctx context.Context, id int64, req appcatalog.ProductRequest) error {
	path := "/api/products/" + strconv.FormatInt(id, 10)
	return c.doJSON(ctx, http.MethodPut, path, nil, req, nil)
}

// UploadImage posts an image as the multipart "image" field and returns
// the path the catalog serves it from
func (c *Client) UploadImage(ctx context.Context, req *appcatalog.UploadImageRequest) (string, error) {
	if req == nil || req.Body == nil || req.Filename == "" {
		return "", appcatalog.ErrNoFileUploaded
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(req.Filename))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		uploadField, escapeQuotes(filepath.Base(req.Filename))))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("catalogclient: failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, req.Body); err != nil {
		return "", fmt.Errorf("catalogclient: failed to read %s: %w", req.Filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("catalogclient: failed to build upload: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/api/upload", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var resp appcatalog.UploadImageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("catalogclient: failed to decode upload response: %w", err)
	}
	return resp.URL, nil
}

// DeleteProduct removes a product from the catalog
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	path := "/api/products/" + strconv.FormatInt(id, 10)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// BarcodeLabel downloads the product's printable barcode label PNG
func (c *Client) BarcodeLabel(ctx context.Context, id int64) ([]byte, error) {
	path := "/api/products/" + strconv.FormatInt(id, 10) + "/barcode.png"
	return c.do(ctx, http.MethodGet, path, nil, nil, "")
}

// doJSON sends body as JSON and decodes the response into out when non-nil
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("catalogclient: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, path, query, reader, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("catalogclient: failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (respBody []byte, err error) {
	ctx, span := telemetry.StartClientSpan(ctx, "catalog "+method+" "+path,
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("catalogclient: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("catalogclient: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

// errorBody mirrors the server's {error, code} error response
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// decodeError turns an error response into a domain error the register can show
func decodeError(status int, data []byte) error {
	var body errorBody
	_ = json.Unmarshal(data, &body)

	if status == http.StatusNotFound {
		if body.Code == "" || body.Code == appcatalog.ErrProductNotFound.Code {
			return appcatalog.ErrProductNotFound
		}
	}
	if body.Code != "" && body.Error != "" {
		return shared.NewDomainError(body.Code, body.Error)
	}
	if body.Error != "" {
		return shared.NewDomainError("HTTP_"+strconv.Itoa(status), body.Error)
	}
	return shared.NewDomainError("HTTP_"+strconv.Itoa(status), http.StatusText(status))
}

// IsUnavailable reports whether err means the service could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

var (
	_ appcheckout.CatalogGateway = (*Client)(nil)
	_ appcheckout.CatalogEditor  = (*Client)(nil)
)
