package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/infrastructure/cache"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/grocerypos/backend/internal/infrastructure/persistence"
	"github.com/grocerypos/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	engine    *gin.Engine
	db        *persistence.Database
	uploadDir string
}

func testConfig(uploadDir string) *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 20,
			CORSAllowOrigins: []string{"http://register.local"},
		},
		Storage: config.StorageConfig{
			Type:          config.StorageLocal,
			LocalDir:      uploadDir,
			PublicPrefix:  "/uploads",
			MaxUploadSize: catalogapp.DefaultMaxImageSize,
		},
		Idempotency: config.IdempotencyConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
	}
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		SQLitePath:  ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	uploadDir := t.TempDir()
	cfg := testConfig(uploadDir)
	for _, m := range mutate {
		m(cfg)
	}

	imageStore, err := storage.NewLocalImageStore(uploadDir, cfg.Storage.PublicPrefix, zap.NewNop())
	require.NoError(t, err)

	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	engine, err := NewEngine(ctx, Dependencies{
		Config:           cfg,
		ProductService:   catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB)),
		ImageService:     catalogapp.NewImageService(imageStore, catalogapp.DefaultImageServiceConfig(), nil),
		ImageStore:       imageStore,
		IdempotencyStore: idem,
		DB:               db,
	})
	require.NoError(t, err)

	return &testServer{engine: engine, db: db, uploadDir: uploadDir}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) create(t *testing.T, body string) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp catalogapp.CreateProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Product created successfully", resp.Message)
	return resp.ID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error, body.Code
}

func TestProductCRUD(t *testing.T) {
	s := newTestServer(t)

	riceID := s.create(t, `{"barcode":"8850001","name":"Jasmine Rice","price":189,"category":"Food"}`)
	milkID := s.create(t, `{"barcode":"","name":"Milk","price":25.5,"category":"Drinks","image":""}`)
	assert.Greater(t, milkID, riceID)

	w := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	// newest first, empty strings stored as null, price numeric
	assert.Equal(t, "Milk", list[0]["name"])
	assert.Nil(t, list[0]["barcode"])
	assert.Nil(t, list[0]["image"])
	assert.Equal(t, 25.5, list[0]["price"])
	assert.Equal(t, "8850001", list[1]["barcode"])

	w = s.do(t, http.MethodPut, "/api/products/"+itoa(milkID), `{"name":"Fresh Milk","price":27,"category":"Drinks","barcode":"8850002"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Product updated successfully"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/products/"+itoa(milkID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+itoa(milkID)+`,"barcode":"8850002","name":"Fresh Milk","price":27,"category":"Drinks","image":null}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/products/"+itoa(riceID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/products/"+itoa(riceID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	msg, code := decodeError(t, w)
	assert.Equal(t, "Product not found", msg)
	assert.Equal(t, "PRODUCT_NOT_FOUND", code)
}

func TestProductList_Empty(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProductList_Filter(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"name":"Jasmine Rice","price":189,"category":"Food","barcode":"8850001"}`)
	s.create(t, `{"name":"Milk","price":25,"category":"Drinks"}`)
	s.create(t, `{"name":"Rice Crackers","price":20,"category":"Snacks"}`)

	tests := []struct {
		query string
		want  []string
	}{
		{"?category=Food", []string{"Jasmine Rice"}},
		{"?search=rice", []string{"Rice Crackers", "Jasmine Rice"}},
		{"?search=88500", []string{"Jasmine Rice"}},
		{"?category=Snacks&search=rice", []string{"Rice Crackers"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/products"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			var list []catalogapp.ProductResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
			names := make([]string, len(list))
			for i, p := range list {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProductCreate_Errors(t *testing.T) {
	s := newTestServer(t)
	s.create(t, `{"name":"Jasmine Rice","price":189,"category":"Food","barcode":"8850001"}`)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing name", `{"price":10,"category":"Food"}`, http.StatusBadRequest, "Missing required fields"},
		{"missing price", `{"name":"Eggs","category":"Food"}`, http.StatusBadRequest, "Missing required fields"},
		{"missing category", `{"name":"Eggs","price":10}`, http.StatusBadRequest, "Missing required fields"},
		{"malformed json", `{"name":`, http.StatusBadRequest, "Missing required fields"},
		{"duplicate barcode", `{"name":"Other Rice","price":99,"category":"Food","barcode":"8850001"}`, http.StatusInternalServerError, "Database error, perhaps duplicate barcode?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			msg, _ := decodeError(t, w)
			assert.Equal(t, tt.wantError, msg)
		})
	}
}

func TestProductCreate_ThaiName(t *testing.T) {
	s := newTestServer(t)
	name := strings.Repeat("ข้าวหอมมะลิ", 8) // 88 characters, 264 bytes

	id := s.create(t, `{"name":"`+name+`","price":10,"category":"อาหาร"}`)

	w := s.do(t, http.MethodGet, "/api/products/"+itoa(id), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got catalogapp.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, name, got.Name)
	assert.Equal(t, "อาหาร", got.Category)
}

func TestProductUpdate_Errors(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, `{"name":"Eggs","price":4.5,"category":"Food"}`)

	w := s.do(t, http.MethodPut, "/api/products/abc", `{"name":"Eggs","price":5,"category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/products/"+itoa(id), `{"name":"Eggs"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/products/9999", `{"name":"Eggs","price":5,"category":"Food"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	msg, _ := decodeError(t, w)
	assert.Equal(t, "Product not found", msg)
}

func TestProductLookup(t *testing.T) {
	s := newTestServer(t)
	riceID := s.create(t, `{"name":"Jasmine Rice","price":189,"category":"Food","barcode":"8850001"}`)
	eggsID := s.create(t, `{"name":"Eggs","price":4.5,"category":"Food"}`)

	w := s.do(t, http.MethodGet, "/api/products/lookup?code=8850001", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":`+itoa(riceID))

	w = s.do(t, http.MethodGet, "/api/products/lookup?code="+itoa(eggsID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Eggs"`)

	w = s.do(t, http.MethodGet, "/api/products/lookup?code=nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/products/lookup", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductBarcodeLabel(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, `{"name":"Eggs","price":4.5,"category":"Food"}`)

	w := s.do(t, http.MethodGet, "/api/products/"+itoa(id)+"/barcode.png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)

	w = s.do(t, http.MethodGet, "/api/products/9999/barcode.png", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductCreate_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"Eggs","price":4.5,"category":"Food"}`

	first := s.do(t, http.MethodPost, "/api/products", body, "Idempotency-Key", "abc-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := s.do(t, http.MethodPost, "/api/products", body, "Idempotency-Key", "abc-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := s.do(t, http.MethodGet, "/api/products", "")
	var list []catalogapp.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("other", "x"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	pngData := []byte("\x89PNG\r\n\x1a\nfake")

	body, ct := multipartBody(t, "image", "milk.png", "image/png", pngData)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp catalogapp.UploadImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.URL, "/uploads/product_"), resp.URL)
	assert.True(t, strings.HasSuffix(resp.URL, ".png"), resp.URL)

	stored, err := os.ReadFile(filepath.Join(s.uploadDir, filepath.Base(resp.URL)))
	require.NoError(t, err)
	assert.Equal(t, pngData, stored)

	// the stored file is served back statically
	w = s.do(t, http.MethodGet, resp.URL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngData, w.Body.Bytes())

	w = s.do(t, http.MethodGet, "/uploads/missing.png", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		field      string
		filename   string
		ctype      string
		data       []byte
		wantStatus int
		wantError  string
	}{
		{"no file", "", "", "", nil, http.StatusBadRequest, "No file uploaded"},
		{"svg rejected", "image", "logo.svg", "image/svg+xml", []byte("<svg/>"), http.StatusBadRequest, "Only image files are allowed"},
		{"mime mismatch", "image", "photo.png", "text/plain", []byte("x"), http.StatusBadRequest, "Only image files are allowed"},
		{"too large", "image", "big.jpg", "image/jpeg", make([]byte, catalogapp.DefaultMaxImageSize+1), http.StatusRequestEntityTooLarge, "File too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.field, tt.filename, tt.ctype, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			s.engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			msg, _ := decodeError(t, w)
			assert.Equal(t, tt.wantError, msg)
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, s.db.Close())
	w = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSAndRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodOptions, "/api/products", "", "Origin", "http://register.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://register.local", w.Header().Get("Access-Control-Allow-Origin"))

	w = s.do(t, http.MethodGet, "/api/products", "", "Origin", "http://evil.local", "X-Request-ID", "req-42")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.MaxBodySize = 32
	})

	w := s.do(t, http.MethodPost, "/api/products", `{"name":"`+strings.Repeat("x", 64)+`","price":1,"category":"Food"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	_, code := decodeError(t, w)
	assert.Equal(t, "REQUEST_TOO_LARGE", code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitEnabled = true
		cfg.HTTP.RateLimitRequests = 2
		cfg.HTTP.RateLimitWindow = time.Minute
	})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/products", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/products", "").Code)
	w := s.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

type fakeLinker struct {
	catalogapp.ImageStore
	err error
}

func (f fakeLinker) DownloadURL(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.example.com/" + name + "?sig=1", nil
}

func TestRegisterUploads_Linker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	registerUploads(engine, config.StorageConfig{PublicPrefix: "/uploads"}, fakeLinker{}, zap.NewNop())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/product_1.png", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://bucket.example.com/product_1.png?sig=1", w.Header().Get("Location"))

	engine = gin.New()
	registerUploads(engine, config.StorageConfig{PublicPrefix: "/uploads"}, fakeLinker{err: errors.New("denied")}, zap.NewNop())
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/product_1.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
