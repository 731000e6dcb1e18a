package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/extract"
	"github.com/aoperat/centumbob/internal/ingest"
	"github.com/aoperat/centumbob/internal/llm"
	"github.com/aoperat/centumbob/internal/ratelimit"
	menusvc "github.com/aoperat/centumbob/internal/services/menu"
	"github.com/aoperat/centumbob/internal/viewer"
)

type fakeExtractor struct {
	res     entity.ExtractionResult
	quality entity.Quality
	err     error
	gotMime string
}

func (f *fakeExtractor) ExtractWithQuality(_ context.Context, _ []byte, mimeType string) (entity.ExtractionResult, entity.Quality, error) {
	f.gotMime = mimeType
	return f.res, f.quality, f.err
}

type fakeMenus struct {
	records map[string]*entity.MenuRecord
	saveErr error
	saved   *entity.MenuSaveRequest
	upload  *menusvc.Upload
}

func key(r, d string) string { return r + "|" + d }

func (f *fakeMenus) Save(_ context.Context, req entity.MenuSaveRequest, img *menusvc.Upload) (*entity.MenuRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved, f.upload = &req, img
	rec := &entity.MenuRecord{ID: 1, RestaurantName: req.RestaurantName, DateRange: req.DateRange, Menus: req.Menus}
	if img != nil {
		rec.ImagePath = "a/b/image" + img.Ext
	}
	return rec, nil
}

func (f *fakeMenus) Load(_ context.Context, restaurant, dateRange string) (*entity.MenuRecord, error) {
	if rec, ok := f.records[key(restaurant, dateRange)]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("menu: %w", common.ErrNotFound)
}

func (f *fakeMenus) List(context.Context) ([]entity.MenuSummary, error) {
	out := []entity.MenuSummary{}
	for _, rec := range f.records {
		out = append(out, entity.MenuSummary{ID: rec.ID, RestaurantName: rec.RestaurantName, DateRange: rec.DateRange})
	}
	return out, nil
}

func (f *fakeMenus) Delete(_ context.Context, restaurant, dateRange string) error {
	if _, ok := f.records[key(restaurant, dateRange)]; !ok {
		return fmt.Errorf("menu: %w", common.ErrNotFound)
	}
	delete(f.records, key(restaurant, dateRange))
	return nil
}

type fakePublisher struct {
	res       viewer.PublishResult
	err       error
	published []byte
}

func (f *fakePublisher) Publish(context.Context) (viewer.PublishResult, error) { return f.res, f.err }

func (f *fakePublisher) LoadPublished() ([]byte, error) {
	if f.published == nil {
		return nil, fs.ErrNotExist
	}
	return f.published, nil
}

type fakeExporter struct{ restaurant string }

func (f *fakeExporter) ExportMenusXLSX(_ context.Context, restaurant string) ([]byte, error) {
	f.restaurant = restaurant
	return []byte("PK-xlsx"), nil
}

type fakeRestaurants struct {
	byName map[string]bool
	orders []entity.SortOrder
}

func (f *fakeRestaurants) List(_ context.Context, activeOnly bool) ([]entity.Restaurant, error) {
	return []entity.Restaurant{{ID: 1, Name: "A", IsActive: activeOnly}}, nil
}

func (f *fakeRestaurants) Create(_ context.Context, in entity.RestaurantInput) (*entity.Restaurant, error) {
	if f.byName[in.Name] {
		return nil, fmt.Errorf("restaurant %q: %w", in.Name, common.ErrConflict)
	}
	f.byName[in.Name] = true
	return &entity.Restaurant{ID: 2, Name: in.Name, IsActive: true}, nil
}

func (f *fakeRestaurants) Update(_ context.Context, id int64, patch entity.RestaurantPatch) (*entity.Restaurant, error) {
	if id != 1 {
		return nil, fmt.Errorf("restaurant %d: %w", id, common.ErrNotFound)
	}
	out := &entity.Restaurant{ID: id, Name: "A"}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	return out, nil
}

func (f *fakeRestaurants) Delete(_ context.Context, id int64) error {
	if id != 1 {
		return fmt.Errorf("restaurant %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (f *fakeRestaurants) Reorder(_ context.Context, orders []entity.SortOrder) error {
	f.orders = orders
	return nil
}

type fakeComplaints struct{ filter entity.ComplaintFilter }

func (f *fakeComplaints) Create(_ context.Context, in entity.ComplaintInput) (*entity.Complaint, error) {
	if in.UserEmail == "" {
		return nil, &common.ValidationError{Message: "validation failed", Fields: map[string]string{"user_email": "is required"}}
	}
	return &entity.Complaint{RestaurantName: in.RestaurantName, Status: "pending"}, nil
}

func (f *fakeComplaints) List(_ context.Context, filter entity.ComplaintFilter) ([]entity.Complaint, error) {
	f.filter = filter
	return []entity.Complaint{{Title: "t"}}, nil
}

func (f *fakeComplaints) Get(_ context.Context, id string) (*entity.Complaint, error) {
	return nil, fmt.Errorf("complaint %s: %w", id, common.ErrNotFound)
}

func (f *fakeComplaints) Update(_ context.Context, id string, upd entity.ComplaintUpdate) (*entity.Complaint, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("nothing to update: %w", common.ErrInvalidInput)
	}
	return &entity.Complaint{Status: *upd.Status}, nil
}

type fakeFetcher struct{ err error }

func (f fakeFetcher) Fetch(_ context.Context, rawURL string) (ingest.FetchedImage, error) {
	if f.err != nil {
		return ingest.FetchedImage{}, f.err
	}
	return ingest.FetchedImage{ContentType: "image/png", Ext: "png", Size: 3, DataURL: "data:image/png;base64,AAAA"}, nil
}

type testEnv struct {
	srv         *Server
	extractor   *fakeExtractor
	menus       *fakeMenus
	publisher   *fakePublisher
	exporter    *fakeExporter
	restaurants *fakeRestaurants
	complaints  *fakeComplaints
	uploads     string
}

func newEnv(t *testing.T, mutate func(*Deps)) *testEnv {
	t.Helper()
	env := &testEnv{
		extractor:   &fakeExtractor{res: entity.EmptyExtractionResult(), quality: entity.QualityGood},
		menus:       &fakeMenus{records: map[string]*entity.MenuRecord{}},
		publisher:   &fakePublisher{},
		exporter:    &fakeExporter{},
		restaurants: &fakeRestaurants{byName: map[string]bool{}},
		complaints:  &fakeComplaints{},
		uploads:     t.TempDir(),
	}
	deps := Deps{
		Extractor:   env.extractor,
		Menus:       env.menus,
		Images:      ingest.NewImageStore(env.uploads, nil),
		Publisher:   env.publisher,
		Exporter:    env.exporter,
		Restaurants: env.restaurants,
		Complaints:  env.complaints,
		Fetcher:     fakeFetcher{},
	}
	if mutate != nil {
		mutate(&deps)
	}
	env.srv = New(deps, nil)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func multipartRequest(t *testing.T, path string, fields map[string]string, image []byte, filename, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	env := newEnv(t, func(d *Deps) { d.Ping = func(context.Context) error { return nil } })
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)

	env = newEnv(t, func(d *Deps) { d.Ping = func(context.Context) error { return errors.New("down") } })
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestAnalyze(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		env := newEnv(t, nil)
		env.extractor.res.Price.Lunch = "7,000원"
		rec := env.do(multipartRequest(t, "/api/analyze", nil, []byte("img"), "board.png", "image/png"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "good", rec.Header().Get("X-Extraction-Quality"))
		assert.Equal(t, "image/png", env.extractor.gotMime)

		var res entity.ExtractionResult
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
		assert.Equal(t, "7,000원", res.Price.Lunch)
	})

	t.Run("missing image", func(t *testing.T) {
		env := newEnv(t, nil)
		rec := env.do(multipartRequest(t, "/api/analyze", map[string]string{"x": "y"}, nil, "", ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"bad format", fmt.Errorf("sniff: %w", extract.ErrImageFormat), http.StatusUnsupportedMediaType},
		{"no ocr", extract.ErrOCRUnavailable, http.StatusServiceUnavailable},
		{"no credentials", llm.ErrMissingCredentials, http.StatusServiceUnavailable},
		{"model failure", errors.New("vision model failed after 2 attempts"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newEnv(t, nil)
			env.extractor.err = tc.err
			rec := env.do(multipartRequest(t, "/api/analyze", nil, []byte("img"), "board.png", "image/png"))
			assert.Equal(t, tc.want, rec.Code)
			assert.False(t, decode(t, rec).Success)
		})
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	limiter := ratelimit.PerMinute(1)
	t.Cleanup(limiter.Stop)
	env := newEnv(t, func(d *Deps) { d.AnalyzeLimiter = limiter })

	first := env.do(multipartRequest(t, "/api/analyze", nil, []byte("img"), "a.png", "image/png"))
	assert.Equal(t, http.StatusOK, first.Code)

	second := env.do(multipartRequest(t, "/api/analyze", nil, []byte("img"), "a.png", "image/png"))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, second).Code)
}

func TestSave(t *testing.T) {
	env := newEnv(t, nil)
	data := `{"restaurantName":"센텀식당","dateRange":"1월 1주차","price":{"lunch":"7000"},"menus":{}}`

	rec := env.do(multipartRequest(t, "/api/save", map[string]string{"data": data}, []byte("img"), "menu.JPG", "image/jpeg"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, env.menus.upload)
	assert.Equal(t, ".JPG", env.menus.upload.Ext)
	assert.Equal(t, "센텀식당", env.menus.saved.RestaurantName)

	var body map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, "/api/images/path/a/b/image.JPG", body["imageUrl"])

	rec = env.do(multipartRequest(t, "/api/save", map[string]string{"data": data}, nil, "", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.menus.upload)
}

func TestSave_BadInput(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(multipartRequest(t, "/api/save", map[string]string{"other": "x"}, nil, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(multipartRequest(t, "/api/save", map[string]string{"data": "{"}, nil, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.menus.saveErr = &common.ValidationError{Message: "validation failed", Fields: map[string]string{"restaurantName": "is required"}}
	rec = env.do(multipartRequest(t, "/api/save", map[string]string{"data": "{}"}, nil, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", got.Code)
	assert.Equal(t, "is required", got.Details["restaurantName"])
}

func TestLoad(t *testing.T) {
	env := newEnv(t, nil)
	env.menus.records[key("A", "w1")] = &entity.MenuRecord{ID: 7, RestaurantName: "A", DateRange: "w1", ImagePath: "A/w 1/image.png"}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/load?restaurant=A&date=w1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, "/api/images/path/A/w%201/image.png", body["imageUrl"])
	assert.Equal(t, "A", body["restaurantName"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/load?restaurant=A&date=missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/load?list=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.MenuSummary
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Len(t, list, 1)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/load", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMenu(t *testing.T) {
	env := newEnv(t, nil)
	env.menus.records[key("A", "w1")] = &entity.MenuRecord{RestaurantName: "A", DateRange: "w1"}

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/menus?restaurant=A&date=w1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/menus?restaurant=A&date=w1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImage(t *testing.T) {
	env := newEnv(t, nil)
	p := filepath.Join(env.uploads, "A", "w1", "image.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("png"), 0o644))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/images/path/A/w1/image.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/images/path/A/w1/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/images/path/..%2F..%2Fetc%2Fpasswd", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublishAndData(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.publisher.err = viewer.ErrNothingToPublish
	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/publish", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.publisher.err = nil
	env.publisher.res = viewer.PublishResult{Restaurants: 2}
	env.publisher.published = []byte(`{"A":{"name":"A"}}`)
	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/publish", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"A":{"name":"A"}}`, string(decode(t, rec).Data))
}

func TestExport(t *testing.T) {
	env := newEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/export.xlsx?restaurant=A", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "menus.xlsx")
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "PK-xlsx", string(body))
	assert.Equal(t, "A", env.exporter.restaurant)
}

func TestRestaurants(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/restaurants?active_only=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.Restaurant
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].IsActive)

	rec = env.do(jsonRequest(http.MethodPost, "/api/restaurants", map[string]any{"name": "B"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(jsonRequest(http.MethodPost, "/api/restaurants", map[string]any{"name": "B"}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(jsonRequest(http.MethodPut, "/api/restaurants/1", map[string]any{"name": "C"}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(jsonRequest(http.MethodPut, "/api/restaurants/abc", map[string]any{"name": "C"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(jsonRequest(http.MethodPut, "/api/restaurants/9", map[string]any{"name": "C"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(jsonRequest(http.MethodPut, "/api/restaurants/reorder", map[string]any{"orders": []map[string]int{{"id": 1, "sort_order": 3}}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []entity.SortOrder{{ID: 1, SortOrder: 3}}, env.restaurants.orders)
	rec = env.do(jsonRequest(http.MethodPut, "/api/restaurants/reorder", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/restaurants/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/restaurants", strings.NewReader("{"))
	rec = env.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplaints(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.do(jsonRequest(http.MethodPost, "/api/complaints", map[string]any{"restaurant_name": "A", "user_email": "a@b.c"}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/complaints", map[string]any{"restaurant_name": "A"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, rec).Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/complaints?status=pending&restaurant_name=A&limit=10&offset=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.ComplaintFilter{Status: "pending", RestaurantName: "A", Limit: 10, Offset: 5}, env.complaints.filter)
	var list complaintList
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Equal(t, 1, list.Count)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/complaints?limit=ten", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/complaints/0b0e3b9e-7a4c-4c4e-9d51-6d1d5d4f8f10", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(jsonRequest(http.MethodPut, "/api/complaints/x", map[string]any{"status": "resolved"}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(jsonRequest(http.MethodPut, "/api/complaints/x", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchImage(t *testing.T) {
	env := newEnv(t, nil)
	rec := env.do(jsonRequest(http.MethodPost, "/api/webhook/fetch-image", map[string]string{"webhook_url": "https://example.com/a.png"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var img map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &img))
	assert.Equal(t, "data:image/png;base64,AAAA", img["dataUrl"])

	rec = env.do(jsonRequest(http.MethodPost, "/api/webhook/fetch-image", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cases := []struct {
		err  error
		want int
	}{
		{ingest.ErrInvalidURL, http.StatusBadRequest},
		{ingest.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("status 500: %w", ingest.ErrRemoteResponse), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		env := newEnv(t, func(d *Deps) { d.Fetcher = fakeFetcher{err: tc.err} })
		rec := env.do(jsonRequest(http.MethodPost, "/api/webhook/fetch-image", map[string]string{"url": "https://example.com"}))
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestHealthServer_Probe(t *testing.T) {
	healthy := true
	h := NewHealthServer(func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	}, 0, nil)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Probe(context.Background()))
	resp, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	healthy = false
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Probe(context.Background()))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "/api/images/path/%EC%84%BC%ED%85%80/1%EC%A3%BC/a.png", ImageURL("센텀/1주/a.png"))
}
