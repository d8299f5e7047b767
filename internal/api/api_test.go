package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/ougirez/zstats/internal/domain"
	"github.com/ougirez/zstats/internal/pkg/config"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/storage"
	"github.com/ougirez/zstats/internal/pkg/store"
	"github.com/ougirez/zstats/internal/pkg/store/memstore"
	"github.com/ougirez/zstats/internal/pkg/utils"
	"github.com/ougirez/zstats/internal/service/importer"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	svc   *APIService
	store *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	viper.Set(constants.ViperSecretKey, "test-secret")
	t.Cleanup(viper.Reset)

	st := memstore.NewStore(
		&domain.Record{ID: "r1", Dataset: constants.DatasetCropProduction, Year: 2022, Region: "Eastern", Category: "Maize", Measures: domain.Measures{"production": 1200}},
		&domain.Record{ID: "r2", Dataset: constants.DatasetCropProduction, Year: 2023, Region: "Eastern", Category: "Maize", Measures: domain.Measures{"production": 1300}},
		&domain.Record{ID: "r3", Dataset: constants.DatasetCropProduction, Year: 2023, Region: "Southern", Category: "Wheat", Measures: domain.Measures{"production": 900}},
	)
	fs := afero.NewMemMapFs()
	files := storage.New(fs, "http://localhost:8080/storage", []string{constants.StorageAreaMedia})

	v := viper.New()
	config.SetDefaults(v)

	svc, err := NewAPIService(Config{
		CORSOrigins: []string{"*"},
		LogLevel:    "off",
		Domains:     config.LoadDomains(v),
	}, st, files, importer.NewService(st, importer.Config{}))
	require.NoError(t, err)

	return &testServer{svc: svc, store: st}
}

// token grants role to a fresh user and returns a token for that user.
func (s *testServer) token(t *testing.T, role domain.Role) string {
	t.Helper()

	userID := uuid.NewString()
	_, err := s.store.UserRolesRepo.Upsert(context.Background(), &domain.UserRole{UserID: userID, Role: role})
	require.NoError(t, err)

	return tokenFor(t, userID, role)
}

func tokenFor(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	raw, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{UserID: userID, Role: role})
	require.NoError(t, err)
	return raw
}

func (s *testServer) do(req *http.Request, authToken string) *httptest.ResponseRecorder {
	if authToken != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+authToken)
	}
	rec := httptest.NewRecorder()
	s.svc.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), v))
}

func TestListDatasets(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var datasets []string
	decode(t, rec, &datasets)
	assert.Equal(t, constants.Datasets, datasets)
}

func TestQueryDataset(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet,
		"/api/v1/datasets/crop_production/query?group_by=region&reducer=sum&measure=production&sort=desc", nil), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		XAxis  string                   `json:"x_axis"`
		Points []map[string]interface{} `json:"points"`
		Total  float64                  `json:"total"`
	}
	decode(t, rec, &resp)

	assert.Equal(t, "region", resp.XAxis)
	assert.Equal(t, 3400.0, resp.Total)
	require.Len(t, resp.Points, 2)
	assert.Equal(t, "Eastern", resp.Points[0]["region"])
	assert.Equal(t, 2500.0, resp.Points[0]["production"])
}

func TestQueryDatasetErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets/weather/query", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets/crop_production/query?reducer=median", nil), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp domain.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListRecordsFiltered(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets/crop_production/records?category=Maize&year=2023", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []domain.Record
	decode(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "r2", records[0].ID)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets/crop_production/export?format=csv&region=Southern", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Southern,Wheat")
	assert.NotContains(t, rec.Body.String(), "Eastern")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), s.token(t, domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), s.token(t, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleComesFromGrant(t *testing.T) {
	s := newTestServer(t)

	// токен с ролью admin без выдачи роли
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), tokenFor(t, uuid.NewString(), domain.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	userID := uuid.NewString()
	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/roles", `{"user_id":"`+userID+`","role":"admin"}`), s.token(t, domain.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	own := tokenFor(t, userID, domain.RoleAdmin)
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), own)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/roles", `{"user_id":"`+userID+`","role":"user"}`), own)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records", nil), own)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleRevokedByDelete(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)

	userID := uuid.NewString()
	granted, err := s.store.UserRolesRepo.Upsert(context.Background(), &domain.UserRole{UserID: userID, Role: domain.RoleAdmin})
	require.NoError(t, err)

	own := tokenFor(t, userID, domain.RoleAdmin)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings", nil), own)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/roles/"+granted.ID+"?confirm=true", nil), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings", nil), own)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRecordLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/admin/records",
		`{"dataset":"livestock","year":2023,"region":"Western","category":"Cattle","measures":{"head":4100}}`), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created domain.MutationResponse[domain.Record]
	decode(t, rec, &created)
	require.NotNil(t, created.Item)
	assert.NotEmpty(t, created.Item.ID)
	assert.Equal(t, "Record created", created.Notice.Message)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/records?column=dataset&value=livestock", nil), admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []domain.Record
	decode(t, rec, &listed)
	require.Len(t, listed, 1)

	// без подтверждения запись не удаляется
	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/records/"+created.Item.ID, nil), admin)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/records/"+created.Item.ID+"?confirm=true", nil), admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	items, err := s.store.RecordsRepo.List(context.Background(), store.ListOpts{Column: "dataset", Value: "livestock"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAdminUpsertRecordValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/admin/records", `{"dataset":"livestock","year":1200}`), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/records", `{"dataset":"weather","year":2023,"measures":{"head":1}}`), admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Zero(t, s.store.RecordsRepo.Calls(memstore.OpUpsert))
}

func TestAdminUploadAndServeMedia(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "map.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", "Province map"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(req, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp domain.MutationResponse[domain.Media]
	decode(t, rec, &resp)
	require.NotNil(t, resp.Item)
	assert.Equal(t, "Province map", resp.Item.AltText)
	assert.True(t, strings.HasSuffix(resp.Item.FilePath, ".png"))

	rec = s.do(httptest.NewRequest(http.MethodGet, "/storage/media/"+resp.Item.FilePath, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = s.do(jsonRequest(http.MethodPut, "/api/v1/admin/media/"+resp.Item.ID, `{"alt_text":"Updated","description":"2023 edition"}`), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/media/"+resp.Item.ID+"?confirm=true", nil), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/storage/media/"+resp.Item.FilePath, nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGrantRole(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)
	userID := uuid.NewString()

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/admin/roles", `{"user_id":"`+userID+`","role":"admin"}`), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/admin/roles", `{"user_id":"nope","role":"admin"}`), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	roles, err := s.store.UserRolesRepo.List(context.Background(), store.ListOpts{Column: "user_id", Value: userID})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, domain.RoleAdmin, roles[0].Role)
}

func TestMaintenanceMode(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)

	settings := domain.DefaultSystemSettings()
	settings.Features.MaintenanceMode = true
	raw, err := sonic.Marshal(settings)
	require.NoError(t, err)

	rec := s.do(jsonRequest(http.MethodPut, "/api/v1/admin/settings", string(raw)), admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil), admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	// конфигурация сайта доступна всегда
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/site-config", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfilePreferences(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, domain.RoleUser)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	prefs := domain.DefaultUserPreferences()
	prefs.Theme = "dark"
	raw, err := sonic.Marshal(prefs)
	require.NoError(t, err)

	rec = s.do(jsonRequest(http.MethodPut, "/api/v1/profile/preferences", string(raw)), user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), user)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile domain.Profile
	decode(t, rec, &profile)
	assert.Equal(t, "dark", profile.Preferences.Theme)
}

func TestBackfillWithoutSources(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/imports", nil), s.token(t, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/imports/livestock", nil), s.token(t, domain.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCropTrendChart(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/crops/trend?category=Maize", nil), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var chart struct {
		Series []string                 `json:"series"`
		Points []map[string]interface{} `json:"points"`
	}
	decode(t, rec, &chart)
	assert.Equal(t, []string{"production"}, chart.Series)
	require.Len(t, chart.Points, 5)
	assert.Equal(t, 1300.0, chart.Points[4]["production"])
}
