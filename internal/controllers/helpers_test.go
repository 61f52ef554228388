package controllers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"waste_tracker/internal/config"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/models"
	"waste_tracker/internal/storage"
	"waste_tracker/internal/templates"
	"waste_tracker/internal/urls"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	mediaDir string
}

// setupTestEnv points the package globals at a fresh in-memory database and
// a temporary photo directory, and restores them when the test ends.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig("error"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	prevDB, prevApp, prevPhotos := config.DB, config.App, config.Photos
	t.Cleanup(func() {
		config.DB, config.App, config.Photos = prevDB, prevApp, prevPhotos
		_ = sqlDB.Close()
	})

	app := config.Defaults()
	app.UnitPrice = decimal.NewFromInt(50)
	app.Location = time.UTC
	app.JWTSecret = "test-secret"
	app.TokenTTL = time.Hour
	app.MaxUploadBytes = 1 << 20
	config.App = app
	config.DB = db

	dir := t.TempDir()
	config.Photos = storage.NewLocalStore(dir, "/media")

	return &testEnv{db: db, router: newTestRouter(t), mediaDir: dir}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(middleware.Authenticate())
	tmpl, err := templates.Parse()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)

	r.GET(urls.Pattern(urls.Login), LoginPage)
	r.POST(urls.Pattern(urls.Login), LoginUser)
	r.POST(urls.Pattern(urls.Logout), LogoutUser)
	r.POST(urls.Pattern(urls.Signup), SignupUser)

	collector := r.Group("/", middleware.RequireCollector())
	collector.GET(urls.Pattern(urls.Dashboard), Dashboard)
	collector.GET(urls.Pattern(urls.CollectionList), CollectionList)
	collector.GET(urls.Pattern(urls.AssignedCustomers), AssignedCustomers)
	collector.GET(urls.Pattern(urls.CollectionCreate), CreateCollection)
	collector.POST(urls.Pattern(urls.CollectionCreate), CreateCollection)
	collector.GET(urls.Pattern(urls.CollectionUpdate), UpdateCollection)
	collector.POST(urls.Pattern(urls.CollectionUpdate), UpdateCollection)
	collector.GET(urls.Pattern(urls.CollectionDelete), DeleteCollection)
	collector.POST(urls.Pattern(urls.CollectionDelete), DeleteCollection)

	r.GET(urls.Pattern(urls.BillingDashboard), middleware.RequireLogin(), BillingDashboard)

	admin := r.Group("/", middleware.RequireRole(models.RoleAdmin))
	admin.GET(urls.Pattern(urls.AdminLocalBodies), ListLocalBodies)
	admin.POST(urls.Pattern(urls.AdminLocalBodies), CreateLocalBody)
	admin.POST(urls.Pattern(urls.AdminAssignCollector), AssignCollector)
	admin.POST(urls.Pattern(urls.AdminUsers), CreateUser)
	return r
}

func (e *testEnv) createUser(t *testing.T, email string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: email, Email: email, Password: string(hash), Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := middleware.GenerateToken(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) createLocalBody(t *testing.T, name string) models.LocalBody {
	t.Helper()
	lb := models.LocalBody{Name: name}
	require.NoError(t, e.db.Create(&lb).Error)
	return lb
}

func (e *testEnv) createCollection(t *testing.T, collectorID uint, kg int64) models.WasteCollection {
	t.Helper()
	rec := models.WasteCollection{CollectorID: collectorID, Kg: decimal.NewFromInt(kg)}
	rec.ApplyPricing(config.App.UnitPrice)
	require.NoError(t, e.db.Create(&rec).Error)
	return rec
}

func (e *testEnv) countCollections(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.WasteCollection{}).Count(&n).Error)
	return n
}

func (e *testEnv) serve(req *http.Request, token string, wantJSON bool) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if wantJSON {
		req.Header.Set("Accept", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path, token string, wantJSON bool) *httptest.ResponseRecorder {
	return e.serve(httptest.NewRequest(http.MethodGet, path, nil), token, wantJSON)
}

func (e *testEnv) postForm(path, token string, form url.Values, wantJSON bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req, token, wantJSON)
}

func (e *testEnv) postJSON(t *testing.T, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return e.serve(req, token, true)
}

func (e *testEnv) postMultipart(t *testing.T, path, token string, fields map[string]string, photo []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		part, err := mw.CreateFormFile("photo", "pickup.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(req, token, false)
}

func decodeBody(t *testing.T, r io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

// formResponse is the JSON shape of a rendered collection form.
type formResponse struct {
	Form struct {
		ID          uint              `json:"id"`
		Action      string            `json:"action"`
		Kg          string            `json:"kg"`
		LocalBodyID uint              `json:"localbody"`
		CustomerID  uint              `json:"customer_id"`
		Errors      map[string]string `json:"errors"`
	} `json:"form"`
	LocalBodies []models.LocalBody `json:"local_bodies"`
}
