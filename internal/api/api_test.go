package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aethra/haven/internal/auth"
	"github.com/aethra/haven/internal/config"
	"github.com/aethra/haven/internal/engine"
	"github.com/aethra/haven/internal/mailer"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/shell"
	"github.com/aethra/haven/internal/site"
	"github.com/aethra/haven/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	admins   *memoryAdmins
	faqs     *faqTable
	calendar *memoryCalendar
	jwt      *auth.JWTService
}

type serverOptions struct {
	broken bool
	dbErr  error
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	cfg := &config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret", AccessExpiry: 1, MaxLoginAttempts: 3},
		Mail:    config.MailConfig{Fallback: "Call us on 555 0100"},
		Storage: config.StorageConfig{Dir: t.TempDir(), PublicBaseURL: "/uploads"},
		Site:    config.SiteConfig{Name: "Haven Resort", DefaultTitle: "Haven Resort", DefaultDesc: "A quiet resort"},
	}

	pages, err := site.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	bucket, err := storage.NewLocalBucket(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		t.Fatalf("NewLocalBucket: %v", err)
	}

	s := &testServer{
		admins:   &memoryAdmins{},
		faqs:     &faqTable{},
		calendar: &memoryCalendar{},
		jwt:      auth.NewJWTService(cfg.Auth),
	}
	registry := engine.NewRegistry()
	registry.Register(engine.NewResource[models.FAQ](engine.FAQSchema, s.faqs))

	pub := site.New(emptySource{broken: opts.broken}, cfg.Site)
	shells := shell.New(newMemoryPrefs())

	s.router = SetupRouter(cfg, Handlers{
		Base:     NewHandler(fakePinger{err: opts.dbErr}, s.jwt),
		Public:   NewPublicHandler(pub, pages, mailer.New(cfg.Mail)),
		Auth:     NewAuthHandler(s.admins, s.jwt, auth.NewLoginLimiter(cfg.Auth), shells, false),
		Setup:    NewSetupHandler(s.admins, pub, pages),
		Admin:    NewAdminHandler(registry),
		Panel:    NewPanelHandler(pub, pages, fakeStats{}, registry, shells),
		Calendar: NewCalendarHandler(s.calendar, shells),
		Uploads:  NewUploadHandler(storage.NewUploader(bucket, cfg.Storage)),
	})
	return s
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	tok, err := s.jwt.Issue(models.Admin{Base: models.Base{ID: "admin-1"}, Email: "owner@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok.AccessToken
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) admin(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{"Authorization": "Bearer " + s.token(t), "Accept": "application/json"})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got %q: %v", w.Body.String(), err)
	}
	return body
}

// =============================================================================
// HEALTH + SESSION GATE
// =============================================================================

func TestHealth(t *testing.T) {
	w := newTestServer(t, serverOptions{}).do("GET", "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	w = newTestServer(t, serverOptions{dbErr: errOffline}).do("GET", "/api/health", "", nil)
	if w.Code != http.StatusServiceUnavailable || decode(t, w)["status"] != "degraded" {
		t.Errorf("Expected degraded 503, got %d %s", w.Code, w.Body.String())
	}
}

func TestAdminRequiresSession(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.do("GET", "/admin", "", map[string]string{"Accept": "text/html"})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("Expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = s.do("GET", "/admin/schema", "", map[string]string{"Accept": "application/json"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}

	w = s.do("GET", "/admin/schema", "", map[string]string{"Authorization": "Bearer not-a-token"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a garbage token, got %d", w.Code)
	}

	w = s.admin(t, "GET", "/admin/schema", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with a token, got %d", w.Code)
	}
}

func TestAdminPageRendersShell(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	w := s.do("GET", "/admin", "", map[string]string{"Authorization": "Bearer " + s.token(t), "Accept": "text/html"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `data-entity="faqs"`) {
		t.Error("Expected the sidebar to list registered entities")
	}
}

// =============================================================================
// AUTH
// =============================================================================

func addAdmin(t *testing.T, s *testServer, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	s.admins.CreateAdmin(context.Background(), models.Admin{Email: email, PasswordHash: hash, IsActive: true})
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	addAdmin(t, s, "owner@example.com", "correct horse")

	w := s.do("POST", "/api/auth/login", `{"email":"Owner@example.com","password":"correct horse"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("Expected an HttpOnly session cookie, got %+v", session)
	}

	w = s.do("GET", "/api/auth/session", "", map[string]string{"Cookie": SessionCookie + "=" + session.Value})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected the cookie to open the session, got %d", w.Code)
	}
	if decode(t, w)["email"] != "owner@example.com" {
		t.Errorf("Expected session email, got %s", w.Body.String())
	}
}

func TestLoginThrottlesRepeatedFailures(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	addAdmin(t, s, "owner@example.com", "correct horse")
	wrong := `{"email":"owner@example.com","password":"wrong"}`

	for i := 0; i < 3; i++ {
		if w := s.do("POST", "/api/auth/login", wrong, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("Attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := s.do("POST", "/api/auth/login", `{"email":"owner@example.com","password":"correct horse"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 once blocked, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}
}

func TestSetupCreatesFirstAdminOnce(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.do("GET", "/setup", "", nil)
	if decode(t, w)["setup_required"] != true {
		t.Errorf("Expected setup to be pending, got %s", w.Body.String())
	}

	body := `{"email":"owner@example.com","password":"long enough"}`
	if w := s.do("POST", "/setup", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	if w := s.do("POST", "/setup", body, nil); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 on a second setup, got %d", w.Code)
	}
	if w := s.do("POST", "/api/auth/login", `{"email":"owner@example.com","password":"long enough"}`, nil); w.Code != http.StatusOK {
		t.Errorf("Expected the new admin to sign in, got %d", w.Code)
	}
}

func TestConcurrentSetupCreatesOneAdmin(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	const attempts = 6
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"email":"owner%d@example.com","password":"long enough"}`, i)
			codes[i] = s.do("POST", "/setup", body, nil).Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("Expected 201 or 409, got %d", code)
		}
	}
	if created != 1 {
		t.Errorf("Expected exactly one setup to succeed, got %d", created)
	}
	if n := s.admins.AdminCount(context.Background()).Data; n != 1 {
		t.Errorf("Expected one admin, got %d", n)
	}
}

// =============================================================================
// PUBLIC
// =============================================================================

func TestPublicPages(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	html := map[string]string{"Accept": "text/html"}

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/rooms", http.StatusOK},
		{"/rooms/nowhere", http.StatusNotFound},
		{"/blog/nothing", http.StatusNotFound},
		{"/contact", http.StatusOK},
		{"/no-such-page", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := s.do("GET", tt.path, "", html); w.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, w.Code)
		}
	}

	w := s.do("GET", "/api/public/rooms", "", nil)
	if decode(t, w)["state"] != string(site.StateEmpty) {
		t.Errorf("Expected empty rooms, got %s", w.Body.String())
	}
}

func TestPublicPagesWhenBackendFails(t *testing.T) {
	s := newTestServer(t, serverOptions{broken: true})

	w := s.do("GET", "/faq", "", map[string]string{"Accept": "text/html"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "couldn&#39;t load") {
		t.Errorf("Expected the unavailable message, got %d", w.Code)
	}

	w = s.do("GET", "/api/public/faq", "", nil)
	if decode(t, w)["state"] != string(site.StateUnavailable) {
		t.Errorf("Expected unavailable state, got %s", w.Body.String())
	}
}

func TestContactWithoutMailSetup(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.do("POST", "/api/public/contact", `{"name":"Ana","email":"ana@example.com","message":"Hello"}`, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "SETUP_REQUIRED" || body["fallback"] != "Call us on 555 0100" {
		t.Errorf("Expected setup-required with fallback, got %v", body)
	}

	w = s.do("POST", "/api/public/contact", `{"name":"Ana","email":"nope","message":"Hello"}`, nil)
	if w.Code != http.StatusBadRequest || decode(t, w)["field"] != "email" {
		t.Errorf("Expected email validation error, got %d %s", w.Code, w.Body.String())
	}
}

// =============================================================================
// ADMIN CRUD
// =============================================================================

func TestAdminCRUD(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.admin(t, "GET", "/admin/data/faqs/new", "")
	if decode(t, w)["phase"] != string(engine.PhaseCreating) {
		t.Errorf("Expected a draft modal, got %s", w.Body.String())
	}

	w = s.admin(t, "POST", "/admin/data/faqs?mode=draft", `{"question":"Pets?","answer":"Yes"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	items := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected the refreshed list, got %v", items)
	}
	if items[0].(map[string]interface{})["is_active"] != false {
		t.Errorf("Expected a draft to be inactive, got %v", items[0])
	}
	notices := body["notices"].([]interface{})
	if notices[0].(map[string]interface{})["message"] != "FAQ created" {
		t.Errorf("Expected create notice, got %v", notices)
	}

	w = s.admin(t, "PUT", "/admin/data/faqs/faq-1?mode=publish", `{"answer":"Dogs only"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	if s.faqs.rows[0].Answer != "Dogs only" || !s.faqs.rows[0].IsActive {
		t.Errorf("Expected published update, got %+v", s.faqs.rows[0])
	}

	w = s.admin(t, "GET", "/admin/data/faqs?search=pets", "")
	if decode(t, w)["total"] != float64(1) {
		t.Errorf("Expected one match, got %s", w.Body.String())
	}

	w = s.admin(t, "DELETE", "/admin/data/faqs/faq-1", "")
	if w.Code != http.StatusOK || len(decode(t, w)["items"].([]interface{})) != 0 {
		t.Errorf("Expected an empty list after delete, got %d %s", w.Code, w.Body.String())
	}
}

func TestAdminListPagingAndFullLoad(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	for i := 1; i <= 60; i++ {
		s.faqs.rows = append(s.faqs.rows, models.FAQ{Base: models.Base{ID: fmt.Sprintf("faq-%d", i)}, Question: fmt.Sprintf("Question %d", i)})
	}

	w := s.admin(t, "GET", "/admin/data/faqs", "")
	body := decode(t, w)
	if len(body["items"].([]interface{})) != defaultPageSize || body["total"] != float64(60) {
		t.Errorf("Expected a first page of %d out of 60, got %d", defaultPageSize, len(body["items"].([]interface{})))
	}

	w = s.admin(t, "GET", "/admin/data/faqs?limit=0", "")
	if n := len(decode(t, w)["items"].([]interface{})); n != 60 {
		t.Errorf("Expected every row with limit=0, got %d", n)
	}

	w = s.admin(t, "GET", "/admin/data/faqs?limit=20&offset=50", "")
	if n := len(decode(t, w)["items"].([]interface{})); n != 10 {
		t.Errorf("Expected the last 10 rows, got %d", n)
	}
}

func TestAdminCRUDRejections(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.admin(t, "POST", "/admin/data/faqs", `{"answer":"No question"}`)
	if w.Code != http.StatusBadRequest || decode(t, w)["field"] != "question" {
		t.Errorf("Expected question validation error, got %d %s", w.Code, w.Body.String())
	}
	if len(s.faqs.rows) != 0 {
		t.Error("Expected nothing to be written")
	}

	if w := s.admin(t, "POST", "/admin/data/faqs?mode=later", `{"question":"Q","answer":"A"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown mode, got %d", w.Code)
	}
	if w := s.admin(t, "GET", "/admin/data/spaceships", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown entity, got %d", w.Code)
	}

	w = s.admin(t, "DELETE", "/admin/data/faqs/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if _, ok := decode(t, w)["notices"]; !ok {
		t.Error("Expected the failure notices in the body")
	}
	if s.faqs.deletes != 1 {
		t.Errorf("Expected one delete call, got %d", s.faqs.deletes)
	}
}

// =============================================================================
// CALENDAR, SHELL, UPLOADS
// =============================================================================

func TestAvailabilityRange(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.admin(t, "POST", "/admin/availability/range",
		`{"room_type_id":"rt-1","from":"2026-03-01","to":"2026-03-03","available_rooms":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["written"] != float64(3) || len(s.calendar.availability) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(s.calendar.availability))
	}

	w = s.admin(t, "GET", "/admin/shell", "")
	if decode(t, w)["availability_from"] != "2026-03-01" {
		t.Errorf("Expected the range to be remembered, got %s", w.Body.String())
	}

	w = s.admin(t, "GET", "/admin/availability", "")
	if len(decode(t, w)["items"].([]interface{})) != 3 {
		t.Errorf("Expected the remembered range to be listed, got %s", w.Body.String())
	}
}

func TestRateRangeReportsPartialWrite(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.calendar.failOn = "2026-03-02"

	w := s.admin(t, "POST", "/admin/rates/range", `{"room_type_id":"rt-1","from":"2026-03-01","to":"2026-03-03","rate":120}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	body := decode(t, w)
	if body["written"] != float64(1) || body["failed_day"] != "2026-03-02" {
		t.Errorf("Expected one written day before the failure, got %v", body)
	}

	w = s.admin(t, "POST", "/admin/rates/range", `{"room_type_id":"rt-1","from":"2026-03-05","to":"2026-03-01","rate":120}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a reversed range, got %d", w.Code)
	}
}

func TestUpdateShell(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := s.admin(t, "PUT", "/admin/shell", `{"dark_mode":true}`)
	body := decode(t, w)
	if body["dark_mode"] != true || body["sidebar_open"] != true {
		t.Errorf("Expected dark mode on and sidebar untouched, got %v", body)
	}

	w = s.admin(t, "PUT", "/admin/shell", `{"sidebar_open":false}`)
	body = decode(t, w)
	if body["dark_mode"] != true || body["sidebar_open"] != false {
		t.Errorf("Expected both settings kept, got %v", body)
	}
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "pool.png")
	part.Write(png)
	mw.WriteField("folder", "rooms")
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", w.Code, w.Body.String())
	}
	obj := decode(t, w)
	if !strings.HasPrefix(obj["url"].(string), "/uploads/rooms/") {
		t.Errorf("Expected a public URL under rooms, got %v", obj["url"])
	}

	w = s.admin(t, "GET", "/admin/uploads", "")
	if len(decode(t, w)["items"].([]interface{})) != 1 {
		t.Errorf("Expected one stored image, got %s", w.Body.String())
	}

	w = s.do("GET", obj["url"].(string), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected the upload to be served, got %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || !strings.Contains(w.Header().Get("Content-Security-Policy"), "sandbox") {
		t.Errorf("Expected restrictive headers on uploads, got %v", w.Header())
	}

	w = s.admin(t, "DELETE", "/admin/uploads/"+obj["name"].(string), "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected delete to succeed, got %d %s", w.Code, w.Body.String())
	}
}
