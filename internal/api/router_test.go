package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"coursehub/internal/api"
	"coursehub/internal/app/service"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/config"
	"coursehub/internal/storage"
)

// memoryImageStore keeps uploads in a map so the upload route can be
// exercised without an object store.
type memoryImageStore struct {
	objects map[string][]byte
}

func (m *memoryImageStore) PutStream(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[objectName] = data
	return nil
}

type testEnv struct {
	router       http.Handler
	adminToken   string
	studentToken string
	uploads      *memoryImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:          []byte("router-test-secret"),
		JWTExp:          time.Hour,
		UploadPrefix:    "uploads",
		UploadPublicURL: "http://cdn.test/coursehub",
	}
	security.InitJWT()

	adminHash, err := security.HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	studentHash, err := security.HashPassword("student1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now().UTC()
	ds := &storage.Dataset{
		Users: []model.User{
			{ID: 1, Email: "admin@example.com", Name: "Admin", PasswordHash: adminHash, IsAdmin: true, CreatedAt: now},
			{ID: 2, Email: "student@example.com", Name: "Student", PasswordHash: studentHash, CreatedAt: now},
		},
		Courses: []model.Course{
			{ID: 1, Title: "Course", OrderIndex: 1, CreatedAt: now},
		},
		Tests: []model.Test{
			{ID: 1, CourseID: 1, Title: "Quiz", CreatedAt: now},
		},
		TestQuestions: []model.TestQuestion{
			{ID: 1, TestID: 1, Question: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 1, OrderIndex: 1},
			{ID: 2, TestID: 1, Question: "Q2", Options: []string{"a", "b"}, CorrectAnswer: 0, OrderIndex: 2},
		},
		LastIDs: storage.LastIDs{Users: 2, Courses: 1, Tests: 1, TestQuestions: 2},
	}

	resolver := storage.NewResolver(
		[]storage.Backend{storage.NewLocal(ds)},
		storage.NewLocal(ds),
		time.Second,
	)

	authService := service.NewAuthService(resolver)
	contentService := service.NewContentService(resolver)
	testService := service.NewTestService(resolver)
	adminService := service.NewAdminService(resolver)
	uploads := &memoryImageStore{}
	uploadService := service.NewUploadService(uploads)

	router := api.NewRouter(authService, contentService, testService, adminService, uploadService)

	adminToken, err := security.GenerateToken(&ds.Users[0])
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	studentToken, err := security.GenerateToken(&ds.Users[1])
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	return &testEnv{router: router, adminToken: adminToken, studentToken: studentToken, uploads: uploads}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCoursesArePubliclyReadable(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/courses", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Courses []model.Course `json:"courses"`
	}
	decodeBody(t, rec, &body)
	if len(body.Courses) != 1 || body.Courses[0].Title != "Course" {
		t.Errorf("unexpected courses: %+v", body.Courses)
	}
}

func TestListResponsesAreEnveloped(t *testing.T) {
	env := newTestEnv(t)

	// An empty collection must serialize as an empty array inside its
	// envelope key, never as null.
	rec := env.do(t, http.MethodGet, "/api/test-results", env.studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"results":[]}` {
		t.Errorf("empty result list = %s, want {\"results\":[]}", body)
	}

	rec = env.do(t, http.MethodGet, "/api/courses/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var single struct {
		Course *model.Course `json:"course"`
	}
	decodeBody(t, rec, &single)
	if single.Course == nil || single.Course.ID != 1 {
		t.Errorf("course envelope missing: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/courses/1/lessons", "", nil)
	if body := strings.TrimSpace(rec.Body.String()); body != `{"lessons":[]}` {
		t.Errorf("empty lesson list = %s, want {\"lessons\":[]}", body)
	}
}

func TestRegisterLoginMeFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "new@example.com",
		"password": "secret123",
		"name":     "New User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}

	var authResp struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeBody(t, rec, &authResp)
	if authResp.Token == "" || authResp.User.Email != "new@example.com" {
		t.Fatalf("unexpected register response: %+v", authResp)
	}
	if authResp.User.IsAdmin {
		t.Error("self-registered users must not be admins")
	}

	cookieSet := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.CookieName && c.Value != "" {
			cookieSet = true
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		}
	}
	if !cookieSet {
		t.Error("register did not set the session cookie")
	}

	// The cookie alone authenticates /me.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: security.CookieName, Value: authResp.Token})
	meRec := httptest.NewRecorder()
	env.router.ServeHTTP(meRec, req)
	if meRec.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", meRec.Code, meRec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "new@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "student@example.com",
		"password": "secret123",
		"name":     "Dup",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "student@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401: %s", rec.Code, rec.Body.String())
	}
}

func TestCourseMutationAuthBoundary(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"title": "New Course"}

	if rec := env.do(t, http.MethodPost, "/api/courses", "", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create: status = %d, want 401", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/courses", env.studentToken, body); rec.Code != http.StatusForbidden {
		t.Errorf("student create: status = %d, want 403", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/api/courses", env.adminToken, body)
	if rec.Code != http.StatusCreated {
		t.Errorf("admin create: status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSubmitResultScoresServerSide(t *testing.T) {
	env := newTestEnv(t)

	// A claimed score in the payload is ignored; only answers count.
	rec := env.do(t, http.MethodPost, "/api/test-results", env.studentToken, map[string]interface{}{
		"test_id": 1,
		"answers": []int{1, 0},
		"score":   3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Result model.TestResult `json:"result"`
	}
	decodeBody(t, rec, &body)
	if body.Result.Score != 100 {
		t.Errorf("score = %d, want 100", body.Result.Score)
	}
	if body.Result.UserID != 2 {
		t.Errorf("user_id = %d, want the authenticated user", body.Result.UserID)
	}

	rec = env.do(t, http.MethodPost, "/api/test-results", env.studentToken, map[string]interface{}{
		"test_id": 1,
		"answers": []int{1, 1},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &body)
	if body.Result.Score != 50 {
		t.Errorf("score = %d, want 50", body.Result.Score)
	}
}

func TestSubmitResultRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/test-results", "", map[string]interface{}{
		"test_id": 1,
		"answers": []int{1, 0},
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestResultsAreScopedToNonAdmins(t *testing.T) {
	env := newTestEnv(t)

	// One result from the student, one from the admin.
	if rec := env.do(t, http.MethodPost, "/api/test-results", env.studentToken,
		map[string]interface{}{"test_id": 1, "answers": []int{1, 0}}); rec.Code != http.StatusCreated {
		t.Fatalf("student submit: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/test-results", env.adminToken,
		map[string]interface{}{"test_id": 1, "answers": []int{0, 0}}); rec.Code != http.StatusCreated {
		t.Fatalf("admin submit: %d", rec.Code)
	}

	var body struct {
		Results []model.TestResult `json:"results"`
	}
	rec := env.do(t, http.MethodGet, "/api/test-results", env.studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("student list: %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if len(body.Results) != 1 || body.Results[0].UserID != 2 {
		t.Errorf("student should only see own results: %+v", body.Results)
	}

	rec = env.do(t, http.MethodGet, "/api/test-results", env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list: %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if len(body.Results) != 2 {
		t.Errorf("admin should see all results, got %d", len(body.Results))
	}
}

func TestCourseLessonsAndTestsSubroutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/courses/1/tests", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("course tests: %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Tests []model.Test `json:"tests"`
	}
	decodeBody(t, rec, &body)
	if len(body.Tests) != 1 || body.Tests[0].Title != "Quiz" {
		t.Errorf("unexpected tests: %+v", body.Tests)
	}

	if rec := env.do(t, http.MethodGet, "/api/courses/999/tests", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing course: status = %d, want 404", rec.Code)
	}
}

func TestQuestionsRequireTestIDFilter(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, http.MethodGet, "/api/test-questions", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing test_id: status = %d, want 400", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/test-questions?test_id=1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Questions []model.TestQuestion `json:"questions"`
	}
	decodeBody(t, rec, &body)
	if len(body.Questions) != 2 {
		t.Errorf("got %d questions, want 2", len(body.Questions))
	}
}

func TestMigrateDataIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, http.MethodPost, "/api/migrate-data?target=local", env.studentToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("student migrate: status = %d, want 403", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/migrate-data?target=unknown", env.adminToken, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("unknown target: status = %d, want 500: %s", rec.Code, rec.Body.String())
	}
}

func TestDataStatusReportsBackends(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/data-status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var report struct {
		Backends []struct {
			Name      string `json:"name"`
			Available bool   `json:"available"`
		} `json:"backends"`
		Overall struct {
			Healthy bool `json:"healthy"`
			HasData bool `json:"has_data"`
		} `json:"overall"`
	}
	decodeBody(t, rec, &report)
	if len(report.Backends) != 1 || !report.Backends[0].Available {
		t.Errorf("unexpected backends: %+v", report.Backends)
	}
	if !report.Overall.Healthy || !report.Overall.HasData {
		t.Errorf("unexpected overall: %+v", report.Overall)
	}
}

func TestDeleteCascadeOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/courses/1", env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d: %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/tests/%d", 1), "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("test survived course delete: status = %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadStoresImageAndReturnsURL(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "Lesson Pic.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		URL string `json:"url"`
	}
	decodeBody(t, rec, &resp)
	if !strings.HasPrefix(resp.URL, "http://cdn.test/coursehub/uploads/") {
		t.Errorf("unexpected upload url: %q", resp.URL)
	}
	if !strings.HasSuffix(resp.URL, "-lesson-pic.png") {
		t.Errorf("object name should carry the slugged filename: %q", resp.URL)
	}
	if len(env.uploads.objects) != 1 {
		t.Errorf("stored %d objects, want 1", len(env.uploads.objects))
	}
}

func TestUploadRejectsNonImages(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadIsAdminGated(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartUpload(t, "pic.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.studentToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestMigrateDataReseedsBackend(t *testing.T) {
	env := newTestEnv(t)
	// Fixtures pull the bootstrap admin from config.
	config.AppConfig.SeedAdminEmail = "admin@seeded.local"
	config.AppConfig.SeedAdminPassword = "seeded123"

	rec := env.do(t, http.MethodPost, "/api/migrate-data?target=local", env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("migrate: %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Success bool              `json:"success"`
		Results map[string]string `json:"results"`
	}
	decodeBody(t, rec, &result)
	if !result.Success || result.Results["local"] != "seeded" {
		t.Errorf("unexpected migrate result: %+v", result)
	}

	// The seeded dataset replaces the previous data wholesale.
	rec = env.do(t, http.MethodGet, "/api/courses", "", nil)
	var body struct {
		Courses []model.Course `json:"courses"`
	}
	decodeBody(t, rec, &body)
	if len(body.Courses) != 2 {
		t.Errorf("got %d courses after re-seed, want 2", len(body.Courses))
	}
}
