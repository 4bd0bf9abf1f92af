package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/workit/internal/middleware"
	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
	"github.com/Windi-Fikriyansyah/workit/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	app       *fiber.App
	store     storage.Storage
	hub       *realtime.Hub
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemStorage()
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	dir := t.TempDir()
	app := NewApp(Deps{
		Store:         store,
		Hub:           hub,
		Notifier:      realtime.NewNotifier(hub, nil),
		JWTSecret:     "test-secret",
		JWTExpiresMin: 60,
		UploadDir:     dir,
		AllowOrigins:  "http://localhost:3000",
	})
	return &testEnv{app: app, store: store, hub: hub, uploadDir: dir}
}

func (e *testEnv) send(t *testing.T, req *http.Request, cookie string) (*http.Response, envelope) {
	t.Helper()
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: cookie})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp, env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	resp, env := e.send(t, req, cookie)
	return resp.StatusCode, env
}

// register signs a user up and returns the user with its session cookie.
func (e *testEnv) register(t *testing.T, username string, role models.Role) (models.User, string) {
	t.Helper()
	b, err := json.Marshal(fiber.Map{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "password1",
		"confirmPassword": "password1",
		"role":            role,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, env := e.send(t, req, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var u models.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			return u, c.Value
		}
	}
	t.Fatal("no session cookie set")
	return u, ""
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	status, env := e.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, string(env.Data))
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)
	u, cookie := e.register(t, "alice", models.RoleFreelancer)
	assert.Equal(t, "alice", u.Username)

	status, env := e.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "password")
	assert.Equal(t, u.ID, decode[models.User](t, env).ID)

	stored, err := e.store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.Password)

	status, _ = e.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "alice", "password": "password1"}, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = e.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, env = e.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "password field is required")

	status, _ = e.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodGet, "/api/auth/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterRejections(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice", models.RoleFreelancer)

	body := fiber.Map{"username": "bob", "email": "bob@example.com", "password": "a", "confirmPassword": "b", "role": "employer"}
	status, env := e.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Passwords do not match", env.Message)

	body = fiber.Map{"username": "alice", "email": "new@example.com", "password": "a", "confirmPassword": "a", "role": "employer"}
	status, env = e.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already exists", env.Message)

	body = fiber.Map{"username": "carol", "email": "alice@example.com", "password": "a", "confirmPassword": "a", "role": "employer"}
	status, env = e.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", env.Message)

	body = fiber.Map{"username": "dave", "email": "dave@example.com", "password": "a", "confirmPassword": "a", "role": "admin"}
	status, _ = e.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserProfile(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceCookie := e.register(t, "alice", models.RoleFreelancer)
	bob, _ := e.register(t, "bob", models.RoleEmployer)

	status, _ := e.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", bob.ID), fiber.Map{"bio": "x"}, aliceCookie)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := e.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", alice.ID), fiber.Map{"bio": "Illustrator"}, aliceCookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Illustrator", *decode[models.User](t, env).Bio)

	status, env = e.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", alice.ID), fiber.Map{"username": "bob"}, aliceCookie)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, _ = e.do(t, http.MethodGet, "/api/users/999", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func createService(t *testing.T, e *testEnv, cookie string, price float64) models.Service {
	t.Helper()
	status, env := e.do(t, http.MethodPost, "/api/services", fiber.Map{
		"title": "Logo design", "description": "Three concepts", "price": price, "category": "design",
	}, cookie)
	require.Equal(t, http.StatusCreated, status, env.Message)
	return decode[models.Service](t, env)
}

func createJob(t *testing.T, e *testEnv, cookie string) models.Job {
	t.Helper()
	status, env := e.do(t, http.MethodPost, "/api/jobs", fiber.Map{
		"title": "Landing page", "description": "Marketing site", "budget": 500, "category": "web", "jobType": "remote",
	}, cookie)
	require.Equal(t, http.StatusCreated, status, env.Message)
	return decode[models.Job](t, env)
}

func TestRolesGateCreation(t *testing.T) {
	e := newTestEnv(t)
	_, freelancer := e.register(t, "fred", models.RoleFreelancer)
	_, employer := e.register(t, "emma", models.RoleEmployer)

	status, _ := e.do(t, http.MethodPost, "/api/jobs", fiber.Map{"title": "x"}, freelancer)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPost, "/api/services", fiber.Map{"title": "x"}, employer)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRoleChangeTakesEffectImmediately(t *testing.T) {
	e := newTestEnv(t)
	emma, oldCookie := e.register(t, "emma", models.RoleEmployer)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", emma.ID), strings.NewReader(`{"role":"freelancer"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, env := e.send(t, req, oldCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, models.RoleFreelancer, decode[models.User](t, env).Role)

	var fresh string
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			fresh = c.Value
		}
	}
	require.NotEmpty(t, fresh, "role change must refresh the session cookie")
	claims, err := utils.ParseJWT("test-secret", fresh)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleFreelancer), claims.Role)

	// The cookie issued before the change still carries "employer".
	status, _ := e.do(t, http.MethodPost, "/api/jobs", fiber.Map{
		"title": "Landing page", "description": "Marketing site", "budget": 500, "category": "web", "jobType": "remote",
	}, oldCookie)
	assert.Equal(t, http.StatusForbidden, status)
	createService(t, e, oldCookie, 40)

	status, _ = e.do(t, http.MethodPost, "/api/jobs", fiber.Map{"title": "x"}, fresh)
	assert.Equal(t, http.StatusForbidden, status)
	createService(t, e, fresh, 60)
}

func TestProfileEmailIsNormalised(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice", models.RoleFreelancer)
	bob, bobCookie := e.register(t, "bob", models.RoleEmployer)
	path := fmt.Sprintf("/api/users/%d", bob.ID)

	status, env := e.do(t, http.MethodPut, path, fiber.Map{"email": "  ALICE@Example.com "}, bobCookie)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = e.do(t, http.MethodPut, path, fiber.Map{"email": " Bob.New@Example.COM", "username": " bobby "}, bobCookie)
	require.Equal(t, http.StatusOK, status, env.Message)
	got := decode[models.User](t, env)
	assert.Equal(t, "bob.new@example.com", got.Email)
	assert.Equal(t, "bobby", got.Username)

	stored, err := e.store.GetUserByEmail(context.Background(), "bob.new@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, bob.ID, stored.ID)
}

func TestServiceListingIncludesOwner(t *testing.T) {
	e := newTestEnv(t)
	fred, cookie := e.register(t, "fred", models.RoleFreelancer)
	svc := createService(t, e, cookie, 75)

	status, env := e.do(t, http.MethodGet, "/api/services?status=active&category=design", nil, "")
	require.Equal(t, http.StatusOK, status)
	var list []struct {
		ID   int          `json:"id"`
		User *models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, svc.ID, list[0].ID)
	require.NotNil(t, list[0].User)
	assert.Equal(t, fred.ID, list[0].User.ID)

	status, env = e.do(t, http.MethodGet, "/api/services?status=inactive", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestServiceUpdateOwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	_, owner := e.register(t, "fred", models.RoleFreelancer)
	_, other := e.register(t, "gina", models.RoleFreelancer)
	svc := createService(t, e, owner, 75)
	path := fmt.Sprintf("/api/services/%d", svc.ID)

	status, _ := e.do(t, http.MethodPut, path, fiber.Map{"price": 10}, other)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := e.do(t, http.MethodPut, path, fiber.Map{"price": 90, "status": "inactive"}, owner)
	require.Equal(t, http.StatusOK, status)
	updated := decode[models.Service](t, env)
	assert.Equal(t, 90.0, updated.Price)
	assert.Equal(t, models.ServiceInactive, updated.Status)
	assert.Equal(t, svc.Title, updated.Title)

	status, _ = e.do(t, http.MethodPut, path, fiber.Map{"status": "archived"}, owner)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrderTakesSellerAndPriceFromService(t *testing.T) {
	e := newTestEnv(t)
	seller, sellerCookie := e.register(t, "fred", models.RoleFreelancer)
	buyer, buyerCookie := e.register(t, "emma", models.RoleEmployer)
	svc := createService(t, e, sellerCookie, 150)

	inbox := &realtime.Client{ID: "seller-socket", UserID: seller.ID, Send: make(chan []byte, 4)}
	require.True(t, e.hub.RegisterClient(inbox))
	require.Eventually(t, func() bool { return e.hub.Connected(seller.ID) == 1 }, time.Second, time.Millisecond)

	status, env := e.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/orders", svc.ID), fiber.Map{
		"paymentMethod": "card",
		"totalPrice":    1,
		"sellerId":      999,
		"buyerId":       seller.ID,
	}, buyerCookie)
	require.Equal(t, http.StatusCreated, status, env.Message)

	order := decode[models.Order](t, env)
	assert.Equal(t, 150.0, order.TotalPrice)
	assert.Equal(t, seller.ID, order.SellerID)
	assert.Equal(t, buyer.ID, order.BuyerID)
	assert.Equal(t, models.OrderPending, order.Status)

	select {
	case msg := <-inbox.Send:
		assert.Contains(t, string(msg), realtime.EventOrderCreated)
	case <-time.After(time.Second):
		t.Fatal("seller was not notified")
	}

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/orders", svc.ID), fiber.Map{"paymentMethod": "card"}, sellerCookie)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/services/%d/orders", svc.ID), fiber.Map{"paymentMethod": "cash"}, buyerCookie)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = e.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/orders", seller.ID), nil, sellerCookie)
	require.Equal(t, http.StatusOK, status)
	var withService []struct {
		ID      int             `json:"id"`
		Service *models.Service `json:"service"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &withService))
	require.Len(t, withService, 1)
	assert.Equal(t, svc.ID, withService[0].Service.ID)

	status, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/orders", seller.ID), nil, buyerCookie)
	assert.Equal(t, http.StatusForbidden, status)

	path := fmt.Sprintf("/api/orders/%d/status", order.ID)
	status, env = e.do(t, http.MethodPut, path, fiber.Map{"status": "paid"}, buyerCookie)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.OrderPaid, decode[models.Order](t, env).Status)

	_, outsider := e.register(t, "olly", models.RoleEmployer)
	status, _ = e.do(t, http.MethodPut, path, fiber.Map{"status": "completed"}, outsider)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestApplicationFlow(t *testing.T) {
	e := newTestEnv(t)
	_, employer := e.register(t, "emma", models.RoleEmployer)
	fred, freelancer := e.register(t, "fred", models.RoleFreelancer)
	job := createJob(t, e, employer)

	status, env := e.do(t, http.MethodPost, fmt.Sprintf("/api/jobs/%d/applications", job.ID), fiber.Map{"description": "mine"}, employer)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You cannot apply to your own job", env.Message)

	status, env = e.do(t, http.MethodPost, fmt.Sprintf("/api/jobs/%d/applications", job.ID), fiber.Map{
		"description": "I build landing pages",
		"status":      "approved",
	}, freelancer)
	require.Equal(t, http.StatusCreated, status, env.Message)
	app := decode[models.Application](t, env)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, fred.ID, app.UserID)
	assert.Equal(t, job.ID, app.JobID)

	status, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d/applications", job.ID), nil, freelancer)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = e.do(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d/applications", job.ID), nil, employer)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"fred"`)

	path := fmt.Sprintf("/api/applications/%d/status", app.ID)
	status, _ = e.do(t, http.MethodPut, path, fiber.Map{"status": "approved"}, freelancer)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPut, path, fiber.Map{"status": "pending"}, employer)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPut, "/api/applications/999/status", fiber.Map{"status": "approved"}, employer)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = e.do(t, http.MethodPut, path, fiber.Map{"status": "approved"}, employer)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.ApplicationApproved, decode[models.Application](t, env).Status)

	status, env = e.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/applications", fred.ID), nil, freelancer)
	require.Equal(t, http.StatusOK, status)
	var mine []struct {
		Status models.ApplicationStatus `json:"status"`
		Job    *models.Job              `json:"job"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, models.ApplicationApproved, mine[0].Status)
	assert.Equal(t, job.ID, mine[0].Job.ID)
}

func TestJobFiltersAndOwnerUpdate(t *testing.T) {
	e := newTestEnv(t)
	_, employer := e.register(t, "emma", models.RoleEmployer)
	job := createJob(t, e, employer)
	createJob(t, e, employer)

	status, env := e.do(t, http.MethodPut, fmt.Sprintf("/api/jobs/%d", job.ID), fiber.Map{"status": "closed"}, employer)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = e.do(t, http.MethodGet, "/api/jobs?status=open&jobType=remote", nil, "")
	require.Equal(t, http.StatusOK, status)
	var open []models.Job
	require.NoError(t, json.Unmarshal(env.Data, &open))
	require.Len(t, open, 1)
	assert.NotEqual(t, job.ID, open[0].ID)

	status, _ = e.do(t, http.MethodGet, "/api/jobs/999", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodGet, "/api/jobs/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReviews(t *testing.T) {
	e := newTestEnv(t)
	_, seller := e.register(t, "fred", models.RoleFreelancer)
	buyer, buyerCookie := e.register(t, "emma", models.RoleEmployer)
	svc := createService(t, e, seller, 40)
	path := fmt.Sprintf("/api/services/%d/reviews", svc.ID)

	status, _ := e.do(t, http.MethodPost, path, fiber.Map{"rating": 5}, seller)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPost, path, fiber.Map{"rating": 9}, buyerCookie)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := e.do(t, http.MethodPost, path, fiber.Map{"rating": 4, "comment": "solid", "userId": 1234}, buyerCookie)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, buyer.ID, decode[models.Review](t, env).UserID)

	status, env = e.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"emma"`)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, fileName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake file bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestServiceImageUpload(t *testing.T) {
	e := newTestEnv(t)
	_, cookie := e.register(t, "fred", models.RoleFreelancer)
	fields := map[string]string{"title": "Logo", "description": "d", "price": "30", "category": "design"}

	resp, env := e.send(t, multipartRequest(t, "/api/services", fields, "image", "logo.PNG"), cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	svc := decode[models.Service](t, env)
	require.NotNil(t, svc.Image)
	assert.True(t, strings.HasPrefix(*svc.Image, "/uploads/services/"))
	assert.True(t, strings.HasSuffix(*svc.Image, ".png"))

	_, err := os.Stat(filepath.Join(e.uploadDir, "services", filepath.Base(*svc.Image)))
	assert.NoError(t, err)

	resp, env = e.send(t, multipartRequest(t, "/api/services", fields, "image", "logo.exe"), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "image must be one of")
}
