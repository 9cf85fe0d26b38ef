package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/models"
	"blogapi/internal/repositories"
	"blogapi/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app for testing with a private in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, repositories.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := repositories.NewGORMStore(db)
	require.NoError(t, store.AutoMigrate())
	t.Cleanup(func() { _ = store.Close() })

	log, _ := test.NewNullLogger()
	app := server.New(server.Deps{
		Config: &config.Config{
			AppName:            "blogapi-test",
			JWTSecret:          "test_jwt_secret",
			JWTExpire:          time.Hour,
			CookieSecure:       true,
			CORSAllowedOrigins: "http://localhost:3000",
		},
		Store: store,
		Log:   log,
	})
	return app, store
}

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *apiClient) do(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func signup(t *testing.T, app *fiber.App, email string) (*apiClient, string) {
	t.Helper()
	client := &apiClient{t: t, app: app}
	resp, body := client.do(http.MethodPost, "/user/signup", map[string]string{
		"email":     email,
		"password":  "password123",
		"firstName": "Testy",
		"lastName":  "Tester",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	client.token = body["token"].(string)
	user := body["user"].(map[string]interface{})
	return client, user["id"].(string)
}

func TestAuthSignupLoginAndCurrentUser(t *testing.T) {
	app, store := setupApp(t)
	anon := &apiClient{t: t, app: app}

	resp, body := anon.do(http.MethodPost, "/user/signup", map[string]string{
		"email":     "test@example.com",
		"password":  "password123",
		"firstName": "Testy",
		"lastName":  "Tester",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotContains(t, user, "password")

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "signup sets the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)

	// Duplicate email is rejected and no second record exists.
	resp, body = anon.do(http.MethodPost, "/user/signup", map[string]string{
		"email":    "test@example.com",
		"password": "otherpass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ConflictError", body["errorname"])
	assert.Equal(t, "test@example.com is already registered", body["message"])
	var count int64
	require.NoError(t, store.(*repositories.GORMStore).DB().Model(&models.User{}).Where("email = ?", "test@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Login
	resp, body = anon.do(http.MethodPost, "/user/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	client := &apiClient{t: t, app: app, token: body["token"].(string)}

	resp, body = anon.do(http.MethodPost, "/user/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AuthError", body["errorname"])

	resp, _ = anon.do(http.MethodPost, "/user/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = anon.do(http.MethodPost, "/user/login", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ValidationError", body["errorname"])

	// Current user
	resp, body = client.do(http.MethodPost, "/user/currentUser", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Testy", body["user"].(map[string]interface{})["firstName"])

	resp, _ = anon.do(http.MethodPost, "/user/currentUser", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout clears the cookie.
	resp, _ = anon.do(http.MethodGet, "/user/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestSignupValidation(t *testing.T) {
	app, _ := setupApp(t)
	anon := &apiClient{t: t, app: app}

	resp, body := anon.do(http.MethodPost, "/user/signup", map[string]string{
		"email":     "bad@",
		"password":  "abc",
		"firstName": "Al",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ValidationError", body["errorname"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "firstName")
}

func TestProtectedEndpointsWithoutAuth(t *testing.T) {
	app, store := setupApp(t)
	owner, userID := signup(t, app, "owner@example.com")

	resp, body := owner.do(http.MethodPost, "/post/create-post/"+userID, map[string]string{
		"title": "Hello world", "excerpt": "excerpt", "content": "content",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := body["post"].(map[string]interface{})["id"].(string)

	anon := &apiClient{t: t, app: app}
	requests := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodPost, "/post/create-post/" + userID, map[string]string{"title": "t", "excerpt": "e", "content": "c"}},
		{http.MethodPut, "/post/update-post/" + postID, map[string]string{"title": "changed"}},
		{http.MethodDelete, "/post/delete-post/" + postID, nil},
		{http.MethodPost, "/post/addComments/" + postID + "/" + userID, map[string]string{"data": "hi"}},
	}
	for _, r := range requests {
		resp, body := anon.do(r.method, r.path, r.body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.path)
		assert.Equal(t, "AuthError", body["errorname"], r.path)
	}

	forged := &apiClient{t: t, app: app, token: owner.token + "x"}
	resp, _ = forged.do(http.MethodDelete, "/post/delete-post/"+postID, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Nothing changed.
	ctx := context.Background()
	posts, err := store.Posts().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello world", posts[0].Title)
	comments, err := store.Comments().ListByPost(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestPostLifecycle(t *testing.T) {
	app, _ := setupApp(t)
	client, userID := signup(t, app, "author@example.com")

	// Missing content
	resp, body := client.do(http.MethodPost, "/post/create-post/"+userID, map[string]string{
		"title": "t", "excerpt": "e",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "All fields are required", body["message"])
	_, body = client.do(http.MethodGet, "/post/view-posts", nil)
	assert.Empty(t, body["posts"])

	for _, title := range []string{"hello world", "Say HELLO", "goodbye"} {
		resp, _ := client.do(http.MethodPost, "/post/create-post/"+userID, map[string]string{
			"title": title, "excerpt": "excerpt", "content": "content",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body = client.do(http.MethodGet, "/post/view-posts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 3)
	first := posts[0].(map[string]interface{})
	assert.Equal(t, "hello world", first["title"])
	assert.Equal(t, userID, first["userId"])
	postID := first["id"].(string)

	resp, body = client.do(http.MethodGet, "/post/view-post/"+postID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello world", body["post"].(map[string]interface{})["title"])

	resp, body = client.do(http.MethodGet, "/post/view-post/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NotFoundError", body["errorname"])

	// Update keeps unspecified fields.
	resp, body = client.do(http.MethodPut, "/post/update-post/"+postID, map[string]string{"title": "hello again"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := body["post"].(map[string]interface{})
	assert.Equal(t, "hello again", updated["title"])
	assert.Equal(t, "excerpt", updated["excerpt"])

	resp, _ = client.do(http.MethodPut, "/post/update-post/missing", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Search returns a bare array.
	req := httptest.NewRequest(http.MethodGet, "/post/search?title=Hello", nil)
	searchResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer searchResp.Body.Close()
	var hits []models.Post
	require.NoError(t, json.NewDecoder(searchResp.Body).Decode(&hits))
	require.Len(t, hits, 2)
	assert.Equal(t, "hello again", hits[0].Title)
	assert.Equal(t, "Say HELLO", hits[1].Title)
}

func TestDeletePostCascadesComments(t *testing.T) {
	app, _ := setupApp(t)
	client, userID := signup(t, app, "author@example.com")

	postIDs := make([]string, 0, 2)
	for _, title := range []string{"P1", "P2"} {
		resp, body := client.do(http.MethodPost, "/post/create-post/"+userID, map[string]string{
			"title": title, "excerpt": "excerpt", "content": "content",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		postID := body["post"].(map[string]interface{})["id"].(string)
		postIDs = append(postIDs, postID)

		for _, text := range []string{"first", "second"} {
			resp, body := client.do(http.MethodPost, "/post/addComments/"+postID+"/"+userID, map[string]string{"data": text})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, text, body["comment"].(map[string]interface{})["text"])
		}
	}

	resp, body := client.do(http.MethodGet, "/post/fetchComments/"+postIDs[1], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 2)
	author := comments[0].(map[string]interface{})["userId"].(map[string]interface{})
	assert.Equal(t, "Testy", author["firstName"])
	assert.Equal(t, "Tester", author["lastName"])

	resp, body = client.do(http.MethodDelete, "/post/delete-post/"+postIDs[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Post deleted successfully", body["message"])

	_, body = client.do(http.MethodGet, "/post/fetchComments/"+postIDs[0], nil)
	assert.Empty(t, body["comments"])
	_, body = client.do(http.MethodGet, "/post/fetchComments/"+postIDs[1], nil)
	assert.Len(t, body["comments"], 2)

	resp, _ = client.do(http.MethodDelete, "/post/delete-post/"+postIDs[0], nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddCommentToMissingPost(t *testing.T) {
	app, store := setupApp(t)
	client, userID := signup(t, app, "author@example.com")

	resp, body := client.do(http.MethodPost, "/post/addComments/missing/"+userID, map[string]string{"data": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post not found", body["message"])

	comments, err := store.Comments().ListByPost(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestMiscRoutes(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "Hello", string(raw))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/no/such/route", nil), -1)
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "404 - Not Found", string(raw))
}
