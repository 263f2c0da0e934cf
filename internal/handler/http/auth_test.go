package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aviral-m/Backend-Project/internal/domain"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
	"github.com/aviral-m/Backend-Project/pkg/health"
	"github.com/aviral-m/Backend-Project/pkg/httputil"
	"github.com/aviral-m/Backend-Project/pkg/middleware"
)

func setupRouter(userRepo *mockUserRepository, videoRepo *mockVideoRepository) http.Handler {
	logger := handlerTestLogger()
	return NewRouter(
		newUserServiceForHandlers(userRepo),
		newVideoServiceForHandlers(videoRepo),
		userRepo,
		handlerTestJWTManager(),
		health.NewHandler(),
		logger,
		middleware.CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
	)
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	router := setupRouter(userRepo, new(mockVideoRepository))

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "chiwempress" && u.AvatarURL != ""
	})).Return(nil)

	body, contentType := multipartBody(t,
		map[string]string{
			"username": "ChiweMpress",
			"email":    "chiwe@example.com",
			"fullName": "Chiwe Mpress",
			"password": "sturdy-pass1",
		},
		map[string]fileSpec{"avatar": pngFile()},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeSuccess(t, rec)
	assert.Equal(t, "user registered successfully", resp.Message)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "chiwempress", data["username"])
	// Credentials never appear in the outward-facing projection.
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "password_hash")
	assert.NotContains(t, data, "refresh_token_hash")
	userRepo.AssertExpectations(t)
}

func TestRegister_MissingAvatar(t *testing.T) {
	router := setupRouter(new(mockUserRepository), new(mockVideoRepository))

	body, contentType := multipartBody(t,
		map[string]string{
			"username": "chiwempress",
			"email":    "chiwe@example.com",
			"fullName": "Chiwe Mpress",
			"password": "sturdy-pass1",
		},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "avatar")
}

func TestLogin_SetsCookies(t *testing.T) {
	userRepo := new(mockUserRepository)
	router := setupRouter(userRepo, new(mockVideoRepository))

	user := sampleUser()
	user.PasswordHash = hashedPassword(t, "sturdy-pass1")
	userRepo.On("GetByUsernameOrEmail", mock.Anything, "chiwempress").Return(user, nil)
	userRepo.On("SetRefreshTokenHash", mock.Anything, user.ID, mock.Anything).Return(nil)

	payload, _ := json.Marshal(map[string]string{"username": "chiwempress", "password": "sturdy-pass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec, "accessToken")
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.NotEmpty(t, access.Value)

	refresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)

	resp := decodeSuccess(t, rec)
	assert.Equal(t, "user logged in successfully", resp.Message)
	userRepo.AssertExpectations(t)
}

func TestLogin_UnknownUserIs404(t *testing.T) {
	userRepo := new(mockUserRepository)
	router := setupRouter(userRepo, new(mockVideoRepository))

	userRepo.On("GetByUsernameOrEmail", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	payload, _ := json.Marshal(map[string]string{"username": "ghost", "password": "whatever1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.False(t, resp.Success)
}

func TestLogin_RepositoryOutageIs500(t *testing.T) {
	userRepo := new(mockUserRepository)
	router := setupRouter(userRepo, new(mockVideoRepository))

	userRepo.On("GetByUsernameOrEmail", mock.Anything, "aviral").
		Return(nil, errors.New("connection refused"))

	payload, _ := json.Marshal(map[string]string{"username": "aviral", "password": "whatever1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	// Dependency failures never leak their detail to the client.
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestLogin_MissingIdentifier(t *testing.T) {
	router := setupRouter(new(mockUserRepository), new(mockVideoRepository))

	payload, _ := json.Marshal(map[string]string{"password": "whatever1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Contains(t, resp.Message, "username or email")
}

func TestLogout_ClearsCookies(t *testing.T) {
	userRepo := new(mockUserRepository)
	router := setupRouter(userRepo, new(mockVideoRepository))

	user := sampleUser()
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("SetRefreshTokenHash", mock.Anything, user.ID, (*string)(nil)).Return(nil)

	req := authedRequest(t, httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), user)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec, "accessToken")
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Equal(t, -1, access.MaxAge)
	userRepo.AssertExpectations(t)
}

func TestLogout_RequiresAuth(t *testing.T) {
	router := setupRouter(new(mockUserRepository), new(mockVideoRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "access token is required", resp.Message)
}

func TestRefreshToken_FromCookie(t *testing.T) {
	userRepo := new(mockUserRepository)
	router := setupRouter(userRepo, new(mockVideoRepository))

	user := sampleUser()
	token, err := handlerTestJWTManager().GenerateRefreshToken(user.ID)
	require.NoError(t, err)
	hash := sha256Hex(token)
	user.RefreshTokenHash = &hash

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("RotateRefreshTokenHash", mock.Anything, user.ID, hash, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: token})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, cookieByName(rec, "accessToken"))
	require.NotNil(t, cookieByName(rec, "refreshToken"))

	resp := decodeSuccess(t, rec)
	assert.Equal(t, "access token refreshed successfully", resp.Message)
	userRepo.AssertExpectations(t)
}

func TestRefreshToken_MissingToken(t *testing.T) {
	router := setupRouter(new(mockUserRepository), new(mockVideoRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "refresh token is required", resp.Message)
}
