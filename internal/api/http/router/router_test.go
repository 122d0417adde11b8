package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apictx "github.com/dtroode/farmgate-identity/internal/api/context"
	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/mocks"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/password"
	redisrepo "github.com/dtroode/farmgate-identity/internal/repository/redis"
	"github.com/dtroode/farmgate-identity/internal/service"
	"github.com/dtroode/farmgate-identity/internal/testutil"
	"github.com/dtroode/farmgate-identity/internal/token"
)

func TestRouter_Routes(t *testing.T) {
	verification := &mocks.VerificationService{}
	auth := &mocks.AuthService{}
	guard := &mocks.Guard{}
	guard.On("Authenticate", mock.Anything, "").
		Return(model.Identity{}, apierror.NewErrUnauthenticated("Unauthorized - No Access Token Provided"))
	verification.On("CancelVerification", mock.Anything, "ana@x.com").Return(nil)

	h := New(verification, auth, guard, apictx.NewManager(), Options{RequestTimeout: time.Second}, testutil.MakeNoopLogger()).Register()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/api/auth/verify/cancel", `{"contact":"ana@x.com"}`, http.StatusOK},
		{http.MethodGet, "/api/auth/profile", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/identities/" + uuid.NewString(), "", http.StatusUnauthorized},
		{http.MethodGet, "/api/auth/login", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_AdminLookupRequiresAdmin(t *testing.T) {
	buyer := model.Identity{ID: uuid.New(), Role: model.RoleBuyer}
	admin := model.Identity{ID: uuid.New(), Role: model.RoleAdmin}
	target := uuid.New()

	auth := &mocks.AuthService{}
	auth.On("Identity", mock.Anything, target).Return(model.Identity{ID: target, Role: model.RoleFarmer}, nil)

	guard := &mocks.Guard{}
	guard.On("Authenticate", mock.Anything, "buyer-token").Return(buyer, nil)
	guard.On("Authenticate", mock.Anything, "admin-token").Return(admin, nil)
	guard.On("RequireRole", buyer, model.Roles(model.RoleAdmin)).Return(apierror.NewErrForbidden("Forbidden - Admins Only"))
	guard.On("RequireRole", admin, model.Roles(model.RoleAdmin)).Return(nil)

	h := New(&mocks.VerificationService{}, auth, guard, apictx.NewManager(), Options{}, testutil.MakeNoopLogger()).Register()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/identities/"+target.String(), nil)
	req.Header.Set("Authorization", "Bearer buyer-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/identities/"+target.String(), nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), target.String())
}

// Two logins for the same identity; the first session's refresh cookie is
// rejected afterwards and the client's cookies are cleared.
func TestRouter_SupersededRefreshClearsCookies(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	log := testutil.MakeNoopLogger()

	hasher, err := password.NewArgon2(password.Params{Time: 1, MemKiB: 8 * 1024, Par: 1})
	require.NoError(t, err)
	jwt, err := token.NewJWT("access-secret", "refresh-secret")
	require.NoError(t, err)

	hash, err := hasher.Hash("secret")
	require.NoError(t, err)
	ana := model.Identity{ID: uuid.New(), Name: "Ana", Email: "ana@x.com", PasswordHash: hash, Role: model.RoleBuyer}

	identities := &mocks.IdentityStore{}
	identities.On("GetByContact", mock.Anything, model.Contact{Kind: model.ContactEmail, Value: "ana@x.com"}).Return(ana, nil)
	identities.On("GetByID", mock.Anything, ana.ID).Return(ana, nil)

	tokens := service.NewTokenService(jwt, redisrepo.NewSessionRepository(rdb), log)
	auth := service.NewAuth(identities, hasher, redisrepo.NewVerificationRepository(rdb, 5), tokens, log)
	guard := service.NewGuard(identities, jwt, log)

	h := New(&mocks.VerificationService{}, auth, guard, apictx.NewManager(), Options{}, log).Register()

	login := func() map[string]*http.Cookie {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"contact":"ana@x.com","password":"secret"}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		out := map[string]*http.Cookie{}
		for _, c := range rec.Result().Cookies() {
			out[c.Name] = c
		}
		return out
	}

	first := login()
	second := login()

	// The first session's access token stays valid until it expires.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.AddCookie(first["accessToken"])
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(first["refreshToken"])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid refresh token"}`, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
	assert.Len(t, rec.Result().Cookies(), 2)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh-token", nil)
	req.AddCookie(second["refreshToken"])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "reuse of a superseded token drops the live session")
}
