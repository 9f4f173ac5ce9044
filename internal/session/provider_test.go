package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"chat-relay-go/internal/config"
	"chat-relay-go/internal/repository"
	"chat-relay-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = CookieOptions{Name: "chat_session"}

func init() {
	gin.SetMode(gin.TestMode)
}

// newContext 构造一个携带给定 cookie 的请求上下文。
func newContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	c.Request = req
	return c, rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testOpts.Name {
			return ck
		}
	}
	t.Fatalf("no %s cookie set", testOpts.Name)
	return nil
}

func TestCookieProvider_StableAcrossRequests(t *testing.T) {
	p := NewCookieProvider(token.NewSessionTokenManager("secret"), testOpts)

	c1, rec1 := newContext()
	first, err := p.Resolve(c1)
	require.NoError(t, err)
	assert.Len(t, first, token.SessionIDBytes*2)

	ck := sessionCookie(t, rec1)
	assert.True(t, ck.HttpOnly)

	c2, rec2 := newContext(ck)
	second, err := p.Resolve(c2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, rec2.Result().Cookies(), "known session must not be re-issued")
}

func TestCookieProvider_StableWithinRequest(t *testing.T) {
	p := NewCookieProvider(token.NewSessionTokenManager("secret"), testOpts)

	c, _ := newContext()
	a, err := p.Resolve(c)
	require.NoError(t, err)
	b, err := p.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCookieProvider_DistinctClients(t *testing.T) {
	p := NewCookieProvider(token.NewSessionTokenManager("secret"), testOpts)

	c1, _ := newContext()
	c2, _ := newContext()
	a, err := p.Resolve(c1)
	require.NoError(t, err)
	b, err := p.Resolve(c2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCookieProvider_TamperedCookieGetsFreshSession(t *testing.T) {
	forged, err := token.NewSessionTokenManager("other-secret").GenerateToken("victim")
	require.NoError(t, err)

	p := NewCookieProvider(token.NewSessionTokenManager("secret"), testOpts)
	c, rec := newContext(&http.Cookie{Name: testOpts.Name, Value: forged})
	sid, err := p.Resolve(c)
	require.NoError(t, err)
	assert.NotEqual(t, "victim", sid)
	assert.NotEmpty(t, sessionCookie(t, rec).Value)
}

func TestCookieProviderFromConfig_SurvivesRestart(t *testing.T) {
	cfg := config.SessionConfig{Store: "cookie", CookieName: testOpts.Name, Secret: "persistent-secret"}

	before, err := NewCookieProviderFromConfig(cfg)
	require.NoError(t, err)
	c1, rec1 := newContext()
	first, err := before.Resolve(c1)
	require.NoError(t, err)

	// 使用同一份配置重新创建，模拟进程重启
	after, err := NewCookieProviderFromConfig(cfg)
	require.NoError(t, err)
	c2, rec2 := newContext(sessionCookie(t, rec1))
	second, err := after.Resolve(c2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, rec2.Result().Cookies())
}

func TestCookieProviderFromConfig_RequiresSecret(t *testing.T) {
	_, err := NewCookieProviderFromConfig(config.SessionConfig{Store: "cookie", CookieName: testOpts.Name})
	assert.Error(t, err)
}

type memorySessionRepository struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{data: make(map[string]string)}
}

func (m *memorySessionRepository) GetSessionID(_ context.Context, tok string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	sid, ok := m.data[tok]
	if !ok {
		return "", repository.ErrSessionNotFound
	}
	return sid, nil
}

func (m *memorySessionRepository) SaveSessionID(_ context.Context, tok, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[tok] = sid
	return nil
}

func TestRedisProvider_StableAcrossRequests(t *testing.T) {
	repo := newMemorySessionRepository()
	p := NewRedisProvider(repo, testOpts)

	c1, rec1 := newContext()
	first, err := p.Resolve(c1)
	require.NoError(t, err)

	ck := sessionCookie(t, rec1)
	assert.NotEqual(t, first, ck.Value, "cookie carries an opaque token, not the id")

	c2, _ := newContext(ck)
	second, err := p.Resolve(c2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRedisProvider_UnknownTokenGetsFreshSession(t *testing.T) {
	p := NewRedisProvider(newMemorySessionRepository(), testOpts)

	c, rec := newContext(&http.Cookie{Name: testOpts.Name, Value: "stale"})
	sid, err := p.Resolve(c)
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	assert.NotEqual(t, "stale", sessionCookie(t, rec).Value)
}

func TestRedisProvider_StoreFailure(t *testing.T) {
	repo := newMemorySessionRepository()
	repo.err = errors.New("connection refused")
	p := NewRedisProvider(repo, testOpts)

	c, _ := newContext(&http.Cookie{Name: testOpts.Name, Value: "tok"})
	_, err := p.Resolve(c)
	assert.Error(t, err)

	c, _ = newContext()
	_, err = p.Resolve(c)
	assert.Error(t, err)
}
