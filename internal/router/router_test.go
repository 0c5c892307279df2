package router

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/report-vault/internal/handler"
	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/policy"
	"github.com/iliyamo/report-vault/internal/service"
	"github.com/iliyamo/report-vault/internal/storage"
	"github.com/iliyamo/report-vault/internal/testutil"
)

const (
	strongPW = "dsafldakjhgdagfd21231gadsgas!DAFa"
	weakPW   = "password"
	leakedPW = "mydarlingbob"
)

type testServer struct {
	e     *echo.Echo
	db    *sql.DB
	store *storage.LocalStore
}

func newServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	db := testutil.OpenDB(t)
	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	breached, err := policy.NewBreachedCheck("")
	require.NoError(t, err)
	pol := policy.New(
		policy.LengthCheck{Min: policy.MinLength, Max: policy.MaxLength},
		policy.ComplexityCheck{MinScore: policy.MinScore},
		breached,
	)

	log := logging.Nop()
	events := service.NopPublisher{}
	tokens := service.NewTokenManager(db, "test-secret")
	auth := service.NewAuthService(db, tokens, pol, store, events, log,
		service.HashOptions{Salt: "test-salt", Cost: bcrypt.MinCost})
	reports := service.NewReportService(db, store, events, log)

	e := New(log, maxUpload)
	RegisterRoutes(e)
	Register(e, Deps{
		Auth:          handler.NewAuthHandler(auth),
		Reports:       handler.NewReportHandler(reports, maxUpload),
		Authenticator: tokens,
	})
	return &testServer{e: e, db: db, store: store}
}

func (s *testServer) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, payload any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(payload)
	return s.do(method, path, bytes.NewReader(b), echo.MIMEApplicationJSON, token)
}

type envelope struct {
	Meta struct {
		Code int `json:"code"`
	} `json:"meta"`
	Response json.RawMessage `json:"response"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (int, map[string]any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Meta.Code, "meta.code mirrors the status")
	var m map[string]any
	_ = json.Unmarshal(env.Response, &m)
	return env.Meta.Code, m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out []map[string]any
	require.NoError(t, json.Unmarshal(env.Response, &out))
	return out
}

func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	rec := s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, body := decode(t, rec)
	tok, _ := body["auth_token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (s *testServer) user(t *testing.T, email string) string {
	t.Helper()
	s.register(t, email, strongPW)
	return s.login(t, email, strongPW)
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, token, name, fileName string, content []byte) (int, map[string]any) {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{"name": name, "description": "desc of " + name}, fileName, content)
	return decode(t, s.do(http.MethodPost, "/api/v1/report/upload", body, ct, token))
}

func idOf(t *testing.T, m map[string]any) string {
	t.Helper()
	id, ok := m["id"].(float64)
	require.True(t, ok, "payload has a numeric id: %v", m)
	return strconv.FormatUint(uint64(id), 10)
}

func TestConcreteScenario(t *testing.T) {
	for _, prefix := range []string{"/api/v1", ""} {
		t.Run("prefix="+prefix, func(t *testing.T) {
			s := newServer(t, 1<<20)

			rec := s.json(http.MethodPost, prefix+"/auth/register", "", map[string]string{"email": "a@x.com", "password": strongPW})
			code, body := decode(t, rec)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, handler.MsgRegistered, body["message"])

			rec = s.json(http.MethodPost, prefix+"/auth/login", "", map[string]string{"email": "a@x.com", "password": strongPW})
			code, body = decode(t, rec)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, handler.MsgLoggedIn, body["message"])
			assert.Equal(t, "a@x.com", body["email"])
			assert.EqualValues(t, 1, body["login_count"])
			assert.NotContains(t, body, "password_hash")
			assert.NotContains(t, body, "session_id")
			token := body["auth_token"].(string)

			content := []byte("%PDF-1.4 quarterly numbers")
			mp, ct := multipartBody(t, map[string]string{"name": "r1", "description": "first report"}, "r1.pdf", content)
			code, body = decode(t, s.do(http.MethodPost, prefix+"/report/upload", mp, ct, token))
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, handler.MsgUploaded, body["message"])
			assert.Equal(t, "r1", body["reportname"])
			assert.Equal(t, "r1.pdf", body["filename"])

			list := decodeList(t, s.do(http.MethodGet, prefix+"/report/list", nil, "", token))
			require.Len(t, list, 1)
			assert.Equal(t, "r1", list[0]["name"])
			assert.NotContains(t, list[0], "blob_key")
			id := idOf(t, list[0])
			assert.Equal(t, "/api/v1/report/download/"+id, list[0]["url"])

			rec = s.do(http.MethodGet, prefix+"/report/download/"+id, nil, "", token)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, content, rec.Body.Bytes())
			assert.Equal(t, `attachment; filename=r1.pdf`, rec.Header().Get(echo.HeaderContentDisposition))
			assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))

			code, body = decode(t, s.do(http.MethodGet, prefix+"/auth/logout", nil, "", token))
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, handler.MsgLoggedOut, body["message"])

			code, body = decode(t, s.do(http.MethodGet, prefix+"/report/list", nil, "", token))
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, "You are not authenticated.", body["error"])
		})
	}
}

func TestRegister_Outcomes(t *testing.T) {
	s := newServer(t, 0)
	reg := func(payload any) (int, map[string]any) {
		return decode(t, s.json(http.MethodPost, "/auth/register", "", payload))
	}

	code, body := reg(map[string]string{"email": "", "password": strongPW})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidInput, body["error"])

	code, body = reg(map[string]string{"email": "example@example", "password": strongPW})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidEmail, body["error"])

	for _, pw := range []string{weakPW, leakedPW, "short1!", "example-example.com-123"} {
		code, body = reg(map[string]string{"email": "example@example.com", "password": pw})
		assert.Equal(t, http.StatusForbidden, code, pw)
		assert.Equal(t, handler.MsgVulnerablePassword, body["error"], pw)
	}

	code, _ = reg(map[string]string{"email": "example@example.com", "password": strongPW})
	assert.Equal(t, http.StatusOK, code)

	for _, pw := range []string{strongPW, weakPW} {
		code, body = reg(map[string]string{"email": "example@example.com", "password": pw})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, handler.MsgAlreadyExists, body["error"])
	}

	rec := s.do(http.MethodPost, "/auth/register", strings.NewReader("{not json"), echo.MIMEApplicationJSON, "")
	code, body = decode(t, rec)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidInput, body["error"])
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	s := newServer(t, 0)
	s.register(t, "a@x.com", strongPW)

	wrong := s.json(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope-nope-nope"})
	unknown := s.json(http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@x.com", "password": strongPW})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	_, body := decode(t, wrong)
	assert.Equal(t, handler.MsgInvalidCredentials, body["error"])

	code, _ := decode(t, s.json(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com"}))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestLogin_TracksCallerAddress(t *testing.T) {
	s := newServer(t, 0)
	s.register(t, "a@x.com", strongPW)
	s.login(t, "a@x.com", strongPW)

	_, body := decode(t, s.json(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": strongPW}))
	assert.EqualValues(t, 2, body["login_count"])
	assert.Equal(t, "192.0.2.1", body["last_login_ip"]) // httptest's RemoteAddr
	assert.NotNil(t, body["last_login_at"])
}

func (s *testServer) loginFrom(t *testing.T, headers map[string]string) map[string]any {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"email": "a@x.com", "password": strongPW})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	code, body := decode(t, rec)
	require.Equal(t, http.StatusOK, code)
	return body
}

func TestLogin_IgnoresForwardingHeadersByDefault(t *testing.T) {
	s := newServer(t, 0)
	s.register(t, "a@x.com", strongPW)
	spoofed := map[string]string{
		echo.HeaderXForwardedFor: "6.6.6.6",
		echo.HeaderXRealIP:       "7.7.7.7",
	}

	s.loginFrom(t, spoofed)
	body := s.loginFrom(t, spoofed)
	assert.Equal(t, "192.0.2.1", body["last_login_ip"])
}

func TestLogin_ForwardedForBehindTrustedProxy(t *testing.T) {
	s := newServer(t, 0)
	require.NoError(t, TrustProxies(s.e, []string{"192.0.2.0/24"}))
	s.register(t, "a@x.com", strongPW)
	fwd := map[string]string{echo.HeaderXForwardedFor: "203.0.113.7"}

	s.loginFrom(t, fwd)
	body := s.loginFrom(t, fwd)
	assert.Equal(t, "203.0.113.7", body["last_login_ip"])
}

func TestTrustProxies_RejectsBadCIDR(t *testing.T) {
	e := echo.New()
	require.Error(t, TrustProxies(e, []string{"not-a-cidr"}))
	require.NoError(t, TrustProxies(e, nil))
}

func TestIndex(t *testing.T) {
	s := newServer(t, 0)
	token := s.user(t, "a@x.com")

	code, body := decode(t, s.do(http.MethodGet, "/auth/index", nil, "", token))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.MsgIndex, body["message"])
	assert.Equal(t, "a@x.com", body["user"])
	assert.Equal(t, []any{}, body["roles"])

	for _, tok := range []string{"", "invalidtoken"} {
		code, body = decode(t, s.do(http.MethodGet, "/auth/index", nil, "", tok))
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "You are not authenticated.", body["error"])
	}
}

func TestChangePassword_RevokesToken(t *testing.T) {
	s := newServer(t, 0)
	token := s.user(t, "a@x.com")
	const next = "Another-Very-Strong-Passphrase-42!"

	code, _ := decode(t, s.json(http.MethodPut, "/auth/change_password", token, map[string]string{"current_password": strongPW}))
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body := decode(t, s.json(http.MethodPut, "/auth/change_password", token,
		map[string]string{"current_password": "wrong-password", "new_password": next}))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, handler.MsgInvalidCredentials, body["error"])

	code, _ = decode(t, s.json(http.MethodPut, "/auth/change_password", token,
		map[string]string{"current_password": strongPW, "new_password": weakPW}))
	assert.Equal(t, http.StatusForbidden, code)

	code, body = decode(t, s.json(http.MethodPost, "/auth/change_password", token,
		map[string]string{"current_password": strongPW, "new_password": next}))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.MsgPasswordChanged, body["message"])

	code, _ = decode(t, s.do(http.MethodGet, "/auth/index", nil, "", token))
	assert.Equal(t, http.StatusUnauthorized, code)

	fresh := s.login(t, "a@x.com", next)
	code, _ = decode(t, s.do(http.MethodGet, "/auth/index", nil, "", fresh))
	assert.Equal(t, http.StatusOK, code)
}

func TestLogout_ViaDelete(t *testing.T) {
	s := newServer(t, 0)
	token := s.user(t, "a@x.com")

	code, _ := decode(t, s.do(http.MethodDelete, "/api/v1/auth/logout", nil, "", token))
	require.Equal(t, http.StatusOK, code)
	code, _ = decode(t, s.do(http.MethodDelete, "/api/v1/auth/logout", nil, "", token))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDeleteUser(t *testing.T) {
	s := newServer(t, 1<<20)
	token := s.user(t, "a@x.com")
	code, _ := s.upload(t, token, "r1", "r1.txt", []byte("x"))
	require.Equal(t, http.StatusOK, code)

	code, body := decode(t, s.do(http.MethodDelete, "/auth/delete_user", nil, "", token))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.MsgUserDeleted, body["message"])

	code, _ = decode(t, s.do(http.MethodGet, "/report/list", nil, "", token))
	assert.Equal(t, http.StatusUnauthorized, code)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n))
	assert.Zero(t, n)
	entries, err := os.ReadDir(s.store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The login is gone too.
	code, _ = decode(t, s.json(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": strongPW}))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestReports_CrossOwnerIsNotFound(t *testing.T) {
	s := newServer(t, 1<<20)
	alice := s.user(t, "alice@x.com")
	bob := s.user(t, "bob@x.com")

	code, body := s.upload(t, bob, "bob's", "bob.txt", []byte("secret"))
	require.Equal(t, http.StatusOK, code)
	id := idOf(t, body)

	mp, ct := multipartBody(t, nil, "x.txt", []byte("x"))
	requests := []*httptest.ResponseRecorder{
		s.do(http.MethodGet, "/report/read/"+id, nil, "", alice),
		s.json(http.MethodPut, "/report/update/"+id, alice, map[string]string{"name": "mine now"}),
		s.do(http.MethodPut, "/report/update_file/"+id, mp, ct, alice),
		s.do(http.MethodGet, "/report/download/"+id, nil, "", alice),
		s.do(http.MethodDelete, "/report/delete/"+id, nil, "", alice),
		s.do(http.MethodGet, "/report/read/999999", nil, "", alice),
		s.do(http.MethodGet, "/report/read/not-a-number", nil, "", alice),
	}
	for i, rec := range requests {
		code, body := decode(t, rec)
		assert.Equal(t, http.StatusNotFound, code, "request %d", i)
		assert.Equal(t, handler.MsgReportNotFound, body["error"], "request %d", i)
	}

	// Bob still sees his report unchanged.
	code, body = decode(t, s.do(http.MethodGet, "/report/read/"+id, nil, "", bob))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bob's", body["name"])
	rec := s.do(http.MethodGet, "/report/download/"+id, nil, "", bob)
	assert.Equal(t, "secret", rec.Body.String())
}

func TestUpload_TraversalFilenameStaysInRoot(t *testing.T) {
	s := newServer(t, 1<<20)
	token := s.user(t, "a@x.com")

	code, body := s.upload(t, token, "../../etc/passwd; rm -rf /", "../../../etc/passwd.txt", []byte("root:x:0:0"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "etc_passwd.txt", body["filename"])
	assert.Equal(t, "etc passwd rm -rf", body["reportname"])

	entries, err := os.ReadDir(s.store.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	stored := entries[0].Name()
	assert.True(t, strings.HasSuffix(stored, "_etc_passwd.txt"), stored)
	assert.NotContains(t, stored, "/")
	assert.NotContains(t, stored, "..")

	rec := s.do(http.MethodGet, "/report/download/"+idOf(t, body), nil, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root:x:0:0", rec.Body.String())
	assert.Equal(t, "attachment; filename=etc_passwd.txt", rec.Header().Get(echo.HeaderContentDisposition))
}

func TestUpload_Rejections(t *testing.T) {
	s := newServer(t, 16)
	token := s.user(t, "a@x.com")

	code, body := s.upload(t, token, "r", "malware.exe", []byte("MZ"))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidFile, body["error"])

	code, body = s.upload(t, token, "r", "big.txt", bytes.Repeat([]byte("a"), 17))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidFile, body["error"])

	mp, ct := multipartBody(t, map[string]string{"name": "r", "description": "d"}, "", nil)
	code, body = decode(t, s.do(http.MethodPut, "/report/upload", mp, ct, token))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidInput, body["error"])

	mp, ct = multipartBody(t, map[string]string{"description": "d"}, "ok.txt", []byte("x"))
	code, body = decode(t, s.do(http.MethodPost, "/report/upload", mp, ct, token))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, handler.MsgInvalidInput, body["error"])

	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/report/list", nil, "", token)))
}

func TestUpdateAndUpdateFile(t *testing.T) {
	s := newServer(t, 1<<20)
	token := s.user(t, "a@x.com")
	_, body := s.upload(t, token, "r1", "r1.txt", []byte("v1"))
	id := idOf(t, body)

	code, _ := decode(t, s.json(http.MethodPut, "/report/update/"+id, token, map[string]string{}))
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = decode(t, s.json(http.MethodPut, "/report/update/"+id, token, map[string]string{"name": "renamed"}))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.MsgReportUpdated, body["message"])
	rep := body["report"].(map[string]any)
	assert.Equal(t, "renamed", rep["name"])
	assert.Equal(t, "desc of r1", rep["description"])

	form := strings.NewReader("description=" + "new+description")
	code, body = decode(t, s.do(http.MethodPut, "/report/update/"+id, form, echo.MIMEApplicationForm, token))
	require.Equal(t, http.StatusOK, code)
	rep = body["report"].(map[string]any)
	assert.Equal(t, "renamed", rep["name"])
	assert.Equal(t, "new description", rep["description"])

	mp, ct := multipartBody(t, nil, "v2.png", []byte("\x89PNG"))
	code, body = decode(t, s.do(http.MethodPut, "/report/update_file/"+id, mp, ct, token))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.MsgFileUpdated, body["message"])
	assert.Equal(t, "v2.png", body["report"].(map[string]any)["file_name"])

	rec := s.do(http.MethodGet, "/report/download/"+id, nil, "", token)
	assert.Equal(t, "\x89PNG", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	entries, err := os.ReadDir(s.store.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the replaced blob is removed")
}

func TestDeleteReport(t *testing.T) {
	s := newServer(t, 1<<20)
	token := s.user(t, "a@x.com")
	_, body := s.upload(t, token, "r1", "r1.txt", []byte("v1"))
	id := idOf(t, body)

	code, body := decode(t, s.do(http.MethodDelete, "/report/delete/"+id, nil, "", token))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, handler.MsgReportDeleted, body["message"])

	code, _ = decode(t, s.do(http.MethodDelete, "/report/delete/"+id, nil, "", token))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/report/list", nil, "", token)))
}

func TestEnvelopeAndHeadersOnFrameworkErrors(t *testing.T) {
	s := newServer(t, 0)

	rec := s.do(http.MethodGet, "/no/such/route", nil, "", "")
	code, body := decode(t, rec)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, body["error"])

	rec = s.do(http.MethodGet, "/auth/register", nil, "", "")
	code, _ = decode(t, rec)
	assert.Equal(t, http.StatusMethodNotAllowed, code)

	h := rec.Header()
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
	assert.NotEmpty(t, h.Get("Content-Security-Policy"))
	assert.NotEmpty(t, h.Get(echo.HeaderXRequestID))

	rec = s.do(http.MethodGet, "/healthz", nil, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
