package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpndb/internal/config"
	"fpndb/internal/model"
	"fpndb/internal/notify"
	"fpndb/internal/store/memory"
)

// captureMailer records the last verification code handed to the mail
// channel, standing in for Mailjet.
type captureMailer struct {
	email string
	code  string
}

func (m *captureMailer) SendVerificationCode(_ context.Context, email, _, code string) error {
	m.email = email
	m.code = code
	return nil
}

// captureChat records the last submitted record handed to the chat
// channel; the approval link in the real flow carries the same id.
type captureChat struct {
	last model.Record
}

func (c *captureChat) NotifySubmission(_ context.Context, rec model.Record) error {
	c.last = rec
	return nil
}

type testEnv struct {
	server  *Server
	handler http.Handler
	store   *memory.Store
	mailer  *captureMailer
	chat    *captureChat
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.NewStore()
	mailer := &captureMailer{}
	chat := &captureChat{}
	gw := notify.NewWithChannels(zerolog.Nop(), mailer, nil, chat)
	srv := NewServer(zerolog.Nop(), config.Config{SecretKey: "test-secret"}, st, gw)

	return &testEnv{
		server:  srv,
		handler: srv.Handler(),
		store:   st,
		mailer:  mailer,
		chat:    chat,
	}
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// verifiedSession walks signup+verify for the email and returns the
// session cookie.
func (e *testEnv) verifiedSession(t *testing.T, email string) *http.Cookie {
	t.Helper()

	rec := e.postForm("/signup", url.Values{"email": {email}, "name": {"Tester"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.NotEmpty(t, e.mailer.code)

	rec = e.postForm("/verify", url.Values{"email": {email}, "code": {e.mailer.code}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set after verification")
	return nil
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	// Missing name is a validation error.
	rec := env.postForm("/signup", url.Values{"email": {"a@x.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")

	rec = env.postForm("/signup", url.Values{
		"email": {"a@x.com"}, "name": {"Ann"}, "institution": {"Uni"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/verify", rec.Header().Get("Location"))
	assert.Equal(t, "a@x.com", env.mailer.email)
	assert.NotEmpty(t, env.mailer.code)

	// Re-signup issues a fresh code.
	first := env.mailer.code
	rec = env.postForm("/signup", url.Values{"email": {"a@x.com"}, "name": {"Ann"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotEqual(t, first, env.mailer.code)
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/signup", url.Values{"email": {"a@x.com"}, "name": {"Ann"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// Wrong code: single undifferentiated message, no session.
	rec = env.postForm("/verify", url.Values{"email": {"a@x.com"}, "code": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or verification code")
	assert.Empty(t, rec.Result().Cookies())

	// Correct code establishes a session and redirects to /submit.
	rec = env.postForm("/verify", url.Values{"email": {"a@x.com"}, "code": {env.mailer.code}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/submit", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	email, err := env.server.sessions.verify(session.Value)
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestSubmitRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/submit")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))

	rec = env.postForm("/submit", url.Values{"algorithm": {"BLAST"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)
	session := env.verifiedSession(t, "a@x.com")

	rec := env.get("/submit", session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")

	// Missing required field.
	rec = env.postForm("/submit", url.Values{
		"sequence": {"ACGT"}, "result_type": {"false_positive"},
	}, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "algorithm_required")

	rec = env.postForm("/submit", url.Values{
		"algorithm":   {"BLAST"},
		"sequence":    {"ACGTACGT"},
		"allele":      {"HLA-A*02:01"},
		"result_type": {"false_positive"},
		"description": {"primer mismatch"},
	}, session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// The chat channel saw the new pending record.
	assert.NotEmpty(t, env.chat.last.ID)
	assert.Equal(t, model.RecordStatusPending, env.chat.last.Status)
	assert.Equal(t, "a@x.com", env.chat.last.Submitter)
}

func TestFullLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Homepage starts at zero.
	rec := env.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approved_count":0`)

	session := env.verifiedSession(t, "a@x.com")

	rec = env.postForm("/submit", url.Values{
		"algorithm":   {"BLAST"},
		"sequence":    {"ACGTACGT"},
		"result_type": {"false_negative"},
	}, session)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	id := env.chat.last.ID
	require.NotEmpty(t, id)

	// Pending record is invisible to browse and record view.
	rec = env.get("/browse")
	require.Equal(t, http.StatusOK, rec.Code)

	var browse struct {
		Records    []model.Record `json:"records"`
		Algorithms []string       `json:"algorithms"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&browse))
	assert.Empty(t, browse.Records)

	rec = env.get("/record/" + id)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown ids cannot be approved.
	rec = env.get("/approve/unknown-id")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Approval makes the record public everywhere.
	rec = env.get("/approve/" + id)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.get("/record/" + id)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"approved"`)

	rec = env.get("/browse?algorithm=BLAST&result_type=false_negative")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&browse))
	assert.Len(t, browse.Records, 1)
	assert.Equal(t, id, browse.Records[0].ID)
	assert.Equal(t, []string{"BLAST"}, browse.Algorithms)

	// Filters that do not match hide it again.
	rec = env.get("/browse?algorithm=HMMER")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&browse))
	assert.Empty(t, browse.Records)

	rec = env.get("/")
	assert.Contains(t, rec.Body.String(), `"approved_count":1`)

	// Logout clears the session; submit bounces back to signup.
	rec = env.get("/logout", session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/browse", url.Values{})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.postForm("/", url.Values{})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
