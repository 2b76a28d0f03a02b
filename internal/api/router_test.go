package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
	"github.com/skyline-residence/building-api/internal/core/service"
	"github.com/skyline-residence/building-api/internal/infrastructure/db/memory"
	"github.com/skyline-residence/building-api/internal/infrastructure/http/handlers"
	"github.com/skyline-residence/building-api/internal/infrastructure/queue"
)

const testSecret = "test-secret"

type stubProcessor struct{ last ports.PaymentIntentInput }

func (p *stubProcessor) CreatePaymentIntent(_ context.Context, in ports.PaymentIntentInput) (string, error) {
	p.last = in
	return "pi_test_secret", nil
}

type mapIdempotency struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *mapIdempotency) Claim(_ context.Context, scope, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	k := scope + "|" + key
	if m.seen[k] {
		return false, nil
	}
	m.seen[k] = true
	return true, nil
}

func (m *mapIdempotency) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, scope+"|"+key)
	return nil
}

type testEnv struct {
	e          *echo.Echo
	users      *memory.UserRepository
	agreements *memory.AgreementRepository
	apartments *memory.ApartmentRepository
	audit      *memory.AuditRepository
	dispatcher *queue.AuditDispatcher
	processor  *stubProcessor
}

func newTestEnv(t *testing.T, opts service.AgreementOptions) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	users := memory.NewUserRepository(
		domain.User{Email: "admin@x.com", Role: domain.RoleAdmin},
		domain.User{Email: "member@x.com", Role: domain.RoleMember},
		domain.User{Email: "user@x.com", Role: domain.RoleUser},
		domain.User{Email: "a@x.com"},
	)
	agreements := memory.NewAgreementRepository()
	apartments := memory.NewApartmentRepository(
		domain.Apartment{ApartmentNo: "A1", BlockName: "A", FloorNo: 1, Rent: 1200},
	)
	audit := memory.NewAuditRepository()
	dispatcher := queue.NewAuditDispatcher(2, audit, log)
	dispatcher.Start(context.Background())
	t.Cleanup(func() { _ = dispatcher.Stop(context.Background()) })

	processor := &stubProcessor{}
	registry := prometheus.NewRegistry()

	e := NewRouter(Deps{
		Auth:       service.NewAuthService(testSecret, time.Hour),
		Users:      service.NewUserService(users, log),
		Agreements: service.NewAgreementService(agreements, users, memory.Transactor{}, dispatcher, opts, log),
		Listings:   service.NewListingService(apartments, memory.NewAnnouncementRepository(), log),
		Payments:   service.NewPaymentService(memory.NewPaymentRepository(), processor, &mapIdempotency{}, "usd", log),
		Checks: []handlers.Check{
			{Name: "store", Ping: func(context.Context) error { return nil }},
		},
		Logger:     log,
		Registerer: registry,
		Gatherer:   registry,
	})

	return &testEnv{
		e:          e,
		users:      users,
		agreements: agreements,
		apartments: apartments,
		audit:      audit,
		dispatcher: dispatcher,
		processor:  processor,
	}
}

func (env *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/jwt", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createAgreement(t *testing.T, email string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/agreements", map[string]any{
		"userName":    "Applicant",
		"email":       email,
		"floorNo":     1,
		"blockName":   "A",
		"apartmentNo": "A1",
		"rent":        1200,
		"status":      "checked",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res domain.InsertResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.InsertedID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorResponse](t, rec).Error
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	routes := []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/a@x.com"},
		{http.MethodGet, "/users/admin/a@x.com"},
		{http.MethodGet, "/users/member/a@x.com"},
		{http.MethodGet, "/agreements"},
		{http.MethodGet, "/agreements/a@x.com"},
		{http.MethodPatch, "/agreements-accept/65f000000000000000000000/a@x.com"},
		{http.MethodPatch, "/agreements-reject/65f000000000000000000000"},
		{http.MethodPatch, "/member-remove/65f000000000000000000000"},
		{http.MethodGet, "/announcements"},
		{http.MethodPost, "/announcements"},
		{http.MethodGet, "/payments/a@x.com"},
		{http.MethodPost, "/payments"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := env.do(t, r.method, r.path, nil, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "unauthorized access", errorOf(t, rec))
		})
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	issued := time.Now().Add(-2 * time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "admin@x.com",
		"iat":   issued.Unix(),
		"exp":   issued.Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/users", nil, signed)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})
	good := env.token(t, "admin@x.com")

	for _, header := range []string{good, "Basic " + good, "Bearer", "Bearer a.b.c"} {
		rec := env.do(t, http.MethodGet, "/users", nil, "", echo.HeaderAuthorization, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAdminRoutesForbidNonAdmins(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	for _, email := range []string{"member@x.com", "user@x.com", "a@x.com", "stranger@x.com"} {
		tok := env.token(t, email)
		for _, r := range []struct{ method, path string }{
			{http.MethodGet, "/users"},
			{http.MethodGet, "/agreements"},
			{http.MethodPatch, "/agreements-reject/65f000000000000000000000"},
			{http.MethodPatch, "/member-remove/65f000000000000000000000"},
		} {
			rec := env.do(t, r.method, r.path, nil, tok)
			require.Equal(t, http.StatusForbidden, rec.Code, "%s %s as %s", r.method, r.path, email)
			require.Equal(t, "forbidden access", errorOf(t, rec))
		}
	}

	rec := env.do(t, http.MethodGet, "/users", nil, env.token(t, "admin@x.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]domain.User](t, rec), 4)
}

func TestRegistrationIsIdempotent(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	body := map[string]string{"name": "New", "email": "new@x.com", "role": "admin"}
	first := env.do(t, http.MethodPost, "/users", body, "")
	require.Equal(t, http.StatusCreated, first.Code)
	created := decode[domain.InsertResult](t, first)
	require.True(t, created.Acknowledged)
	require.NotEmpty(t, created.InsertedID)

	second := env.do(t, http.MethodPost, "/users", body, "")
	require.Equal(t, http.StatusOK, second.Code)
	require.JSONEq(t, `{"message":"user already exists","insertedId":null}`, second.Body.String())

	u, err := env.users.FindByEmail(context.Background(), "new@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleNone, u.Role, "a client supplied role is never stored")

	// Re-registering an admin leaves the role alone.
	rec := env.do(t, http.MethodPost, "/users", map[string]string{"email": "admin@x.com", "role": "user"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	admin, _ := env.users.FindByEmail(context.Background(), "admin@x.com")
	require.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestRegistrationValidation(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	rec := env.do(t, http.MethodPost, "/users", map[string]string{"name": "No Email"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, errorOf(t, rec), "email is required")

	rec = env.do(t, http.MethodPost, "/users", `{"email":`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostBodiesAreNotFormatChecked(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	rec := env.do(t, http.MethodPost, "/jwt", map[string]string{"email": "alice"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, decode[map[string]string](t, rec)["token"])

	rec = env.do(t, http.MethodPost, "/users", map[string]string{"email": "alice"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSelfCheckRejectsSpoofedEmail(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})
	tok := env.token(t, "user@x.com")

	for _, path := range []string{"/users/admin/admin@x.com", "/users/member/member@x.com", "/users/admin/stranger@x.com"} {
		rec := env.do(t, http.MethodGet, path, nil, tok)
		require.Equal(t, http.StatusForbidden, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/users/admin/admin@x.com", nil, env.token(t, "admin@x.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"admin":true}`, rec.Body.String())
}

func TestMemberScenario(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})
	applicant := env.token(t, "a@x.com")
	admin := env.token(t, "admin@x.com")

	rec := env.do(t, http.MethodGet, "/users/member/a@x.com", nil, applicant)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"member":false}`, rec.Body.String())

	id := env.createAgreement(t, "a@x.com")

	rec = env.do(t, http.MethodGet, "/agreements/a@x.com", nil, applicant)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.AgreementPending, decode[domain.Agreement](t, rec).Status,
		"client supplied status is ignored")

	rec = env.do(t, http.MethodPatch, "/agreements-accept/"+id+"/a@x.com", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := decode[[]domain.UpdateResult](t, rec)
	require.Len(t, results, 2)
	require.EqualValues(t, 1, results[0].ModifiedCount)
	require.EqualValues(t, 1, results[1].ModifiedCount)

	// The same token now reads as a member: roles are never cached in the token.
	rec = env.do(t, http.MethodGet, "/users/member/a@x.com", nil, applicant)
	require.JSONEq(t, `{"member":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/users/a@x.com", nil, applicant)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.AgreementChecked, decode[domain.Agreement](t, rec).Status)

	// Demotion takes effect on the next request as well.
	u, err := env.users.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	rec = env.do(t, http.MethodPatch, "/member-remove/"+u.ID, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/users/member/a@x.com", nil, applicant)
	require.JSONEq(t, `{"member":false}`, rec.Body.String())

	require.NoError(t, env.dispatcher.Stop(context.Background()))
	changes := env.audit.RoleChanges()
	require.Len(t, changes, 2)
	require.Equal(t, domain.RoleChangeAgreementApproved, changes[0].Reason)
	require.Equal(t, "admin@x.com", changes[0].Actor)
	require.Equal(t, domain.RoleChangeMemberRemoved, changes[1].Reason)
}

func TestRejectLeavesRoleUntouched(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})
	id := env.createAgreement(t, "user@x.com")

	rec := env.do(t, http.MethodPatch, "/agreements-reject/"+id, nil, env.token(t, "admin@x.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode[domain.UpdateResult](t, rec).ModifiedCount)

	u, _ := env.users.FindByEmail(context.Background(), "user@x.com")
	require.Equal(t, domain.RoleUser, u.Role)
}

func TestApproveErrors(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})
	admin := env.token(t, "admin@x.com")

	rec := env.do(t, http.MethodPatch, "/agreements-accept/65f000000000000000000000/a@x.com", nil, admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "agreement not found", errorOf(t, rec))

	rec = env.do(t, http.MethodPatch, "/agreements-accept/not-an-id/a@x.com", nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/member-remove/not-an-id", nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoubleApproval(t *testing.T) {
	lenient := newTestEnv(t, service.AgreementOptions{})
	id := lenient.createAgreement(t, "a@x.com")
	admin := lenient.token(t, "admin@x.com")

	require.Equal(t, http.StatusOK, lenient.do(t, http.MethodPatch, "/agreements-accept/"+id+"/a@x.com", nil, admin).Code)
	rec := lenient.do(t, http.MethodPatch, "/agreements-accept/"+id+"/a@x.com", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, decode[[]domain.UpdateResult](t, rec)[0].ModifiedCount)

	strict := newTestEnv(t, service.AgreementOptions{StrictTransitions: true})
	id = strict.createAgreement(t, "a@x.com")
	admin = strict.token(t, "admin@x.com")

	require.Equal(t, http.StatusOK, strict.do(t, http.MethodPatch, "/agreements-accept/"+id+"/a@x.com", nil, admin).Code)
	rec = strict.do(t, http.MethodPatch, "/agreements-accept/"+id+"/a@x.com", nil, admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "agreement already checked", errorOf(t, rec))
}

func TestListingsAndAnnouncements(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	rec := env.do(t, http.MethodGet, "/apartments", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	apartments := decode[[]domain.Apartment](t, rec)
	require.Len(t, apartments, 1)

	rec = env.do(t, http.MethodGet, "/apartments/"+apartments[0].ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "A1", decode[domain.Apartment](t, rec).ApartmentNo)

	rec = env.do(t, http.MethodGet, "/apartments/65f000000000000000000000", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	member := env.token(t, "member@x.com")
	rec = env.do(t, http.MethodPost, "/announcements", map[string]string{"title": "Hi"}, member)
	require.Equal(t, http.StatusForbidden, rec.Code)

	admin := env.token(t, "admin@x.com")
	rec = env.do(t, http.MethodPost, "/announcements", map[string]string{"description": "no title"}, admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/announcements", map[string]string{"title": "Lift maintenance", "description": "Friday"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/announcements", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Announcement](t, rec)
	require.Len(t, list, 1)
	require.Equal(t, "Lift maintenance", list[0].Title)
}

func TestPayments(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})
	member := env.token(t, "member@x.com")

	rec := env.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"price": 1200.5}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"clientSecret":"pi_test_secret"}`, rec.Body.String())
	require.EqualValues(t, 120050, env.processor.last.AmountCents)

	rec = env.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"price": 0}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	payment := map[string]any{"month": "March", "rent": 1200, "transactionId": "pi_1"}
	rec = env.do(t, http.MethodPost, "/payments", payment, member, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/payments", payment, member, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/payments", map[string]any{"email": "other@x.com"}, member)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/payments", payment, env.token(t, "user@x.com"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/payments/member@x.com", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]domain.Payment](t, rec)
	require.Len(t, history, 1)
	require.Equal(t, "member@x.com", history[0].Email)

	rec = env.do(t, http.MethodGet, "/payments/admin@x.com", nil, member)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/payments/user@x.com", nil, env.token(t, "user@x.com"))
	require.Equal(t, http.StatusForbidden, rec.Code, "self is not enough without membership")
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, service.AgreementOptions{})

	rec := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Server up and running!"}`, rec.Body.String())

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil, "").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", nil, "").Code)

	rec = env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "building_http"), "http metrics are exported")

	rec = env.do(t, http.MethodGet, "/no-such-route", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	e.GET("/boom", func(echo.Context) error { return errors.New("mongo: connection reset by peer") })
	e.GET("/partial", func(echo.Context) error {
		return errors.Join(domain.ErrPartialApproval, errors.New("restore failed"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/partial", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"agreement approval partially applied"}`, rec.Body.String())
}
