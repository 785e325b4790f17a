package rest

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritrace/supplyview/internal/aggregate"
	"github.com/veritrace/supplyview/internal/api/middleware"
	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/ledger"
	"github.com/veritrace/supplyview/internal/repository"
)

const testAPIKey = "test-api-key"

func testAddr(b byte) domain.Address {
	var a domain.Address
	a[0] = b
	return a
}

// fakeLedger satisfies the handler's ledger slice without a network.
type fakeLedger struct {
	programID domain.Address
	identity  domain.Address
	signature string
	submitErr error
	submitted []ledger.OperationSpec
}

func (l *fakeLedger) ProgramID() domain.Address { return l.programID }
func (l *fakeLedger) Identity() domain.Address  { return l.identity }

func (l *fakeLedger) Submit(ctx context.Context, op ledger.OperationSpec) (string, error) {
	if l.submitErr != nil {
		return "", l.submitErr
	}
	l.submitted = append(l.submitted, op)
	return l.signature, nil
}

// fakeSource serves canned account bytes keyed by discriminator and address.
type fakeSource struct {
	accounts map[ledger.Discriminator][]ledger.AccountEntry
	byAddr   map[domain.Address][]byte
}

func (s *fakeSource) ProgramAccounts(ctx context.Context, disc ledger.Discriminator) ([]ledger.AccountEntry, error) {
	return s.accounts[disc], nil
}

func (s *fakeSource) AccountData(ctx context.Context, addr domain.Address) ([]byte, error) {
	data, ok := s.byAddr[addr]
	if !ok {
		return nil, &domain.NotFoundError{Address: addr}
	}
	return data, nil
}

func newTestRouter(t *testing.T, source *fakeSource, led *fakeLedger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := repository.NewSetFrom(source, led.programID)
	agg := aggregate.New(repos, aggregate.Config{Workers: 2, QueueSize: 8})
	t.Cleanup(agg.Close)

	router := gin.New()
	SetupRoutes(router, NewHandler(false, repos, agg, led), middleware.AuthConfig{
		APIKeys: []string{testAPIKey},
	})
	return router
}

func perform(router *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	dec := json.NewDecoder(w.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	led := &fakeLedger{programID: testAddr(100)}
	router := newTestRouter(t, &fakeSource{}, led)

	w := perform(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, led.programID.String(), body["program_id"])
}

func TestGetState(t *testing.T) {
	programID := testAddr(100)
	stateAddr, err := ledger.StateAddress(programID)
	require.NoError(t, err)

	state := &domain.ProgramState{
		Address:        stateAddr,
		Owner:          testAddr(1),
		FeeBasisPoints: big.NewInt(250),
		Initialized:    true,
	}
	data, err := ledger.EncodeProgramState(state)
	require.NoError(t, err)

	source := &fakeSource{byAddr: map[domain.Address][]byte{stateAddr: data}}
	router := newTestRouter(t, source, &fakeLedger{programID: programID})

	w := perform(router, http.MethodGet, "/api/v1/state", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "250", body["fee_basis_points"].(json.Number).String())
}

func TestListFactoriesOwnerFilter(t *testing.T) {
	owner := testAddr(1)
	mine := &domain.Factory{Address: testAddr(10), ID: 1, Owner: owner, Balance: big.NewInt(1)}
	other := &domain.Factory{Address: testAddr(11), ID: 2, Owner: testAddr(2), Balance: big.NewInt(2)}

	encodeFactory := func(f *domain.Factory) []byte {
		data, err := ledger.EncodeFactory(f)
		require.NoError(t, err)
		return data
	}
	source := &fakeSource{accounts: map[ledger.Discriminator][]ledger.AccountEntry{
		ledger.DiscFactory: {
			{Address: mine.Address, Data: encodeFactory(mine)},
			{Address: other.Address, Data: encodeFactory(other)},
		},
	}}
	router := newTestRouter(t, source, &fakeLedger{programID: testAddr(100)})

	w := perform(router, http.MethodGet, "/api/v1/factories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", decodeBody(t, w)["count"].(json.Number).String())

	w = perform(router, http.MethodGet, "/api/v1/factories?owner="+owner.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "1", body["count"].(json.Number).String())

	w = perform(router, http.MethodGet, "/api/v1/factories?owner=not-base58-!!", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFactoryNotFound(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, &fakeLedger{programID: testAddr(100)})

	w := perform(router, http.MethodGet, "/api/v1/factories/"+testAddr(9).String(), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decodeBody(t, w)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "not_found", errBody["code"])
}

func TestGetFactoryInvalidAddress(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, &fakeLedger{programID: testAddr(100)})

	w := perform(router, http.MethodGet, "/api/v1/factories/zz-not-an-address", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDashboard(t *testing.T) {
	owner := testAddr(1)
	factory := &domain.Factory{Address: testAddr(10), ID: 1, Owner: owner, Balance: big.NewInt(500)}
	data, err := ledger.EncodeFactory(factory)
	require.NoError(t, err)

	source := &fakeSource{accounts: map[ledger.Discriminator][]ledger.AccountEntry{
		ledger.DiscFactory: {{Address: factory.Address, Data: data}},
	}}
	router := newTestRouter(t, source, &fakeLedger{programID: testAddr(100)})

	w := perform(router, http.MethodGet, "/api/v1/dashboards/factory?owner="+owner.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "500", body["total_balance"].(json.Number).String())

	// Unknown role and missing owner are both caller errors
	w = perform(router, http.MethodGet, "/api/v1/dashboards/admin?owner="+owner.String(), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/dashboards/factory", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &fakeSource{}, &fakeLedger{programID: testAddr(100)})

	w := perform(router, http.MethodPost, "/api/v1/operations/register",
		`{"name":"alice","email":"a@example.com","role":"seller"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterUserSubmits(t *testing.T) {
	led := &fakeLedger{
		programID: testAddr(100),
		identity:  testAddr(1),
		signature: "sig-accepted",
	}
	router := newTestRouter(t, &fakeSource{}, led)

	w := perform(router, http.MethodPost, "/api/v1/operations/register",
		`{"name":"alice","email":"a@example.com","role":"seller"}`,
		map[string]string{"Authorization": "ApiKey " + testAPIKey})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "sig-accepted", body["signature"])
	require.Len(t, led.submitted, 1)
	assert.Equal(t, "register_user", led.submitted[0].Name)
}

func TestSubmitReadOnlyRejected(t *testing.T) {
	led := &fakeLedger{
		programID: testAddr(100),
		identity:  testAddr(1),
		submitErr: &domain.UnauthorizedError{Reason: "connection is read-only"},
	}
	router := newTestRouter(t, &fakeSource{}, led)

	w := perform(router, http.MethodPost, "/api/v1/operations/withdraw",
		`{"entity":"`+testAddr(5).String()+`","amount":"100"}`,
		map[string]string{"Authorization": "ApiKey " + testAPIKey})
	require.Equal(t, http.StatusForbidden, w.Code)

	body := decodeBody(t, w)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "forbidden", errBody["code"])
}

func TestUpdatePlatformFeeValidatesAmount(t *testing.T) {
	led := &fakeLedger{programID: testAddr(100), identity: testAddr(1)}
	router := newTestRouter(t, &fakeSource{}, led)

	w := perform(router, http.MethodPost, "/api/v1/operations/fee",
		`{"fee_basis_points":"not-a-number"}`,
		map[string]string{"Authorization": "ApiKey " + testAPIKey})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, led.submitted)
}
