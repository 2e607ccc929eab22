package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/push"
	"github.com/qbiq/biq-go/pkg/store"
	"github.com/qbiq/biq-go/pkg/wire"
)

var (
	testNow    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testSecret = []byte("test-secret")
	alice      = ident.MustParseID("11111111-1111-1111-1111-111111111111")
	bob        = ident.MustParseID("22222222-2222-2222-2222-222222222222")
)

const testDevice = ident.DeviceURN("urn:qbiq:abc123")

type stubPublisher struct {
	mock.Mock
}

func (s *stubPublisher) PublishWith(topic string, payload []byte, retain bool) error {
	return s.Called(topic, payload, retain).Error(0)
}

type fixture struct {
	t       *testing.T
	srv     *Server
	handler http.Handler
	store   *store.Store
	pub     *stubPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pub := &stubPublisher{}
	srv, err := New(Config{
		Store:    st,
		Secret:   testSecret,
		Notifier: push.NewNotifier(pub, push.Options{}),
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)

	return &fixture{t: t, srv: srv, handler: srv.Handler(), store: st, pub: pub}
}

func (f *fixture) session(account ident.AccountID) string {
	f.t.Helper()
	tok, err := f.srv.SessionToken(account, time.Hour)
	require.NoError(f.t, err)
	return tok
}

func (f *fixture) do(method, path string, account *ident.AccountID, body any, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := wire.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if account != nil {
		req.Header.Set("Authorization", "Bearer "+f.session(*account))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	format, err := wire.ParseFormat(rec.Header().Get("Content-Type"))
	require.NoError(t, err)
	v, err := wire.Decode[T](wire.JSON().WithFormat(format), rec.Body.Bytes())
	require.NoError(t, err, rec.Body.String())
	return v
}

func TestNewRequiresStoreAndSecret(t *testing.T) {
	_, err := New(Config{Secret: testSecret})
	assert.Error(t, err)

	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	defer st.Close()
	_, err = New(Config{Store: st})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"health":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/health", nil, nil, "Accept", "application/cbor")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/cbor", rec.Header().Get("Content-Type"))
	resp := decodeBody[api.HealthCheckResponse](t, rec)
	assert.Equal(t, api.HealthOK, resp.Health)
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/devices/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	errResp := decodeBody[api.ErrorResponse](t, rec)
	assert.Equal(t, "missing token", errResp.Error)

	rec = f.do(http.MethodGet, "/api/devices/", nil, nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := f.srv.SessionToken(alice, -time.Minute)
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/api/devices/", nil, nil, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/devices/", &alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRegisterAndList(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/devices/register", &alice, api.NewDeviceRegisterRequest(testDevice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decodeBody[model.Device](t, rec)
	assert.True(t, d.IsOwnedBy(alice))
	assert.Equal(t, "abc123", d.Name)

	rec = f.do(http.MethodPost, "/api/devices/register", &bob, api.NewDeviceRegisterRequest(testDevice))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/api/devices/update", &alice, api.NewDeviceUpdateRequest(testDevice).WithName("Fridge"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/devices/", &alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[[]api.DeviceListItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Fridge", items[0].Device.Name)
	require.NotNil(t, items[0].ShareCount)
	assert.Equal(t, 0, *items[0].ShareCount)
	assert.Nil(t, items[0].LastObservation)
	assert.NotNil(t, items[0].Limits)

	rec = f.do(http.MethodPost, "/api/devices/update", &bob, api.NewDeviceUpdateRequest(testDevice).WithName("Mine"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/devices/register", &alice, []byte(`{"device":"x"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[api.ErrorResponse](t, rec)
	require.NotNil(t, resp.Code)
	assert.Equal(t, "malformed", *resp.Code)
	assert.Contains(t, resp.Error, "deviceId")

	rec = f.do(http.MethodPost, "/api/devices/register", &alice, []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		f.srv.metrics.Decodes.WithLabelValues("DeviceRegisterRequest", "json", outcomeMalformed)))

	rec = f.do(http.MethodPost, "/api/devices/register", &alice, []byte(`{}`), "Content-Type", "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCBORRequest(t *testing.T) {
	f := newFixture(t)

	body, err := wire.CBOR().Encode(api.NewDeviceRegisterRequest(testDevice))
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/api/devices/register", &alice, body,
		"Content-Type", "application/cbor", "Accept", "application/cbor")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/cbor", rec.Header().Get("Content-Type"))
	d := decodeBody[model.Device](t, rec)
	assert.Equal(t, testDevice, d.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.srv.metrics.Decodes.WithLabelValues("DeviceRegisterRequest", "cbor", outcomeOK)))
}

func TestUpdateLimitsSyncsPush(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.PutDevice(model.NewDevice(testDevice, "Fridge").WithOwner(alice)))

	f.pub.On("PublishWith", "biq/devices/urn:qbiq:abc123/limits", mock.Anything, true).Return(nil).Once()

	req := api.NewDeviceUpdateLimitsRequest(testDevice, []limit.Setting{
		limit.NewSetting(limit.TempHigh, 8),
		limit.NewSetting(limit.TempScale, 1),
	})
	rec := f.do(http.MethodPost, "/api/devices/limits/update", &alice, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[api.DeviceLimitsResponse](t, rec)
	assert.Len(t, resp.Limits, 2)
	f.pub.AssertExpectations(t)

	set, err := wire.Decode[push.LimitSet](wire.JSON(), f.pub.Calls[0].Arguments.Get(1).([]byte))
	require.NoError(t, err)
	assert.Len(t, set.Limits, 2)

	pushLimits, err := f.store.PushLimits(testDevice)
	require.NoError(t, err)
	assert.Len(t, pushLimits, 2)

	rec = f.do(http.MethodPost, "/api/devices/limits", &alice, api.NewDeviceLimitsRequest(testDevice))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[api.DeviceLimitsResponse](t, rec).Limits, 2)

	rec = f.do(http.MethodPost, "/api/devices/limits", &bob, api.NewDeviceLimitsRequest(testDevice))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareFlow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.PutDevice(model.NewDevice(testDevice, "Fridge").WithOwner(alice)))

	rec := f.do(http.MethodPost, "/api/devices/share-token", &bob, api.NewDeviceShareTokenRequest(testDevice))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/devices/share-token", &alice, api.NewDeviceShareTokenRequest(testDevice))
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeBody[api.DeviceShareTokenResponse](t, rec).Token

	rec = f.do(http.MethodPost, "/api/devices/share", &bob, api.NewDeviceShareRequest("urn:qbiq:other").WithToken(tok))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/api/devices/share", &bob, api.NewDeviceShareRequest(testDevice).WithToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	n, err := f.store.ShareCount(testDevice)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec = f.do(http.MethodGet, "/api/devices/", &bob, nil)
	items := decodeBody[[]api.DeviceListItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, testDevice, items[0].Device.ID)

	// A session token is not a share token.
	rec = f.do(http.MethodPost, "/api/devices/share", &bob, api.NewDeviceShareRequest(testDevice).WithToken(f.session(bob)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestObservations(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.PutDevice(model.NewDevice(testDevice, "Fridge").WithOwner(alice)))

	for _, age := range []time.Duration{time.Hour, 48 * time.Hour} {
		_, err := f.store.AddObservation(model.Observation{
			DeviceID: testDevice,
			ObsTime:  model.ObsTimeMillis(testNow.Add(-age)),
			Firmware: "1.0",
			Temp:     4,
		})
		require.NoError(t, err)
	}

	rec := f.do(http.MethodPost, "/api/devices/observations", &alice, api.NewDeviceObservationsRequest(testDevice, api.IntervalLive))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Observation](t, rec), 1)

	rec = f.do(http.MethodPost, "/api/devices/observations", &alice, api.NewDeviceObservationsRequest(testDevice, api.IntervalAll))
	assert.Len(t, decodeBody[[]model.Observation](t, rec), 2)

	rec = f.do(http.MethodPost, "/api/devices/observations", &alice, api.NewDeviceObservationsRequest(testDevice, api.Interval(9)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroups(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.PutDevice(model.NewDevice(testDevice, "Fridge").WithOwner(alice)))

	rec := f.do(http.MethodPost, "/api/groups/create", &alice, api.NewGroupCreateRequest("Kitchen"))
	require.Equal(t, http.StatusOK, rec.Code)
	g := decodeBody[model.DeviceGroup](t, rec)
	assert.Nil(t, g.Devices)

	rec = f.do(http.MethodPost, "/api/groups/add", &alice, api.NewGroupAddDeviceRequest(g.ID, testDevice))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/groups/devices", &alice, api.NewGroupListDevicesRequest(g.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	withDevices := decodeBody[model.DeviceGroup](t, rec)
	require.NotNil(t, withDevices.Devices)
	assert.Len(t, *withDevices.Devices, 1)

	rec = f.do(http.MethodPost, "/api/groups/update", &alice, api.NewGroupUpdateRequest(g.ID).WithName("Pantry"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pantry", decodeBody[model.DeviceGroup](t, rec).Name)

	rec = f.do(http.MethodPost, "/api/groups/delete", &bob, api.NewGroupDeleteRequest(g.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/groups/remove", &alice, api.NewGroupRemoveDeviceRequest(g.ID, testDevice))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/groups/", &alice, nil)
	assert.Len(t, decodeBody[[]model.DeviceGroup](t, rec), 1)

	rec = f.do(http.MethodPost, "/api/groups/delete", &alice, api.NewGroupDeleteRequest(g.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/groups/", &alice, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/health", nil, nil)

	rec := f.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `biq_http_requests_total{method="GET",route="/health"} 1`)
}

func TestReplyFormat(t *testing.T) {
	tests := []struct {
		accept string
		want   wire.Format
	}{
		{"", wire.FormatJSON},
		{"*/*", wire.FormatJSON},
		{"application/cbor", wire.FormatCBOR},
		{"text/html, application/cbor;q=0.9", wire.FormatCBOR},
		{"application/json, application/cbor", wire.FormatJSON},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", tt.accept)
		assert.Equal(t, tt.want, replyFormat(req), tt.accept)
	}
}
