package wire_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/capability"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/log"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/schema"
	"github.com/qbiq/biq-go/pkg/wire"
)

type recorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func codecs() map[string]*wire.Codec {
	return map[string]*wire.Codec{
		"json": wire.JSON(),
		"cbor": wire.CBOR(),
	}
}

// ---------------------------------------------------------------------------
// Round trips
// ---------------------------------------------------------------------------

func TestRoundTripDevice(t *testing.T) {
	owner := ident.MustParseID("0b5ef1f0-8a5d-4f7f-9b0e-5b7f3f0e2a11")
	group := ident.MustParseID("9a3a7b44-5a0c-4e5c-8d7e-0c7d2a1f6b22")

	dev := model.NewDevice("urn:qbiq:00A1", "Kitchen").
		WithOwner(owner).
		WithFlags(capability.Union(capability.TemperatureCapable, capability.LightCapable)).
		WithLocation(43.65, -79.38).
		WithGroupMemberships([]model.DeviceGroupMembership{
			model.NewDeviceGroupMembership(group, "urn:qbiq:00A1"),
		}).
		WithAccessPermissions(nil)

	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := c.Encode(dev)
			require.NoError(t, err)

			got, err := wire.Decode[model.Device](c, data)
			require.NoError(t, err)

			assert.Equal(t, dev, got)
			require.NotNil(t, got.AccessPermissions)
			assert.Empty(t, *got.AccessPermissions)
			assert.Equal(t, uint64(20), got.DeviceFlags().Raw())
		})
	}
}

func TestJSONShape(t *testing.T) {
	owner := ident.MustParseID("0b5ef1f0-8a5d-4f7f-9b0e-5b7f3f0e2a11")
	dev := model.NewDevice("urn:qbiq:00A1", "Kitchen").WithOwner(owner).WithAccessPermissions(nil)

	data, err := wire.Marshal(dev)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "urn:qbiq:00A1",
		"name": "Kitchen",
		"ownerId": "0b5ef1f0-8a5d-4f7f-9b0e-5b7f3f0e2a11",
		"accessPermissions": []
	}`, string(data))
}

func TestAbsentRelationStaysAbsent(t *testing.T) {
	data, err := wire.Marshal(model.NewDevice("d1", "n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d1","name":"n"}`, string(data))

	got, err := wire.Decode[model.Device](wire.JSON(), data)
	require.NoError(t, err)
	assert.Nil(t, got.GroupMemberships)
	assert.Nil(t, got.AccessPermissions)
}

func TestRoundTripLimit(t *testing.T) {
	user := ident.NewID()
	l := limit.New(user, "urn:qbiq:00A1", limit.TempHigh, 30.5)

	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := c.Encode(l)
			require.NoError(t, err)

			got, err := wire.Decode[limit.DeviceLimit](c, data)
			require.NoError(t, err)
			assert.Equal(t, limit.TempHigh, got.Type)
			assert.Equal(t, 30.5, got.Value)
			assert.Equal(t, user, got.UserID)
			assert.Nil(t, got.StringValue)
		})
	}
}

func TestDecodeTopLevelSlice(t *testing.T) {
	in := []limit.Setting{
		limit.NewSetting(limit.TempLow, 2),
		limit.NewStringSetting(limit.Colour, "ff00ff"),
	}
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := c.Encode(in)
			require.NoError(t, err)
			got, err := wire.Decode[[]limit.Setting](c, data)
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}

func TestConvert(t *testing.T) {
	obs := model.Observation{ID: 7, DeviceID: "d1", ObsTime: 1500, Firmware: "1.2", Temp: 21.5}

	js, err := wire.Marshal(obs)
	require.NoError(t, err)

	cb, err := wire.Convert[model.Observation](wire.JSON(), wire.CBOR(), js)
	require.NoError(t, err)

	back, err := wire.Convert[model.Observation](wire.CBOR(), wire.JSON(), cb)
	require.NoError(t, err)
	assert.JSONEq(t, string(js), string(back))
}

// ---------------------------------------------------------------------------
// Malformed documents
// ---------------------------------------------------------------------------

func TestMalformedJSON(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"empty", ``, ""},
		{"syntax", `{"limitType":`, ""},
		{"null document", `null`, ""},
		{"array for object", `[]`, ""},
		{"missing required", `{"limitValue": 1}`, "limitType"},
		{"null required", `{"limitType": null, "limitValue": 1}`, "limitType"},
		{"wrong type", `{"limitType": "hot", "limitValue": 1}`, "limitType"},
		{"out of range tag", `{"limitType": 300, "limitValue": 1}`, "limitType"},
		{"string for number", `{"limitType": 0, "limitValue": "1"}`, "limitValue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wire.Decode[limit.Setting](wire.JSON(), []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, wire.ErrMalformed), "got %v", err)

			var me *wire.MalformedError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.path, me.Path)
		})
	}
}

func TestMalformedNestedPath(t *testing.T) {
	doc := `{"id":"d1","name":"n","groupMemberships":[{"groupId":"9a3a7b44-5a0c-4e5c-8d7e-0c7d2a1f6b22"}]}`
	_, err := wire.Decode[model.Device](wire.JSON(), []byte(doc))

	var me *wire.MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "groupMemberships[0].deviceId", me.Path)
	assert.Contains(t, err.Error(), "missing required field")
}

func TestMalformedNullElement(t *testing.T) {
	_, err := wire.Decode[[]limit.Setting](wire.JSON(), []byte(`[null]`))
	assert.ErrorIs(t, err, wire.ErrMalformed)
}

func TestMalformedBadUUID(t *testing.T) {
	doc := `{"groupId":"not-a-uuid","deviceId":"d1"}`
	_, err := wire.Decode[model.DeviceGroupMembership](wire.JSON(), []byte(doc))
	assert.ErrorIs(t, err, wire.ErrMalformed)
}

func TestMalformedCBOR(t *testing.T) {
	_, err := wire.Decode[limit.Setting](wire.CBOR(), []byte{0xff, 0x00})
	assert.ErrorIs(t, err, wire.ErrMalformed)

	// Valid CBOR text string where an object is expected.
	_, err = wire.Decode[limit.Setting](wire.CBOR(), []byte{0x61, 0x61})
	assert.ErrorIs(t, err, wire.ErrMalformed)
}

func TestNullOptionalIsAbsent(t *testing.T) {
	doc := `{"limitType": 6, "limitValue": 0, "limitValueString": null}`
	got, err := wire.Decode[limit.Setting](wire.JSON(), []byte(doc))
	require.NoError(t, err)
	assert.Nil(t, got.StringValue)
}

func TestUnknownKeysIgnored(t *testing.T) {
	doc := `{"limitType": 0, "limitValue": 4, "colourScheme": "dark"}`
	got, err := wire.Decode[limit.Setting](wire.JSON(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Value)
}

func TestCaseVariantKeyRejected(t *testing.T) {
	listItem := map[string]any{
		"device":          map[string]any{"id": "d1", "name": "n"},
		"limits":          []any{},
		"LastObservation": map[string]any{},
	}
	lowerItem := map[string]any{
		"device":          map[string]any{"id": "d1", "name": "n"},
		"limits":          []any{},
		"lastobservation": map[string]any{},
	}
	obs := map[string]any{
		"id": 1, "deviceId": "d1", "obstime": 1.5e12, "charging": 0, "firmware": "1.0",
		"battery": 0.5, "temp": 20.5, "light": 1, "humidity": 40,
		"xaxis": 0, "yaxis": 0, "zaxis": 0,
		"WIFIFIRMWARE": "x",
	}

	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			encode := func(v any) []byte {
				var (
					data []byte
					err  error
				)
				if c.Format() == wire.FormatCBOR {
					data, err = cbor.Marshal(v)
				} else {
					data, err = json.Marshal(v)
				}
				require.NoError(t, err)
				return data
			}

			for _, doc := range []map[string]any{listItem, lowerItem} {
				got, err := wire.Decode[api.DeviceListItem](c, encode(doc))
				require.ErrorIs(t, err, wire.ErrMalformed)
				assert.Nil(t, got.LastObservation)
			}

			got, err := wire.Decode[model.Observation](c, encode(obs))
			require.ErrorIs(t, err, wire.ErrMalformed)
			assert.Empty(t, got.WifiFirmwareVersion())

			var me *wire.MalformedError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, "WIFIFIRMWARE", me.Path)
		})
	}
}

func TestUnrecognizedTagPreserved(t *testing.T) {
	doc := []byte(`{"limitType": 200, "limitValue": 1}`)
	got, err := wire.Decode[limit.Setting](wire.JSON(), doc)
	require.NoError(t, err)
	assert.Equal(t, limit.Unrecognized, got.Type.Resolve())

	out, err := wire.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(out))
}

// ---------------------------------------------------------------------------
// Encode failures
// ---------------------------------------------------------------------------

func TestEncodeRejectsNullRequiredSlice(t *testing.T) {
	type envelope struct {
		Limits []limit.Setting `json:"limits"`
	}
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := c.Encode(envelope{})
			assert.Error(t, err)
			assert.Nil(t, data)
		})
	}
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	nan := limit.NewSetting(limit.TempHigh, 0)
	nan.Value = nanValue()
	_, err := wire.Marshal(nan)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Deprecated keys and events
// ---------------------------------------------------------------------------

func TestDeprecatedKeysReported(t *testing.T) {
	rec := &recorder{}
	var logBuf bytes.Buffer
	c := wire.NewCodec(wire.Options{
		Format:      wire.FormatJSON,
		Logger:      slog.New(slog.NewTextHandler(&logBuf, nil)),
		EventLogger: rec,
		Schema:      schema.MustCurrent(),
	}).WithSource("test")

	doc := `{"id":"d1","name":"n","observations":[],
		"accessPermissions":[{"accountId":"0b5ef1f0-8a5d-4f7f-9b0e-5b7f3f0e2a11","deviceId":"d1","userId":"legacy"}]}`

	var dev model.Device
	report, err := c.DecodeReport([]byte(doc), &dev)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Device.observations", "DeviceAccessPermission.userId"}, report.Deprecated)
	assert.Contains(t, logBuf.String(), "deprecated keys")

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, log.DirectionIn, ev.Direction)
	assert.Equal(t, "json", ev.Format)
	assert.Equal(t, "Device", ev.Envelope)
	assert.Equal(t, "test", ev.Source)
	assert.Equal(t, len(doc), ev.Size)
	assert.False(t, ev.Failed())
}

func TestNoSchemaNoReport(t *testing.T) {
	c := wire.NewCodec(wire.Options{Format: wire.FormatJSON})
	var dev model.Device
	report, err := c.DecodeReport([]byte(`{"id":"d1","name":"n","observations":[]}`), &dev)
	require.NoError(t, err)
	assert.Empty(t, report.Deprecated)
}

func TestFailureEvent(t *testing.T) {
	rec := &recorder{}
	c := wire.NewCodec(wire.Options{Format: wire.FormatCBOR, EventLogger: rec})

	_, err := wire.Decode[model.Device](c, []byte{0xa0}) // empty map
	require.Error(t, err)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	require.True(t, ev.Failed())
	assert.Equal(t, "id", ev.Error.Path)
	assert.Equal(t, "cbor", ev.Format)
}

func TestDecodeIntoRequiresPointer(t *testing.T) {
	var s limit.Setting
	err := wire.JSON().DecodeInto([]byte(`{}`), s)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, wire.ErrMalformed)
}

// ---------------------------------------------------------------------------
// Clone and Equal
// ---------------------------------------------------------------------------

func TestCloneAndEqual(t *testing.T) {
	g := model.NewDeviceGroup(ident.NewID(), ident.NewID(), "Cellar").
		WithDevices([]model.Device{model.NewDevice("d1", "one")})

	cp, err := wire.Clone(g)
	require.NoError(t, err)
	assert.True(t, wire.Equal(g, cp))

	(*cp.Devices)[0].Name = "changed"
	assert.Equal(t, "one", (*g.Devices)[0].Name)
	assert.False(t, wire.Equal(g, cp))
}
