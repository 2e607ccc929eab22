package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/capability"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAccountRoundTrip(t *testing.T) {
	s := newTestStore(t)

	plain := model.NewAccount(ident.NewID(), 3, 1700000000)
	named := model.NewAccount(ident.NewID(), 0, 1700000001).WithMeta(model.NewAccountPublicMeta("Ada"))
	emptyMeta := model.NewAccount(ident.NewID(), 0, 1700000002).WithMeta(model.AccountPublicMeta{})

	for _, a := range []model.Account{plain, named, emptyMeta} {
		require.NoError(t, s.PutAccount(a))
		got, err := s.GetAccount(a.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, a, *got)
	}

	missing, err := s.GetAccount(ident.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAliases(t *testing.T) {
	s := newTestStore(t)
	acct := model.NewAccount(ident.NewID(), 0, 1)
	require.NoError(t, s.PutAccount(acct))

	pw, err := model.NewPasswordAlias("ada@example.com", acct.ID, 1, 0, "secret")
	require.NoError(t, err)
	require.NoError(t, s.PutAlias(pw))
	require.NoError(t, s.PutAlias(model.NewAlias("ada-phone", acct.ID, 0, 0)))

	got, err := s.GetAlias("ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.VerifyPassword("secret"))

	all, err := s.AliasesFor(acct.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ada-phone", all[0].Address)
	assert.False(t, all[0].HasPassword())
}

func TestAliasRequiresAccount(t *testing.T) {
	s := newTestStore(t)
	err := s.PutAlias(model.NewAlias("nobody", ident.NewID(), 0, 0))
	assert.Error(t, err)
}

func TestCreateAccount(t *testing.T) {
	s := newTestStore(t)
	acct := model.NewAccount(ident.NewID(), 0, 1)
	alias, err := model.NewPasswordAlias("ada@example.com", ident.AccountID{}, 0, 0, "secret")
	require.NoError(t, err)

	require.NoError(t, s.CreateAccount(acct, alias))

	got, err := s.GetAlias("ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acct.ID, got.Account)
	assert.True(t, got.VerifyPassword("secret"))

	other := model.NewAccount(ident.NewID(), 0, 2)
	err = s.CreateAccount(other, model.NewAlias("ada@example.com", other.ID, 0, 0))
	assert.ErrorIs(t, err, ErrAddressTaken)

	missing, err := s.GetAccount(other.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMobileDevices(t *testing.T) {
	s := newTestStore(t)
	acct := model.NewAccount(ident.NewID(), 0, 1)
	require.NoError(t, s.PutAccount(acct))

	require.NoError(t, s.AddMobileDevice(acct.ID, MobileDevice{DeviceID: "tok-b", DeviceType: "ios"}))
	require.NoError(t, s.AddMobileDevice(acct.ID, MobileDevice{DeviceID: "tok-a", DeviceType: "ios"}))
	require.NoError(t, s.AddMobileDevice(acct.ID, MobileDevice{DeviceID: "tok-b", DeviceType: "android"}))

	got, err := s.MobileDevices(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, []MobileDevice{
		{DeviceID: "tok-a", DeviceType: "ios"},
		{DeviceID: "tok-b", DeviceType: "android"},
	}, got)

	assert.Error(t, s.AddMobileDevice(ident.NewID(), MobileDevice{DeviceID: "x", DeviceType: "ios"}))
}

func TestDeviceRelations(t *testing.T) {
	s := newTestStore(t)
	owner := ident.NewID()
	friend := ident.NewID()

	dev := model.NewDevice("urn:qbiq:00A1", "Kitchen").
		WithOwner(owner).
		WithFlags(capability.Union(capability.TemperatureCapable, capability.LightCapable)).
		WithLocation(43.65, -79.38)
	require.NoError(t, s.PutDevice(dev))

	// Not requested: relations stay nil.
	got, err := s.GetDevice(dev.ID, Include{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, dev, *got)
	assert.Nil(t, got.GroupMemberships)

	// Requested, none present: empty lists.
	got, err = s.GetDevice(dev.ID, IncludeAll)
	require.NoError(t, err)
	require.NotNil(t, got.GroupMemberships)
	assert.Empty(t, *got.GroupMemberships)
	require.NotNil(t, got.AccessPermissions)
	assert.Empty(t, *got.AccessPermissions)

	group := model.NewDeviceGroup(ident.NewID(), owner, "Home")
	require.NoError(t, s.PutGroup(group))
	require.NoError(t, s.AddDeviceToGroup(model.NewDeviceGroupMembership(group.ID, dev.ID)))
	require.NoError(t, s.AddDeviceToGroup(model.NewDeviceGroupMembership(group.ID, dev.ID)))
	require.NoError(t, s.Share(model.NewDeviceAccessPermission(friend, dev.ID).WithFlags(1)))

	got, err = s.GetDevice(dev.ID, IncludeAll)
	require.NoError(t, err)
	require.Len(t, *got.GroupMemberships, 1)
	assert.Equal(t, group.ID, (*got.GroupMemberships)[0].GroupID)
	require.Len(t, *got.AccessPermissions, 1)
	assert.Equal(t, friend, (*got.AccessPermissions)[0].AccountID)
	assert.Equal(t, uint64(1), *(*got.AccessPermissions)[0].Flags)

	n, err := s.ShareCount(dev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	shared, err := s.DevicesSharedWith(friend)
	require.NoError(t, err)
	require.Len(t, shared, 1)

	require.NoError(t, s.Unshare(friend, dev.ID))
	n, err = s.ShareCount(dev.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeviceUnknownFlagBitsKept(t *testing.T) {
	s := newTestStore(t)
	dev := model.NewDevice("d1", "n").WithFlags(capability.FromRaw(1<<63 | 1<<40 | 1))
	require.NoError(t, s.PutDevice(dev))

	got, err := s.GetDevice("d1", Include{})
	require.NoError(t, err)
	assert.Equal(t, *dev.Flags, *got.Flags)
}

func TestDeleteDeviceCascades(t *testing.T) {
	s := newTestStore(t)
	owner := ident.NewID()
	require.NoError(t, s.PutDevice(model.NewDevice("d1", "n").WithOwner(owner)))
	group := model.NewDeviceGroup(ident.NewID(), owner, "g")
	require.NoError(t, s.PutGroup(group))
	require.NoError(t, s.AddDeviceToGroup(model.NewDeviceGroupMembership(group.ID, "d1")))

	require.NoError(t, s.DeleteDevice("d1"))

	got, err := s.GetGroup(group.ID, true)
	require.NoError(t, err)
	require.NotNil(t, got.Devices)
	assert.Empty(t, *got.Devices)
}

func TestGroups(t *testing.T) {
	s := newTestStore(t)
	owner := ident.NewID()

	g := model.NewDeviceGroup(ident.NewID(), owner, "Cellar")
	require.NoError(t, s.PutGroup(g))
	require.NoError(t, s.PutDevice(model.NewDevice("d2", "two")))
	require.NoError(t, s.PutDevice(model.NewDevice("d1", "one")))
	require.NoError(t, s.AddDeviceToGroup(model.NewDeviceGroupMembership(g.ID, "d2")))
	require.NoError(t, s.AddDeviceToGroup(model.NewDeviceGroupMembership(g.ID, "d1")))

	got, err := s.GetGroup(g.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got.Devices)

	got, err = s.GetGroup(g.ID, true)
	require.NoError(t, err)
	require.Len(t, *got.Devices, 2)
	assert.Equal(t, ident.DeviceURN("d1"), (*got.Devices)[0].ID)

	require.NoError(t, s.RemoveDeviceFromGroup(model.NewDeviceGroupMembership(g.ID, "d1")))
	require.NoError(t, s.RenameGroup(g.ID, "Attic"))

	got, err = s.GetGroup(g.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Attic", got.Name)
	assert.Len(t, *got.Devices, 1)

	owned, err := s.GroupsOwnedBy(owner)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, s.DeleteGroup(g.ID))
	got, err = s.GetGroup(g.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got)

	dev, err := s.GetDevice("d2", Include{})
	require.NoError(t, err)
	assert.NotNil(t, dev)
}

func TestLimits(t *testing.T) {
	s := newTestStore(t)
	user := ident.NewID()

	empty, err := s.Limits(user, "d1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, s.SetLimit(limit.New(user, "d1", limit.TempHigh, 30.5)))
	require.NoError(t, s.SetLimits(user, "d1", []limit.Setting{
		limit.NewStringSetting(limit.Colour, "ff0000"),
		limit.NewSetting(limit.TempHigh, 28),
		limit.NewSetting(limit.Type(200), 1),
	}))

	got, err := s.Limits(user, "d1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, limit.TempHigh, got[0].Type)
	assert.Equal(t, 28.0, got[0].Value)
	text, ok := got[1].Text()
	assert.True(t, ok)
	assert.Equal(t, "ff0000", text)
	assert.Equal(t, byte(200), got[2].Type.Raw())

	require.NoError(t, s.DeleteLimit(user, "d1", limit.Colour))
	got, err = s.Limits(user, "d1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	other, err := s.Limits(ident.NewID(), "d1")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPushLimits(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetPushLimit(limit.NewPush("d1", limit.Notifications, 1).WithString("daily")))
	require.NoError(t, s.SetPushLimit(limit.NewPush("d1", limit.TempLow, 2)))

	got, err := s.PushLimits("d1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, limit.TempLow, got[0].Type)
	assert.Equal(t, ident.DeviceURN("d1"), got[1].DeviceID)
	assert.Equal(t, "daily", *got[1].StringValue)
}

func TestObservations(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	fw := "wifi-2"

	times := []time.Time{
		now.Add(-400 * 24 * time.Hour),
		now.Add(-20 * 24 * time.Hour),
		now.Add(-6 * time.Hour),
	}
	for i, ts := range times {
		o := model.Observation{DeviceID: "d1", ObsTime: model.ObsTimeMillis(ts), Firmware: "1.0", Temp: float64(i)}
		if i == 2 {
			o.WifiFirmware = &fw
		}
		id, err := s.AddObservation(o)
		require.NoError(t, err)
		assert.NotZero(t, id)
	}

	tests := []struct {
		interval api.Interval
		want     int
	}{
		{api.IntervalAll, 3},
		{api.IntervalYear, 2},
		{api.IntervalMonth, 2},
		{api.IntervalDay, 1},
		{api.IntervalLive, 1},
		{api.Interval(99), 3},
	}
	for _, tt := range tests {
		t.Run(tt.interval.String(), func(t *testing.T) {
			got, err := s.Observations("d1", tt.interval, now)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	latest, err := s.LatestObservation("d1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2.0, latest.Temp)
	assert.Equal(t, "wifi-2", latest.WifiFirmwareVersion())

	none, err := s.LatestObservation("d9")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDeviceList(t *testing.T) {
	s := newTestStore(t)
	me := ident.NewID()
	other := ident.NewID()

	require.NoError(t, s.PutDevice(model.NewDevice("mine", "Mine").WithOwner(me)))
	require.NoError(t, s.PutDevice(model.NewDevice("theirs", "Theirs").WithOwner(other)))
	require.NoError(t, s.Share(model.NewDeviceAccessPermission(me, "theirs")))
	require.NoError(t, s.SetLimit(limit.New(me, "mine", limit.TempHigh, 25)))
	_, err := s.AddObservation(model.Observation{DeviceID: "mine", ObsTime: 1000, Firmware: "1"})
	require.NoError(t, err)

	items, err := s.DeviceList(me)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, ident.DeviceURN("mine"), items[0].Device.ID)
	assert.Equal(t, 0, *items[0].ShareCount)
	require.NotNil(t, items[0].LastObservation)
	assert.Len(t, items[0].Limits, 1)

	assert.Equal(t, ident.DeviceURN("theirs"), items[1].Device.ID)
	assert.Equal(t, 1, *items[1].ShareCount)
	assert.Nil(t, items[1].LastObservation)
	assert.NotNil(t, items[1].Limits)
	assert.Empty(t, items[1].Limits)
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := newTestStore(t)
	owner := model.NewAccount(ident.NewID(), 0, 1).WithMeta(model.NewAccountPublicMeta("Ada"))
	require.NoError(t, src.PutAccount(owner))
	require.NoError(t, src.PutAlias(model.NewAlias("ada", owner.ID, 0, 0)))
	g := model.NewDeviceGroup(ident.NewID(), owner.ID, "Home")
	require.NoError(t, src.PutGroup(g))
	require.NoError(t, src.PutDevice(model.NewDevice("d1", "n").WithOwner(owner.ID)))
	require.NoError(t, src.AddDeviceToGroup(model.NewDeviceGroupMembership(g.ID, "d1")))
	require.NoError(t, src.Share(model.NewDeviceAccessPermission(ident.NewID(), "d1")))
	require.NoError(t, src.SetLimit(limit.New(owner.ID, "d1", limit.Colour, 0).WithString("fff")))
	require.NoError(t, src.SetPushLimit(limit.NewPush("d1", limit.TempHigh, 30)))

	snap, err := src.Export()
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, snap.Version)

	file := NewSnapshotFile(filepath.Join(t.TempDir(), "state", "snapshot.json"))
	require.NoError(t, file.Save(snap))
	loaded, err := file.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	dst := newTestStore(t)
	require.NoError(t, dst.Import(loaded))

	again, err := dst.Export()
	require.NoError(t, err)
	again.SavedAt = snap.SavedAt
	assert.Equal(t, snap, again)

	require.NoError(t, file.Clear())
	gone, err := file.Load()
	require.NoError(t, err)
	assert.Nil(t, gone)
}
