package httpapi

import (
	"net/http"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/capability"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/store"
	"github.com/qbiq/biq-go/pkg/token"
)

func (s *Server) handleDeviceList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.DeviceList(account(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, items)
}

func (s *Server) handleDeviceRegister(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceRegisterRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if req.DeviceID.IsZero() {
		s.writeError(w, r, http.StatusBadRequest, "device id is empty", "invalid")
		return
	}

	d, err := s.store.GetDevice(req.DeviceID, store.Include{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if d == nil {
		nd := model.NewDevice(req.DeviceID, req.DeviceID.VendorID())
		d = &nd
	} else if owner, ok := d.Owner(); ok && owner != account(r) {
		s.writeError(w, r, http.StatusConflict, "device is registered to another account", "conflict")
		return
	} else if !ok && locked(*d) {
		s.writeLocked(w, r)
		return
	}

	registered := d.WithOwner(account(r))
	if err := s.store.PutDevice(registered); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, registered)
}

func (s *Server) handleDeviceUnregister(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceUnregisterRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if _, ok := s.ownedDevice(w, r, req.DeviceID); !ok {
		return
	}
	if err := s.store.DeleteDevice(req.DeviceID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.EmptyReply{})
}

func (s *Server) handleDeviceUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceUpdateRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	d, ok := s.ownedDevice(w, r, req.DeviceID)
	if !ok {
		return
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Flags != nil {
		flags := *req.Flags
		d.Flags = &flags
	}
	if err := s.store.PutDevice(*d); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, *d)
}

func (s *Server) handleDeviceShareToken(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceShareTokenRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	d, ok := s.ownedDevice(w, r, req.DeviceID)
	if !ok {
		return
	}
	if locked(*d) {
		s.writeLocked(w, r)
		return
	}

	now := s.now()
	tok, err := s.signToken(token.Claims{}.
		WithIssuer(ShareIssuer).
		WithSubject(req.DeviceID.String()).
		WithAccount(account(r)).
		WithIssuedAt(now).
		WithExpiration(now.Add(ShareTokenTTL)))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.NewDeviceShareTokenResponse(tok))
}

// handleDeviceShare redeems a share token for the caller. Without a token
// the owner confirms the device is shareable and nothing changes. Locked
// devices are never shared.
func (s *Server) handleDeviceShare(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceShareRequest
	if s.decode(w, r, &req) != nil {
		return
	}

	if !req.IsRedemption() {
		d, ok := s.ownedDevice(w, r, req.DeviceID)
		if !ok {
			return
		}
		if locked(*d) {
			s.writeLocked(w, r)
			return
		}
		s.write(w, r, http.StatusOK, api.EmptyReply{})
		return
	}

	claims, err := s.parseToken(*req.Token, ShareIssuer)
	if err != nil || claims.Subject == nil || *claims.Subject != req.DeviceID.String() {
		s.writeError(w, r, http.StatusForbidden, "invalid share token", "forbidden")
		return
	}

	d, err := s.store.GetDevice(req.DeviceID, store.Include{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if d == nil {
		s.writeError(w, r, http.StatusNotFound, "device not found", "not_found")
		return
	}
	if d.IsOwnedBy(account(r)) {
		s.write(w, r, http.StatusOK, api.EmptyReply{})
		return
	}
	if locked(*d) {
		s.writeLocked(w, r)
		return
	}

	if err := s.store.Share(model.NewDeviceAccessPermission(account(r), req.DeviceID)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.debugLog("device shared", "device", req.DeviceID.String(), "account", account(r).String())
	s.write(w, r, http.StatusOK, api.EmptyReply{})
}

func (s *Server) handleDeviceLimits(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceLimitsRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if _, ok := s.visibleDevice(w, r, req.DeviceID); !ok {
		return
	}
	limits, err := s.store.Limits(account(r), req.DeviceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.NewDeviceLimitsResponse(req.DeviceID, limits))
}

// handleDeviceUpdateLimits stores the caller's limits. When the caller owns
// the device the limits also become its push limits and are published.
func (s *Server) handleDeviceUpdateLimits(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceUpdateLimitsRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	d, ok := s.visibleDevice(w, r, req.DeviceID)
	if !ok {
		return
	}

	caller := account(r)
	if err := s.store.SetLimits(caller, req.DeviceID, req.Limits); err != nil {
		s.fail(w, r, err)
		return
	}

	if d.IsOwnedBy(caller) {
		for _, setting := range req.Limits {
			if err := s.store.SetPushLimit(limit.FromSetting(caller, req.DeviceID, setting).Push()); err != nil {
				s.fail(w, r, err)
				return
			}
		}
		s.syncPushLimits(req.DeviceID)
	}

	limits, err := s.store.Limits(caller, req.DeviceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.NewDeviceLimitsResponse(req.DeviceID, limits))
}

// syncPushLimits publishes the push limits of device. Failures are logged;
// the stored limits are authoritative.
func (s *Server) syncPushLimits(device ident.DeviceURN) {
	if s.notifier == nil {
		return
	}
	limits, err := s.store.PushLimits(device)
	if err == nil {
		err = s.notifier.SyncLimits(device, limits)
	}
	if err != nil {
		s.errorLog("sync push limits", "device", device.String(), "error", err)
	}
}

func (s *Server) handleDeviceObservations(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceObservationsRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if !req.Interval.IsValid() {
		s.writeError(w, r, http.StatusBadRequest, "unknown interval "+req.Interval.String(), "invalid")
		return
	}
	if _, ok := s.visibleDevice(w, r, req.DeviceID); !ok {
		return
	}
	obs, err := s.store.Observations(req.DeviceID, req.Interval, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, obs)
}

// handleDeviceAddObservation stores an observation for a device the caller
// owns and publishes the alerts its push limits raise. Publish failures are
// logged; the stored observation is returned either way.
func (s *Server) handleDeviceAddObservation(w http.ResponseWriter, r *http.Request) {
	var obs model.Observation
	if s.decode(w, r, &obs) != nil {
		return
	}
	d, ok := s.ownedDevice(w, r, obs.DeviceID)
	if !ok {
		return
	}

	id, err := s.store.AddObservation(obs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	obs.ID = id
	s.notify(*d, obs)
	s.write(w, r, http.StatusOK, obs)
}

func (s *Server) notify(d model.Device, obs model.Observation) {
	if s.notifier == nil {
		return
	}
	limits, err := s.store.PushLimits(d.ID)
	if err != nil {
		s.errorLog("load push limits", "device", d.ID.String(), "error", err)
		return
	}
	if _, err := s.notifier.NotifyNamed(d.Name, obs, limits); err != nil {
		s.errorLog("publish alerts", "device", d.ID.String(), "error", err)
	}
}

func locked(d model.Device) bool {
	return d.DeviceFlags().Contains(capability.Locked)
}

func (s *Server) writeLocked(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusConflict, "device is locked", "locked")
}

// ownedDevice loads a device the caller owns, replying 404 otherwise.
func (s *Server) ownedDevice(w http.ResponseWriter, r *http.Request, id ident.DeviceURN) (*model.Device, bool) {
	d, err := s.store.GetDevice(id, store.Include{})
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if d == nil || !d.IsOwnedBy(account(r)) {
		s.writeError(w, r, http.StatusNotFound, "device not found", "not_found")
		return nil, false
	}
	return d, true
}

// visibleDevice loads a device the caller owns or has been shared,
// replying 404 otherwise.
func (s *Server) visibleDevice(w http.ResponseWriter, r *http.Request, id ident.DeviceURN) (*model.Device, bool) {
	d, err := s.store.GetDevice(id, store.Include{AccessPermissions: true})
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if d != nil && canSee(*d, account(r)) {
		return d, true
	}
	s.writeError(w, r, http.StatusNotFound, "device not found", "not_found")
	return nil, false
}

func canSee(d model.Device, caller ident.AccountID) bool {
	if d.IsOwnedBy(caller) {
		return true
	}
	if d.AccessPermissions == nil {
		return false
	}
	for _, p := range *d.AccessPermissions {
		if p.AccountID == caller {
			return true
		}
	}
	return false
}
