package httpapi

import (
	"net/http"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/model"
)

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.GroupsOwnedBy(account(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if groups == nil {
		groups = []model.DeviceGroup{}
	}
	s.write(w, r, http.StatusOK, groups)
}

func (s *Server) handleGroupCreate(w http.ResponseWriter, r *http.Request) {
	var req api.GroupCreateRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	g := model.NewDeviceGroup(ident.NewID(), account(r), req.Name)
	if err := s.store.PutGroup(g); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, g)
}

func (s *Server) handleGroupDelete(w http.ResponseWriter, r *http.Request) {
	var req api.GroupDeleteRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if _, ok := s.ownedGroup(w, r, req.GroupID, false); !ok {
		return
	}
	if err := s.store.DeleteGroup(req.GroupID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.EmptyReply{})
}

func (s *Server) handleGroupUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.GroupUpdateRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	g, ok := s.ownedGroup(w, r, req.GroupID, false)
	if !ok {
		return
	}
	if req.Name != nil {
		if err := s.store.RenameGroup(req.GroupID, *req.Name); err != nil {
			s.fail(w, r, err)
			return
		}
		g.Name = *req.Name
	}
	s.write(w, r, http.StatusOK, *g)
}

func (s *Server) handleGroupListDevices(w http.ResponseWriter, r *http.Request) {
	var req api.GroupListDevicesRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	g, ok := s.ownedGroup(w, r, req.GroupID, true)
	if !ok {
		return
	}
	s.write(w, r, http.StatusOK, *g)
}

func (s *Server) handleGroupAddDevice(w http.ResponseWriter, r *http.Request) {
	var req api.GroupAddDeviceRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if _, ok := s.ownedGroup(w, r, req.GroupID, false); !ok {
		return
	}
	if _, ok := s.visibleDevice(w, r, req.DeviceID); !ok {
		return
	}
	if err := s.store.AddDeviceToGroup(model.NewDeviceGroupMembership(req.GroupID, req.DeviceID)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.EmptyReply{})
}

func (s *Server) handleGroupRemoveDevice(w http.ResponseWriter, r *http.Request) {
	var req api.GroupRemoveDeviceRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if _, ok := s.ownedGroup(w, r, req.GroupID, false); !ok {
		return
	}
	if err := s.store.RemoveDeviceFromGroup(model.NewDeviceGroupMembership(req.GroupID, req.DeviceID)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.EmptyReply{})
}

// ownedGroup loads a group the caller owns, replying 404 otherwise.
func (s *Server) ownedGroup(w http.ResponseWriter, r *http.Request, id ident.ID, withDevices bool) (*model.DeviceGroup, bool) {
	g, err := s.store.GetGroup(id, withDevices)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if g == nil || g.OwnerID != account(r) {
		s.writeError(w, r, http.StatusNotFound, "group not found", "not_found")
		return nil, false
	}
	return g, true
}
