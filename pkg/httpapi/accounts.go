package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/store"
)

// handleAccountRegister creates an account with a password alias and
// replies with a session token for it.
func (s *Server) handleAccountRegister(w http.ResponseWriter, r *http.Request) {
	var req api.AccountRegisterRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" || req.Password == "" {
		s.writeError(w, r, http.StatusBadRequest, "address and password are required", "invalid")
		return
	}

	acct := model.NewAccount(ident.NewID(), 0, s.now().Unix())
	alias, err := model.NewPasswordAlias(address, acct.ID, 0, 0, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.CreateAccount(acct, alias); err != nil {
		if errors.Is(err, store.ErrAddressTaken) {
			s.writeError(w, r, http.StatusConflict, "address is already registered", "conflict")
			return
		}
		s.fail(w, r, err)
		return
	}

	s.debugLog("account registered", "account", acct.ID.String())
	s.replyToken(w, r, acct)
}

// handleAccountLogin checks a password alias and replies with a session
// token. Unknown addresses and wrong passwords get the same reply.
func (s *Server) handleAccountLogin(w http.ResponseWriter, r *http.Request) {
	var req api.AccountLoginRequest
	if s.decode(w, r, &req) != nil {
		return
	}

	alias, err := s.store.GetAlias(strings.TrimSpace(req.Address))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if alias == nil || !alias.VerifyPassword(req.Password) {
		s.writeError(w, r, http.StatusUnauthorized, "invalid credentials", "unauthorized")
		return
	}

	acct, err := s.store.GetAccount(alias.Account)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if acct == nil {
		s.writeError(w, r, http.StatusUnauthorized, "invalid credentials", "unauthorized")
		return
	}
	s.replyToken(w, r, *acct)
}

func (s *Server) replyToken(w http.ResponseWriter, r *http.Request, acct model.Account) {
	tok, err := s.SessionToken(acct.ID, s.sessionTTL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.NewTokenAcquiredResponse(tok).WithAccount(acct))
}

func (s *Server) handleAddMobileDevice(w http.ResponseWriter, r *http.Request) {
	var req api.AddMobileDeviceRequest
	if s.decode(w, r, &req) != nil {
		return
	}
	if req.DeviceID == "" {
		s.writeError(w, r, http.StatusBadRequest, "device id is empty", "invalid")
		return
	}
	if req.DeviceType != api.MobileDeviceIOS && req.DeviceType != api.MobileDeviceAndroid {
		s.writeError(w, r, http.StatusBadRequest, "unknown device type "+req.DeviceType, "invalid")
		return
	}

	m := store.MobileDevice{DeviceID: req.DeviceID, DeviceType: req.DeviceType}
	if err := s.store.AddMobileDevice(account(r), m); err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, http.StatusOK, api.EmptyReply{})
}
