package token

import (
	"time"

	"github.com/qbiq/biq-go/pkg/ident"
)

// Session is a session record of the authentication service. Sessions are
// created and written by that service; this layer only reads them.
type Session struct {
	Token     string           `json:"token"`
	UserID    *ident.AccountID `json:"userid,omitempty"`
	Created   int64            `json:"created"` // epoch seconds
	Updated   int64            `json:"updated"` // epoch seconds
	Idle      int64            `json:"idle"`    // seconds of inactivity allowed
	Data      *string          `json:"data,omitempty"`
	IPAddress *string          `json:"ipaddress,omitempty"`
	UserAgent *string          `json:"useragent,omitempty"`
}

// Account returns the session's account, if any.
func (s Session) Account() (ident.AccountID, bool) {
	if s.UserID == nil {
		return ident.AccountID{}, false
	}
	return *s.UserID, true
}

// IdleExpired reports whether the session has been idle longer than
// allowed at now. A zero Idle never expires.
func (s Session) IdleExpired(now time.Time) bool {
	return s.Idle > 0 && now.Unix() > s.Updated+s.Idle
}
