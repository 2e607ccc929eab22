package api

import (
	"github.com/qbiq/biq-go/pkg/model"
)

// AccountRegisterRequest creates an account with a password alias.
type AccountRegisterRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// NewAccountRegisterRequest returns a register request.
func NewAccountRegisterRequest(address, password string) AccountRegisterRequest {
	return AccountRegisterRequest{Address: address, Password: password}
}

// AccountLoginRequest logs in with a password alias.
type AccountLoginRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// NewAccountLoginRequest returns a login request.
func NewAccountLoginRequest(address, password string) AccountLoginRequest {
	return AccountLoginRequest{Address: address, Password: password}
}

// TokenAcquiredResponse carries a session token and, optionally, the account
// it was issued for.
type TokenAcquiredResponse struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"account,omitempty"`
}

// NewTokenAcquiredResponse returns a token response without the account.
func NewTokenAcquiredResponse(token string) TokenAcquiredResponse {
	return TokenAcquiredResponse{Token: token}
}

// WithAccount returns a copy of r including the account.
func (r TokenAcquiredResponse) WithAccount(a model.Account) TokenAcquiredResponse {
	r.Account = &a
	return r
}

// AccountAcquireTokenRequest exchanges a third-party OAuth access token for
// a session token.
type AccountAcquireTokenRequest struct {
	OAuthProvider    string `json:"oauthProvider"`
	OAuthAccessToken string `json:"oauthAccessToken"`
}

// NewAccountAcquireTokenRequest returns an acquire token request.
func NewAccountAcquireTokenRequest(provider, accessToken string) AccountAcquireTokenRequest {
	return AccountAcquireTokenRequest{OAuthProvider: provider, OAuthAccessToken: accessToken}
}

// AddMobileDeviceRequest registers a phone or tablet for push notifications.
type AddMobileDeviceRequest struct {
	DeviceID   string `json:"deviceId"`
	DeviceType string `json:"deviceType"`
}

// Mobile device types.
const (
	MobileDeviceIOS     = "ios"
	MobileDeviceAndroid = "android"
)

// NewAddMobileDeviceRequest returns an add mobile device request.
func NewAddMobileDeviceRequest(deviceID, deviceType string) AddMobileDeviceRequest {
	return AddMobileDeviceRequest{DeviceID: deviceID, DeviceType: deviceType}
}

// PasswordResetRequest starts a password reset for an address.
type PasswordResetRequest struct {
	Address string  `json:"address"`
	AppID   *string `json:"appId,omitempty"`
}

// NewPasswordResetRequest returns a reset request.
func NewPasswordResetRequest(address string) PasswordResetRequest {
	return PasswordResetRequest{Address: address}
}

// WithAppID returns a copy of r naming the requesting app.
func (r PasswordResetRequest) WithAppID(appID string) PasswordResetRequest {
	r.AppID = &appID
	return r
}

// PasswordResetCompleteRequest sets a new password using the token sent by
// the reset step.
type PasswordResetCompleteRequest struct {
	Address   string `json:"address"`
	Password  string `json:"password"`
	AuthToken string `json:"authToken"`
}

// NewPasswordResetCompleteRequest returns a reset completion request.
func NewPasswordResetCompleteRequest(address, password, authToken string) PasswordResetCompleteRequest {
	return PasswordResetCompleteRequest{Address: address, Password: password, AuthToken: authToken}
}
