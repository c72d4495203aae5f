package domain

// User is an API user allowed to obtain tokens. Password storage is a
// bcrypt hash; the API never returns users.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// TokenRequest is the credential payload for POST /v1/auth/token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the payload for POST /v1/auth/token/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPair is the response body for both token endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
