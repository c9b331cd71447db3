package constant

const (
	MinPasswordLength = 8

	BcryptCost = 10

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	// DummyPasswordHash is compared against when login hits an unknown
	// email, so the miss costs roughly the same as a wrong password.
	DummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	LocalsUserKey = "currentUser"
)
