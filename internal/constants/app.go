package constants

import (
	"time"
)

// Storage quota
const (
	// BytesPerGiB is the binary gigabyte used for every usage figure shown to the user.
	BytesPerGiB = 1024 * 1024 * 1024

	// QuotaBytes is the fixed per-user storage ceiling (15 GiB).
	// Display only: uploads are never rejected locally for exceeding it.
	QuotaBytes int64 = 15 * BytesPerGiB
)

// Backend endpoints, relative to the configured backend origin.
const (
	PathSignup       = "/api/auth/signup"
	PathEditFolders  = "/api/edit/folders"
	PathEditFiles    = "/api/edit/files"
	PathEdit         = "/api/edit"
	PathShare        = "/api/share"
	PathUploadFile   = "/api/upload"
	PathUploadFolder = "/api/folder/upload-folder"
)

// Multipart field names expected by the upload endpoints.
const (
	FieldFile       = "file"
	FieldFiles      = "files"
	FieldFolderName = "folderName"
	FieldUserID     = "userId"
)

// Identity provider endpoints (Supabase-compatible).
const (
	PathAuthorize   = "/auth/v1/authorize"
	PathToken       = "/auth/v1/token"
	PathUser        = "/auth/v1/user"
	PathRestPrefix  = "/rest/v1/"
	TableUsers      = "users"
	TableFiles      = "files"
	TableFolders    = "folder"
	DefaultProvider = "google"
)

// Defaults
const (
	DefaultBackendURL  = "http://localhost:5000"
	DefaultRedirectURL = "http://localhost:3000/profile-setup"

	// DefaultRecentLimit is how many entries "dashboard" shows under recent uploads.
	DefaultRecentLimit = 10

	// UnnamedUser is shown when the identity provider has no full_name for the account.
	UnnamedUser = "No Name"
)

// Session handling
const (
	// TokenExpirySkew treats tokens this close to expiry as already expired,
	// so a request never leaves with a token that dies in flight.
	TokenExpirySkew = 30 * time.Second

	// SessionFileName is the cached session inside the config directory.
	SessionFileName = "session.json"
)

// Retry policy for idempotent API reads.
// Mutations and uploads are never retried.
const (
	RetryMax          = 4
	RetryWaitMin      = 500 * time.Millisecond
	RetryWaitMax      = 10 * time.Second
	APIRequestTimeout = 60 * time.Second
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (60 seconds)
	HTTPTLSHandshakeTimeout = 60 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second
)

// Upload streaming
const (
	// UploadReadBufferSize is the chunk handed to the transport per read.
	// Smaller chunks mean more progress ticks; 256 KiB keeps the bar smooth
	// without measurable throughput cost.
	UploadReadBufferSize = 256 * 1024

	// ProgressRefreshRate is how often multi-bar output is redrawn.
	ProgressRefreshRate = 300 * time.Millisecond
)

// Log file rotation
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 5
	LogMaxAgeDays = 30
)
