package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID = "user_id"
	SessionName      = "sidetrack_session"
)

// Input limits
const (
	MinPasswordLength  = 8
	MaxTitleLength     = 255
	MaxLabelNameLength = 100
)

// TokenTTL is the lifetime of issued API bearer tokens.
const TokenTTL = 7 * 24 * time.Hour
