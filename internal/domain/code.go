package domain

import "strings"

// LoginCode is a single-use numeric code proving control of an email inbox.
// PK: email (normalized lowercase). At most one live code exists per email;
// issuing a new one overwrites the previous entry.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type LoginCode struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// NormalizeEmail lowercases and trims an email address. All store keys and
// token subjects go through this so "A@B.com " and "a@b.com" are one identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
