// Package avatar resolves default avatars and stores uploaded ones in S3.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const gravatarBase = "https://www.gravatar.com/avatar/"

// GravatarURL returns the Gravatar image URL of email, or "" for an empty email.
func GravatarURL(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(email))
	return gravatarBase + hex.EncodeToString(sum[:])
}
