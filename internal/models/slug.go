package models

import (
	"crypto/rand"
	"strings"

	"gorm.io/gorm"
)

const slugCodeChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// Slugify lowercases s and collapses everything outside [a-z0-9] into
// single dashes.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// UniqueSlug appends a random 4-character code to the slugified base and
// retries until the value is unused in the given table. Slugs are capped
// at 50 characters.
func UniqueSlug(db *gorm.DB, table, base string) (string, error) {
	const maxLen = 50
	slug := Slugify(base)
	if len(slug) > maxLen-5 {
		slug = slug[:maxLen-5]
	}
	for {
		candidate := slug + "-" + randomCode(4)
		var count int64
		if err := db.Table(table).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}

func randomCode(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in deep trouble anyway
		panic(err)
	}
	for i := range buf {
		buf[i] = slugCodeChars[int(buf[i])%len(slugCodeChars)]
	}
	return string(buf)
}
