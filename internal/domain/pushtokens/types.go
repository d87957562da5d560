package pushtokens

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidToken      = errors.New("invalid expo push token")
	ErrUserNotFound      = errors.New("push token owner not found")
	QueryTimeoutDuration = time.Second * 5
)

// ValidToken reports whether token looks like an Expo push token,
// e.g. ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx].
func ValidToken(token string) bool {
	for _, prefix := range []string{"ExponentPushToken[", "ExpoPushToken["} {
		if strings.HasPrefix(token, prefix) && strings.HasSuffix(token, "]") && len(token) > len(prefix)+1 {
			return true
		}
	}
	return false
}
