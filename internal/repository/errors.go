package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrClanNotFound        = errors.New("clan not found")
	ErrClanExpired         = errors.New("clan expired")
	ErrClanAlreadyComplete = errors.New("clan already complete")
	ErrClanFull            = errors.New("clan full")
	ErrAlreadyMember       = errors.New("already a member of this clan")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// IsDuplicateKey reports whether err is a unique-constraint violation. GORM's
// TranslateError covers the common case; the string checks keep the sqlite
// test driver and older mysql drivers honest.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
