package contract

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/huangsam/watchlist/schema"
)

// Pagination bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxUserIDLength = 128
)

// ValidatePagination checks already-parsed page and size values.
func ValidatePagination(page, size int) error {
	if page == 0 || size == 0 {
		return schema.InvalidInput(schema.MsgPaginationNotPositive)
	}
	if page < 0 || size < 0 {
		return schema.InvalidInput(schema.MsgPaginationInvalid)
	}
	if size > MaxPageSize {
		return schema.InvalidInput(schema.MsgPaginationMaxSize)
	}
	// The offset of the page must fit in an int
	if page-1 > math.MaxInt/size {
		return schema.InvalidInput(schema.MsgPaginationInvalid)
	}
	return nil
}

// ParsePagination parses raw page and size query values.
// Both absent selects the defaults; exactly one absent is rejected.
func ParsePagination(pageRaw, sizeRaw string) (int, int, error) {
	pageRaw, sizeRaw = strings.TrimSpace(pageRaw), strings.TrimSpace(sizeRaw)
	if pageRaw == "" && sizeRaw == "" {
		return DefaultPage, DefaultPageSize, nil
	}
	if pageRaw == "" || sizeRaw == "" {
		return 0, 0, schema.InvalidInput(schema.MsgPaginationTogether)
	}
	page, err := strconv.Atoi(pageRaw)
	if err != nil {
		return 0, 0, schema.InvalidInput(schema.MsgPaginationInvalid)
	}
	size, err := strconv.Atoi(sizeRaw)
	if err != nil {
		return 0, 0, schema.InvalidInput(schema.MsgPaginationInvalid)
	}
	if err := ValidatePagination(page, size); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

// Offset returns the number of entries skipped before the given page.
// The page and size must have passed ValidatePagination.
func Offset(page, size int) int {
	return (page - 1) * size
}

// ValidateUserID trims and checks an opaque caller identity.
func ValidateUserID(raw string) (string, error) {
	userID := strings.TrimSpace(raw)
	if userID == "" {
		return "", schema.InvalidInput(schema.MsgUserIDRequired)
	}
	if len(userID) > MaxUserIDLength {
		return "", schema.InvalidInput(schema.MsgUserIDInvalid)
	}
	for _, r := range userID {
		if !unicode.IsPrint(r) {
			return "", schema.InvalidInput(schema.MsgUserIDInvalid)
		}
	}
	return userID, nil
}
