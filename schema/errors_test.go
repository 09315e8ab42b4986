package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same kind", ContentNotFound(MovieContent), ErrContentNotFound, true},
		{"different kind", NewError(KindNotFound, MsgNotFound, nil), ErrAlreadyExists, false},
		{"wrapped", fmt.Errorf("add: %w", NewError(KindAlreadyExists, MsgAlreadyExists, nil)), ErrAlreadyExists, true},
		{"plain error", errors.New("boom"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestContentNotFoundMessage(t *testing.T) {
	assert.Equal(t, MsgMovieNotFound, ContentNotFound(MovieContent).Message)
	assert.Equal(t, MsgTVShowNotFound, ContentNotFound(TVShowContent).Message)
}

func TestErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindDependencyUnavailable, MsgStoreUnavailable, cause)
	assert.Equal(t, "List store is unavailable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NOT_FOUND", ErrNotFound.Error())
}

func TestParseContentType(t *testing.T) {
	ct, ok := ParseContentType("tvshow")
	assert.True(t, ok)
	assert.Equal(t, TVShowContent, ct)

	_, ok = ParseContentType("Movie")
	assert.False(t, ok)
	assert.Equal(t, "TV Show", TVShowContent.Label())
}
