package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("resolve key: %w", Clone(ErrPageNotFound, "page abc not found"))

	appErr := FromError(wrapped)

	assert.Equal(t, "PAGE_NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "page abc not found", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestCloneMatchesOriginalCode(t *testing.T) {
	clone := Clone(ErrInvalidRange, "range must be one of [7, 30]")

	assert.True(t, errors.Is(clone, ErrInvalidRange))
	assert.False(t, errors.Is(clone, ErrInvalidSort))
	assert.Equal(t, "range must be one of [7, 30, 90]", ErrInvalidRange.Message)
}

func TestNilSafety(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
	assert.Nil(t, FromError(nil))
	assert.Nil(t, Clone(nil, "x"))
}
