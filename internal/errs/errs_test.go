package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(New(KindValidation, "bad input")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))

	// 包装后仍能提取分类
	wrapped := fmt.Errorf("outer: %w", New(KindNotFound, "missing"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindTransport, "rpc call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "rpc call failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(KindTransport, "timeout")))
	assert.False(t, IsRetryable(New(KindReverted, "execution reverted")))
	assert.False(t, IsRetryable(New(KindValidation, "bad")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindInsufficient, http.StatusBadRequest},
		{KindTransport, http.StatusBadGateway},
		{KindReverted, http.StatusConflict},
		{KindAlreadyFinal, http.StatusConflict},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(New(tt.kind, "x")), "kind %d", tt.kind)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
