package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(Validation("bad")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(ErrEmptyCart))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(Infrastructure("insert order", errors.New("deadlock"))))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("untyped")))
}

func TestPublicMessage_HidesInfrastructureDetail(t *testing.T) {
	err := Infrastructure("insert order", errors.New("Error 1213: Deadlock found"))

	assert.NotContains(t, PublicMessage(err), "1213")
	assert.Contains(t, err.Error(), "Deadlock")
	assert.Equal(t, MsgEmptyCart, PublicMessage(ErrEmptyCart))
}

func TestIs_MatchesWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", Domain(MsgEmptyCart))

	assert.True(t, errors.Is(wrapped, ErrEmptyCart))
	assert.False(t, errors.Is(wrapped, ErrShippingNotFound))
	assert.Equal(t, KindDomain, KindOf(wrapped))
}
