package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/increment_al_go/shared/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = helper.GetTypedValueOf[string](func() (any, error) { return 7, nil })
	assert.ErrorContains(t, err, "unexpected type: int")

	boom := errors.New("boom")
	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestAs_NilBecomesZero(t *testing.T) {
	v, err := helper.As[error](nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	s, err := helper.As[[]int](nil)
	require.NoError(t, err)
	assert.Nil(t, s)
}
