package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	type endpoint struct {
		URL      string `json:"url" validate:"required"`
		Username string `json:"username" validate:"required"`
		Retries  int    `json:"retry_count" validate:"gte=0"`
	}

	t.Run("valid struct passes", func(t *testing.T) {
		assert.NoError(t, Validate(endpoint{URL: "http://head-0:9191", Username: "loader"}))
	})

	t.Run("violations name fields by json tag", func(t *testing.T) {
		err := Validate(endpoint{Retries: -1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "url")
		assert.Contains(t, err.Error(), "username")
		assert.Contains(t, err.Error(), "retry_count")
	})

	t.Run("pointer input is accepted", func(t *testing.T) {
		err := Validate(&endpoint{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "url")
	})
}
