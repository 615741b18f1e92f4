package memory

import (
	"context"
	"errors"
	"testing"

	"habitgrid/internal/repository"
	"habitgrid/internal/repository/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, New())
}

func TestStore_FailWrapsStoreError(t *testing.T) {
	s := New()
	s.Fail = errors.New("permission denied for table completion_logs")

	err := s.Logs().Append(context.Background(), "h1", "2025-01-01")
	var se *repository.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "permission denied for table completion_logs", err.Error())
	assert.False(t, repository.IsDuplicate(err))
}
