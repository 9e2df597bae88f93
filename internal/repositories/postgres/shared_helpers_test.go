package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ugandalearn/learn-service/internal/repositories"
)

func TestHandleDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound, notFound: true},
		{name: "translated duplicate", err: gorm.ErrDuplicatedKey, duplicate: true},
		{name: "raw pg unique violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), duplicate: true},
		{name: "other pg error", err: &pgconn.PgError{Code: "23503"}},
		{name: "generic", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleDBError(tt.err, "create subject")
			assert.Error(t, got)
			assert.Contains(t, got.Error(), "create subject")
			assert.Equal(t, tt.notFound, repositories.IsNotFoundError(got))
			assert.Equal(t, tt.duplicate, repositories.IsDuplicateKeyError(got))
		})
	}

	assert.NoError(t, handleDBError(nil, "noop"))
}
