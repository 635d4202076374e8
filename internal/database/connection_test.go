package database

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubTx struct{ err error }

func (s stubTx) Rollback() error { return s.err }

var errConflict = errors.New("record_conflict")

func TestRollback_KeepsCause(t *testing.T) {
	err := rollback(stubTx{}, errConflict)
	assert.Equal(t, errConflict, err)
}

func TestRollback_FailureWrapsBoth(t *testing.T) {
	err := rollback(stubTx{err: sql.ErrConnDone}, errConflict)
	assert.ErrorIs(t, err, errConflict)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "rollback error")
}
