package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("get: %w", sql.ErrNoRows), ErrNotFound},
		{"unique", &pq.Error{Code: "23505"}, ErrConflict},
		{"foreign key", &pq.Error{Code: "23503"}, ErrInvalidReference},
		{"check", &pq.Error{Code: "23514"}, ErrConstraint},
		{"not null", &pq.Error{Code: "23502"}, ErrConstraint},
		{"invalid text", &pq.Error{Code: "22P02"}, ErrInvalidValue},
		{"numeric out of range", &pq.Error{Code: "22003"}, ErrInvalidValue},
		{"bad datetime", &pq.Error{Code: "22007"}, ErrInvalidValue},
		{"datetime overflow", &pq.Error{Code: "22008"}, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}
}

func TestTranslate_KeepsDetail(t *testing.T) {
	err := translate(&pq.Error{Code: "22003", Message: "numeric field overflow", Detail: "precision 14, scale 2"})
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.EqualError(t, err, "invalid value: precision 14, scale 2")
}

func TestTranslate_PassesThroughUnknown(t *testing.T) {
	assert.Nil(t, translate(nil))

	other := errors.New("connection reset")
	assert.Same(t, other, translate(other))

	syntax := &pq.Error{Code: "42601"}
	assert.Equal(t, error(syntax), translate(syntax))
}
