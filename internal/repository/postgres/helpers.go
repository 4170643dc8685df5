package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"

	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// marshalJSONB serializes a value for a jsonb column.
func marshalJSONB(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize record field").
			Mark(ierr.ErrSystem)
	}
	return data, nil
}

// unmarshalJSONB deserializes a jsonb column into out; empty columns are
// left at the zero value.
func unmarshalJSONB(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to deserialize record field").
			Mark(ierr.ErrSystem)
	}
	return nil
}
