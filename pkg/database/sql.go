package database

import (
	"database/sql"
	"fmt"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
)

// warnColumns is the select list scanned by scanWarn.
const warnColumns = "id, subject_id, issuer_id, reason, issued_at, expires_at"

// rowScanner is satisfied by *sql.Rows, *sql.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWarn(s rowScanner) (models.Warn, error) {
	var (
		w         models.Warn
		issuer    sql.NullString
		issuedAt  int64
		expiresAt int64
	)
	if err := s.Scan(&w.ID, &w.SubjectID, &issuer, &w.Reason, &issuedAt, &expiresAt); err != nil {
		return models.Warn{}, err
	}
	if issuer.Valid {
		w.IssuerID = &issuer.String
	}
	w.IssuedAt = fromMillis(issuedAt)
	w.ExpiresAt = fromMillis(expiresAt)
	return w, nil
}

func nullableIssuer(w models.Warn) sql.NullString {
	if w.IssuerID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *w.IssuerID, Valid: true}
}

// invariantViolations counts rows that could never have been written by the engine.
const invariantViolations = "SELECT COUNT(*) FROM warns WHERE expires_at <= issued_at OR subject_id = '' OR reason = ''"

func checkViolations(n int64) error {
	if n > 0 {
		return fmt.Errorf("%d warns break the record invariants", n)
	}
	return nil
}
