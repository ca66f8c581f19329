package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// MapError classifies gorm/driver failures into domain error codes. Constraint violations are
// internal; everything else is treated as the store being unavailable.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.Wrap(domain.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.UnavailableError(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(strings.TrimSpace(pgErr.Code), "23") { // integrity_constraint_violation
			return domain.Wrap(domain.CodeInternal, op, err)
		}
		return domain.UnavailableError(op, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return domain.Wrap(domain.CodeInternal, op, err)
	}
	return domain.UnavailableError(op, err)
}
