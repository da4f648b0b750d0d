package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/zigatrcek/openacademy/internal/db"
)

// psql builds statements with PostgreSQL placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	CourseRepository  *CourseRepository
	SessionRepository *SessionRepository
	PartnerRepository *PartnerRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool db.Querier) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(pool),
		CourseRepository:  NewCourseRepository(pool),
		SessionRepository: NewSessionRepository(pool),
		PartnerRepository: NewPartnerRepository(pool),
	}
}

// queryInt64s runs a query selecting a single BIGINT column
func queryInt64s(ctx context.Context, q db.Querier, query squirrel.Sqlizer) ([]int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
