package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/zigatrcek/openacademy/internal/app/models"
	"github.com/zigatrcek/openacademy/internal/db"
	"github.com/zigatrcek/openacademy/internal/pkg/apperrors"
)

// PartnerRepository handles database operations for partners and partner categories
type PartnerRepository struct {
	pool db.Querier
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(pool db.Querier) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

func (r *PartnerRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// Create inserts a partner and sets its ID
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	sql, args, err := psql.Insert("partners").
		Columns("name", "email", "instructor").
		Values(partner.Name, partner.Email, partner.Instructor).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&partner.ID); err != nil {
		return fmt.Errorf("error creating partner: %w", err)
	}
	return nil
}

// GetByID retrieves a partner with its categories and attended session IDs
func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*models.Partner, error) {
	partners, _, err := r.list(ctx, psql.Select("id", "name", "email", "instructor").
		Column("COUNT(*) OVER()").
		From("partners").
		Where("id = ?", id))
	if err != nil {
		return nil, err
	}
	if len(partners) == 0 {
		return nil, apperrors.ErrPartnerNotFound
	}
	return partners[0], nil
}

// GetAll retrieves a page of partners ordered by name along with the total count
func (r *PartnerRepository) GetAll(ctx context.Context, limit int, offset uint64) ([]*models.Partner, int64, error) {
	return r.list(ctx, psql.Select("id", "name", "email", "instructor").
		Column("COUNT(*) OVER()").
		From("partners").
		OrderBy("name", "id").
		Limit(uint64(limit)).
		Offset(offset))
}

// GetEligibleInstructors retrieves the partners flagged as instructors or carrying a
// category whose name contains "Teacher"
func (r *PartnerRepository) GetEligibleInstructors(ctx context.Context) ([]*models.Partner, error) {
	partners, _, err := r.list(ctx, psql.Select("p.id", "p.name", "p.email", "p.instructor").
		Column("COUNT(*) OVER()").
		From("partners p").
		Where(squirrel.Or{
			squirrel.Eq{"p.instructor": true},
			squirrel.Expr(`EXISTS (
				SELECT 1 FROM partner_category_rel r
				JOIN partner_categories c ON c.id = r.category_id
				WHERE r.partner_id = p.id AND c.name ILIKE ?)`, "%"+models.TeacherCategory+"%"),
		}).
		OrderBy("p.name", "p.id"))
	return partners, err
}

func (r *PartnerRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Partner, int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	partners := []*models.Partner{}
	var total int64
	for rows.Next() {
		var p models.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Instructor, &total); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		partners = append(partners, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, p := range partners {
		if p.Categories, err = r.GetCategories(ctx, p.ID); err != nil {
			return nil, 0, err
		}
		if p.SessionIDs, err = r.GetSessionIDs(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}
	return partners, total, nil
}

// Update updates the name, email and instructor flag of a partner
func (r *PartnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	sql, args, err := psql.Update("partners").
		Set("name", partner.Name).
		Set("email", partner.Email).
		Set("instructor", partner.Instructor).
		Where("id = ?", partner.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	cmdTag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating partner: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPartnerNotFound
	}
	return nil
}

// GetSessionIDs returns the IDs of the sessions a partner attends
func (r *PartnerRepository) GetSessionIDs(ctx context.Context, partnerID int64) ([]int64, error) {
	ids, err := queryInt64s(ctx, r.q(ctx), psql.Select("session_id").
		From("session_attendees").
		Where("partner_id = ?", partnerID).
		OrderBy("session_id"))
	if err != nil {
		return nil, fmt.Errorf("error retrieving partner sessions: %w", err)
	}
	return ids, nil
}

// GetCategories returns the categories of a partner
func (r *PartnerRepository) GetCategories(ctx context.Context, partnerID int64) ([]models.PartnerCategory, error) {
	sql, args, err := psql.Select("c.id", "c.name").
		From("partner_categories c").
		Join("partner_category_rel r ON r.category_id = c.id").
		Where("r.partner_id = ?", partnerID).
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving partner categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.PartnerCategory])
	if err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}
	if categories == nil {
		categories = []models.PartnerCategory{}
	}
	return categories, nil
}

// SetCategories replaces the categories of a partner
func (r *PartnerRepository) SetCategories(ctx context.Context, partnerID int64, categoryIDs []int64) error {
	sql, args, err := psql.Delete("partner_category_rel").Where("partner_id = ?", partnerID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error clearing partner categories: %w", err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	insert := psql.Insert("partner_category_rel").Columns("partner_id", "category_id").Suffix("ON CONFLICT DO NOTHING")
	for _, id := range categoryIDs {
		insert = insert.Values(partnerID, id)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return err
	}
	return nil
}

// GetAllCategories lists the partner categories
func (r *PartnerRepository) GetAllCategories(ctx context.Context) ([]models.PartnerCategory, error) {
	sql, args, err := psql.Select("id", "name").From("partner_categories").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.PartnerCategory])
	if err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}
	if categories == nil {
		categories = []models.PartnerCategory{}
	}
	return categories, nil
}

// EnsureCategory returns the ID of the category with the given name, creating it if needed
func (r *PartnerRepository) EnsureCategory(ctx context.Context, name string) (int64, error) {
	sql, args, err := psql.Insert("partner_categories").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrCategoryNotFound
		}
		return 0, fmt.Errorf("error ensuring category: %w", err)
	}
	return id, nil
}
