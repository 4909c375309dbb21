package datastore

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// BBCodeRepository reads and writes the bbcodes table.
type BBCodeRepository struct {
	db    *gorm.DB
	table string
}

// NewBBCodeRepository creates a repository over tables.BBCodes().
func NewBBCodeRepository(db *gorm.DB, tables Tables) *BBCodeRepository {
	return &BBCodeRepository{
		db:    db,
		table: tables.BBCodes(),
	}
}

// FindByNameOrTag returns the row whose tag equals name or tag, ignoring
// case. When several rows match the lowest id wins. Returns
// ErrBBCodeNotFound when nothing matches.
func (r *BBCodeRepository) FindByNameOrTag(ctx context.Context, name, tag string) (*BBCode, error) {
	var rec BBCode
	err := r.db.WithContext(ctx).Table(r.table).
		Where("LOWER(bbcode_tag) = ? OR LOWER(bbcode_tag) = ?", strings.ToLower(name), strings.ToLower(tag)).
		Order("bbcode_id").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ErrBBCodeNotFound, r.table, name)
		}
		return nil, errors.DatabaseError(err, "find_bbcode", r.table)
	}
	return &rec, nil
}

// MaxID returns the highest bbcode_id, or 0 when the table is empty.
func (r *BBCodeRepository) MaxID(ctx context.Context) (int, error) {
	var result struct {
		MaxID sql.NullInt64
	}
	err := r.db.WithContext(ctx).Table(r.table).
		Select("MAX(bbcode_id) AS max_id").
		Scan(&result).Error
	if err != nil {
		return 0, errors.DatabaseError(err, "max_bbcode_id", r.table)
	}
	if !result.MaxID.Valid {
		return 0, nil
	}
	return int(result.MaxID.Int64), nil
}

// Insert writes a new row. rec.ID must already be assigned.
func (r *BBCodeRepository) Insert(ctx context.Context, rec *BBCode) error {
	if err := r.db.WithContext(ctx).Table(r.table).Create(rec).Error; err != nil {
		return errors.DatabaseError(err, "insert_bbcode", r.table)
	}
	return nil
}

// Update rewrites the compiled fields of the row with rec.ID.
// bbcode_id and display_on_posting are never touched.
func (r *BBCodeRepository) Update(ctx context.Context, rec *BBCode) error {
	err := r.db.WithContext(ctx).Table(r.table).
		Where("bbcode_id = ?", rec.ID).
		Updates(map[string]any{
			"bbcode_tag":          rec.Tag,
			"bbcode_helpline":     rec.Helpline,
			"bbcode_match":        rec.Match,
			"bbcode_tpl":          rec.Template,
			"first_pass_match":    rec.FirstPassMatch,
			"first_pass_replace":  rec.FirstPassReplace,
			"second_pass_match":   rec.SecondPassMatch,
			"second_pass_replace": rec.SecondPassReplace,
		}).Error
	if err != nil {
		return errors.DatabaseError(err, "update_bbcode", r.table)
	}
	return nil
}

// GetAll returns every row ordered by id.
func (r *BBCodeRepository) GetAll(ctx context.Context) ([]BBCode, error) {
	var rows []BBCode
	if err := r.db.WithContext(ctx).Table(r.table).Order("bbcode_id").Find(&rows).Error; err != nil {
		return nil, errors.DatabaseError(err, "list_bbcodes", r.table)
	}
	return rows, nil
}

// Count returns the number of rows.
func (r *BBCodeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Table(r.table).Count(&n).Error; err != nil {
		return 0, errors.DatabaseError(err, "count_bbcodes", r.table)
	}
	return n, nil
}
