package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/jjpaste/jjbin/models"
)

// Users is the bun-backed UserStore.
type Users struct {
	db *bun.DB
}

// NewUsers returns a UserStore over db.
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

func (s *Users) Create(ctx context.Context, u *models.User) error {
	// Username first, then email: the two duplicates surface distinct errors.
	exists, err := s.db.NewSelect().Model((*models.User)(nil)).
		Where("username = ?", u.Username).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateUsername
	}

	exists, err = s.db.NewSelect().Model((*models.User)(nil)).
		Where("email = ?", u.Email).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEmail
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(u).Exec(ctx); err != nil {
		// Two registrations can race past the checks above; the unique
		// constraints are the backstop.
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			if strings.Contains(err.Error(), "email") {
				return ErrDuplicateEmail
			}
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *Users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := s.db.NewSelect().Model(u).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Users) ByID(ctx context.Context, id int) (*models.User, error) {
	u := &models.User{}
	err := s.db.NewSelect().Model(u).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Users) List(ctx context.Context, page, perPage int) ([]models.User, int, error) {
	var users []models.User
	total, err := s.db.NewSelect().Model(&users).
		OrderExpr("u.created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Users) Delete(ctx context.Context, u *models.User) error {
	// Owned pastes go with the account.
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Paste)(nil)).
			Where("user_id = ?", u.ID).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model(u).WherePK().Exec(ctx)
		return err
	})
}

func (s *Users) PasteCount(ctx context.Context, userID int) (int, error) {
	return s.db.NewSelect().Model((*models.Paste)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

// Pastes is the bun-backed PasteStore.
type Pastes struct {
	db *bun.DB
}

// NewPastes returns a PasteStore over db.
func NewPastes(db *bun.DB) *Pastes {
	return &Pastes{db: db}
}

// maxIDAttempts bounds the collision-retry loop. 62^8 candidates make even a
// second attempt rare; hitting the bound means something is badly wrong.
const maxIDAttempts = 32

func (s *Pastes) Create(ctx context.Context, p *models.Paste) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	p.Views = 0

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		p.UniqueID = NewUniqueID()

		exists, err := s.db.NewSelect().Model((*models.Paste)(nil)).
			Where("unique_id = ?", p.UniqueID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		_, err = s.db.NewInsert().Model(p).Exec(ctx)
		if err == nil {
			return nil
		}
		// A concurrent writer can claim the id between the check and the
		// insert; the unique constraint catches that, so just re-roll.
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			continue
		}
		return err
	}
	return fmt.Errorf("could not allocate a unique paste id after %d attempts", maxIDAttempts)
}

func (s *Pastes) ByUniqueID(ctx context.Context, uniqueID string) (*models.Paste, error) {
	p := &models.Paste{}
	err := s.db.NewSelect().Model(p).
		Relation("Author").
		Where("unique_id = ?", uniqueID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Pastes) Update(ctx context.Context, p *models.Paste, upd PasteUpdate) error {
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Language != nil {
		p.Language = *upd.Language
	}
	if upd.IsPublic != nil {
		p.IsPublic = *upd.IsPublic
	}
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.NewUpdate().Model(p).
		Column("title", "content", "language", "is_public", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func (s *Pastes) Delete(ctx context.Context, p *models.Paste) error {
	_, err := s.db.NewDelete().Model(p).WherePK().Exec(ctx)
	return err
}

func (s *Pastes) IncrementViews(ctx context.Context, p *models.Paste) error {
	// One atomic statement so concurrent reads never lose an increment, and
	// no updated_at bump: viewing is not a mutation.
	_, err := s.db.NewUpdate().
		TableExpr("pastes").
		Set("views = views + 1").
		Where("id = ?", p.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	p.Views++
	return nil
}

func (s *Pastes) List(ctx context.Context, f PasteFilter, page, perPage int) ([]models.Paste, int, error) {
	var pastes []models.Paste
	q := s.db.NewSelect().Model(&pastes).
		Relation("Author").
		OrderExpr("p.created_at DESC")

	if f.PublicOnly {
		q = q.Where("p.is_public")
	}
	if f.Language != "" {
		q = q.Where("p.language = ?", f.Language)
	}
	if f.Search != "" {
		pat := fmt.Sprintf("%%%s%%", f.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.title ILIKE ?", pat).WhereOr("p.content ILIKE ?", pat)
		})
	}
	if f.UserID != nil {
		q = q.Where("p.user_id = ?", *f.UserID)
	}

	total, err := q.Limit(perPage).Offset((page - 1) * perPage).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return pastes, total, nil
}
