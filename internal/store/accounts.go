package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evmeri/internal/apperr"
	"evmeri/internal/auth"
	"evmeri/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users { return &Users{db: db} }

// UserPatch carries the admin-editable user fields. Roles, when non-nil,
// replaces the whole role set.
type UserPatch struct {
	Email        *string
	IsActive     *bool
	PasswordHash *string
	Roles        []string
}

func (u *Users) rolesNamed(tx *gorm.DB, names []string) ([]models.Role, error) {
	var roles []models.Role
	if len(names) == 0 {
		return roles, nil
	}
	if err := tx.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, translate(err, "roles")
	}
	return roles, nil
}

func (u *Users) Create(ctx context.Context, user *models.User, roles []string) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rs, err := u.rolesNamed(tx, roles)
		if err != nil {
			return err
		}
		user.Email = strings.ToLower(strings.TrimSpace(user.Email))
		user.Roles = rs
		return translate(tx.Create(user).Error, "user")
	})
}

func (u *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (u *Users) ByID(ctx context.Context, id string) (*models.User, error) {
	if !validUUID(id) {
		return nil, apperr.NotFound("user not found")
	}
	var user models.User
	if err := u.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// UpsertTelegram finds the user bound to a Telegram account, creating it on
// first login and refreshing the names on later ones.
func (u *Users) UpsertTelegram(ctx context.Context, tu auth.TelegramUser) (*models.User, bool, error) {
	var user models.User
	created := false
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Roles").First(&user, "telegram_id = ?", tu.ID).Error
		switch {
		case err == nil:
			user.FirstName, user.LastName = tu.FirstName, tu.LastName
			return translate(tx.Model(&user).Updates(map[string]any{
				"first_name": tu.FirstName, "last_name": tu.LastName,
			}).Error, "user")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return translate(err, "user")
		}
		// Telegram users never log in with a password.
		hash, err := auth.HashPassword(uuid.NewString())
		if err != nil {
			return err
		}
		rs, err := u.rolesNamed(tx, []string{models.RoleUser})
		if err != nil {
			return err
		}
		id := tu.ID
		user = models.User{
			Email:        fmt.Sprintf("%d@telegram.com", tu.ID),
			PasswordHash: hash,
			FirstName:    tu.FirstName,
			LastName:     tu.LastName,
			TelegramID:   &id,
			IsActive:     true,
			Roles:        rs,
		}
		created = true
		return translate(tx.Create(&user).Error, "user")
	})
	if err != nil {
		return nil, false, err
	}
	return &user, created, nil
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := u.db.WithContext(ctx).Preload("Roles").Order("created_at desc").Find(&users).Error
	return users, translate(err, "users")
}

func (u *Users) Update(ctx context.Context, id string, p UserPatch) (*models.User, error) {
	user, err := u.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*p.Email))
		}
		if p.IsActive != nil {
			user.IsActive = *p.IsActive
		}
		if p.PasswordHash != nil {
			user.PasswordHash = *p.PasswordHash
		}
		if p.Roles != nil {
			rs, err := u.rolesNamed(tx, p.Roles)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Roles").Replace(rs); err != nil {
				return translate(err, "user roles")
			}
			user.Roles = rs
		}
		return translate(tx.Omit("Roles").Save(user).Error, "user")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return apperr.NotFound("user not found")
	}
	res := u.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// Sessions backs the jti check done by auth.JWTAuth.
type Sessions struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessions(db *gorm.DB) *Sessions { return &Sessions{db: db, now: time.Now} }

func (s *Sessions) Open(ctx context.Context, sess *models.Session) error {
	return translate(s.db.WithContext(ctx).Create(sess).Error, "session")
}

func (s *Sessions) Revoke(ctx context.Context, jti string) error {
	now := s.now()
	err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("jti = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", &now).Error
	return translate(err, "session")
}

func (s *Sessions) SessionActive(ctx context.Context, jti string) (bool, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).First(&sess, "jti = ?", jti).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, translate(err, "session")
	}
	return sess.Active(s.now()), nil
}

type AuditLogs struct {
	db *gorm.DB
}

func NewAuditLogs(db *gorm.DB) *AuditLogs { return &AuditLogs{db: db} }

func (a *AuditLogs) Record(ctx context.Context, userID, action string, meta map[string]any) error {
	entry := models.AuditLog{Action: action, Metadata: models.MustJSONB(meta)}
	if userID != "" {
		entry.UserID = &userID
	}
	return translate(a.db.WithContext(ctx).Create(&entry).Error, "audit log")
}

// Recent returns the newest entries, for one user or for everyone when
// userID is empty.
func (a *AuditLogs) Recent(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	q := a.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var logs []models.AuditLog
	err := q.Find(&logs).Error
	return logs, translate(err, "audit logs")
}
