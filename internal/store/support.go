package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"evmeri/internal/models"
	"evmeri/internal/support"
)

type Tickets struct {
	db *gorm.DB
}

func NewTickets(db *gorm.DB) *Tickets { return &Tickets{db: db} }

func (t *Tickets) Create(ctx context.Context, tk *models.SupportTicket) error {
	return translate(t.db.WithContext(ctx).Create(tk).Error, "ticket")
}

func (t *Tickets) Get(ctx context.Context, id int64) (*models.SupportTicket, error) {
	var tk models.SupportTicket
	if err := t.db.WithContext(ctx).First(&tk, id).Error; err != nil {
		return nil, translate(err, "ticket")
	}
	return &tk, nil
}

func (t *Tickets) ListForUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	var rows []models.SupportTicket
	err := t.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error
	return rows, translate(err, "tickets")
}

func (t *Tickets) List(ctx context.Context, f support.TicketFilter) ([]models.SupportTicket, error) {
	q := t.db.WithContext(ctx).Model(&models.SupportTicket{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	var rows []models.SupportTicket
	err := q.Order("created_at desc").Limit(500).Find(&rows).Error
	return rows, translate(err, "tickets")
}

// Save writes every column; the model's BeforeSave hook stamps resolved_at.
func (t *Tickets) Save(ctx context.Context, tk *models.SupportTicket) error {
	return translate(t.db.WithContext(ctx).Save(tk).Error, "ticket")
}

type FAQs struct {
	db *gorm.DB
}

func NewFAQs(db *gorm.DB) *FAQs { return &FAQs{db: db} }

func (f *FAQs) ListActive(ctx context.Context, category models.FAQCategory, search string) ([]models.FAQ, error) {
	q := f.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		q = q.Where("question ILIKE ? OR answer ILIKE ?", like, like)
	}
	var rows []models.FAQ
	err := q.Order("category, display_order, question").Find(&rows).Error
	return rows, translate(err, "faqs")
}

func (f *FAQs) Get(ctx context.Context, id int64) (*models.FAQ, error) {
	var row models.FAQ
	if err := f.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err, "FAQ")
	}
	return &row, nil
}

// IncrementViews bumps the counter in SQL so concurrent reads are all
// counted.
func (f *FAQs) IncrementViews(ctx context.Context, id int64) error {
	err := f.db.WithContext(ctx).Model(&models.FAQ{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	return translate(err, "FAQ")
}

func (f *FAQs) Create(ctx context.Context, row *models.FAQ) error {
	return translate(f.db.WithContext(ctx).Create(row).Error, "FAQ")
}

func (f *FAQs) Save(ctx context.Context, row *models.FAQ) error {
	return translate(f.db.WithContext(ctx).Save(row).Error, "FAQ")
}

// Ensure inserts row unless a FAQ with the same category and question exists.
// FirstOrCreate reports RowsAffected 0 when it finds the row and 1 when it
// inserts, so the bool is true only for new rows. Existing rows are left as
// they are; Attrs only applies to the insert.
func (f *FAQs) Ensure(ctx context.Context, row *models.FAQ) (bool, error) {
	res := f.db.WithContext(ctx).
		Where(models.FAQ{Category: row.Category, Question: row.Question}).
		Attrs(models.FAQ{Answer: row.Answer, Order: row.Order, IsActive: true}).
		FirstOrCreate(row)
	if res.Error != nil {
		return false, translate(res.Error, "FAQ")
	}
	return res.RowsAffected > 0, nil
}
