package models

import (
	"time"

	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

var ticketStatusNames = map[TicketStatus]string{
	TicketOpen:       "Open",
	TicketInProgress: "In Progress",
	TicketResolved:   "Resolved",
	TicketClosed:     "Closed",
}

func (s TicketStatus) Valid() bool {
	_, ok := ticketStatusNames[s]
	return ok
}

func (s TicketStatus) Display() string { return ticketStatusNames[s] }

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

var priorityNames = map[TicketPriority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
	PriorityUrgent: "Urgent",
}

func (p TicketPriority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

func (p TicketPriority) Display() string { return priorityNames[p] }

type SupportTicket struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index:idx_ticket_user_created,priority:1" json:"user"`
	Subject     string         `gorm:"size:255;not null" json:"subject"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Screenshot  *string        `gorm:"type:text" json:"screenshot,omitempty"`
	Status      TicketStatus   `gorm:"size:20;not null;default:open;index" json:"status"`
	Priority    TicketPriority `gorm:"size:10;not null;default:medium;index" json:"priority"`
	Email       string         `gorm:"not null" json:"email"`
	PhoneNumber *string        `gorm:"size:20" json:"phone_number,omitempty"`
	AssignedTo  *string        `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	AdminNotes  *string        `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt   time.Time      `gorm:"index:idx_ticket_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ResolvedAt  *time.Time     `json:"resolved_at"`
}

// StampResolution records the first moment the ticket is seen as resolved.
// Later saves never move or clear ResolvedAt, whatever the status becomes.
func (t *SupportTicket) StampResolution(now time.Time) {
	if t.Status == TicketResolved && t.ResolvedAt == nil {
		ts := now
		t.ResolvedAt = &ts
	}
}

func (t *SupportTicket) BeforeSave(tx *gorm.DB) error {
	t.StampResolution(tx.NowFunc())
	return nil
}

type FAQCategory string

const (
	FAQCharging FAQCategory = "charging"
	FAQPayments FAQCategory = "payments"
	FAQStations FAQCategory = "stations"
	FAQAccount  FAQCategory = "account"
	FAQGeneral  FAQCategory = "general"
)

var faqCategoryNames = map[FAQCategory]string{
	FAQCharging: "Charging",
	FAQPayments: "Payments & Wallet",
	FAQStations: "Station Locations",
	FAQAccount:  "Account & Settings",
	FAQGeneral:  "General",
}

func (c FAQCategory) Valid() bool {
	_, ok := faqCategoryNames[c]
	return ok
}

func (c FAQCategory) Display() string { return faqCategoryNames[c] }

type FAQ struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Category  FAQCategory `gorm:"size:20;not null;index:idx_faq_category_active,priority:1" json:"category"`
	Question  string      `gorm:"size:500;not null" json:"question"`
	Answer    string      `gorm:"type:text;not null" json:"answer"`
	Order     uint        `gorm:"column:display_order;not null;default:0" json:"order"`
	IsActive  bool        `gorm:"not null;default:true;index:idx_faq_category_active,priority:2" json:"is_active"`
	ViewCount uint        `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
