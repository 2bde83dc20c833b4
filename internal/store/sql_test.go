package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evmeri/internal/models"
)

// sqlRecorder keeps every statement gorm builds.
type sqlRecorder struct {
	stmts []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.stmts = append(r.stmts, sql)
}

// dryDB builds statements without a server; the pool is opened lazily and
// never used.
func dryDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=evmeri dbname=evmeri sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db, rec
}

func TestUpdateMutableWritesZeroValues(t *testing.T) {
	db, rec := dryDB(t)
	conn := &models.ChargingConnector{
		ID:            "4f8f5a1e-2b1c-4d8e-9c55-0a1b2c3d4e5f",
		StationID:     "6f1c2b1e-3d4a-4c5b-9e8f-0a1b2c3d4e5f",
		ConnectorType: models.ConnectorType("type2"),
		PowerKW:       22,
		PricePerKWh:   15.5,
		QRCodeToken:   "keep",
	}
	if err := updateMutable(db, conn).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(rec.stmts) != 1 {
		t.Fatalf("statements = %v", rec.stmts)
	}
	sql := rec.stmts[0]
	for _, want := range []string{`"quantity"=0`, `"available_quantity"=0`, `"is_available"=false`, `WHERE "id" = '4f8f5a1e`} {
		if !strings.Contains(sql, want) {
			t.Errorf("missing %s in %s", want, sql)
		}
	}
	for _, col := range []string{"qr_code_token", "qr_code_image", "qr_payment_url", "station_id"} {
		if strings.Contains(sql, `"`+col+`"=`) {
			t.Errorf("%s written by %s", col, sql)
		}
	}
}

func TestEnsureLooksUpBeforeInsert(t *testing.T) {
	db, rec := dryDB(t)
	row := &models.FAQ{Category: models.FAQCharging, Question: "How do I start?", Answer: "Scan the QR code.", Order: 3}
	if _, err := NewFAQs(db).Ensure(context.Background(), row); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(rec.stmts) != 2 {
		t.Fatalf("statements = %v", rec.stmts)
	}
	sel, ins := rec.stmts[0], rec.stmts[1]
	if !strings.HasPrefix(sel, "SELECT") || !strings.Contains(sel, `"category" = 'charging'`) || !strings.Contains(sel, `"question" = 'How do I start?'`) {
		t.Errorf("lookup = %s", sel)
	}
	if !strings.HasPrefix(ins, `INSERT INTO "faqs"`) || !strings.Contains(ins, "'Scan the QR code.'") {
		t.Errorf("insert = %s", ins)
	}
}
