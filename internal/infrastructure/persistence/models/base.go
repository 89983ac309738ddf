package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/techsolutions/pos/internal/domain/shared"
)

// BaseModel provides the identity and creation timestamp shared by the
// catalog, partner and identity tables.
type BaseModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
}

// DateLayout is the wire format of Date values
const DateLayout = "2006-01-02"

// Date is a calendar day stored in a DATE column. It is written as a
// YYYY-MM-DD string so that PostgreSQL and SQLite compare it the same way,
// regardless of the session time zone.
type Date struct {
	time.Time
}

// NewDate returns the calendar day of t in t's location
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// In returns the day as midnight in loc
func (d Date) In(loc *time.Location) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// String returns the YYYY-MM-DD form of the day
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) parse(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	t, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}
