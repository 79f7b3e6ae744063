package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day stored in a DATE column and carried as "YYYY-MM-DD".
// It never passes through a time.Time on write, so the session time zone cannot shift it.
type Date string

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}

	return string(d), nil
}

func (d *Date) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(value.Format(dateLayout))
	case []byte:
		*d = Date(truncateDate(string(value)))
	case string:
		*d = Date(truncateDate(value))
	default:
		return fmt.Errorf("cannot scan %T into model.Date", src)
	}

	return nil
}

func (d Date) String() string {
	return string(d)
}

func truncateDate(value string) string {
	if len(value) > len(dateLayout) {
		return value[:len(dateLayout)]
	}

	return value
}
