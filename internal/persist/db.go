package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type StateRecord struct {
	Key       string    `gorm:"primaryKey;type:varchar(128)"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (StateRecord) TableName() string { return "console_state" }

// OpenDB opens the state database for driver "mysql" or "sqlite".
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = gormsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("persist: unsupported driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
}

type DBBackend struct {
	db *gorm.DB
}

func NewDBBackend(db *gorm.DB) (*DBBackend, error) {
	if err := db.AutoMigrate(&StateRecord{}); err != nil {
		return nil, err
	}
	return &DBBackend{db: db}, nil
}

func (d *DBBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec StateRecord
	err := d.db.WithContext(ctx).Where(&StateRecord{Key: key}).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (d *DBBackend) Put(ctx context.Context, key string, value []byte) error {
	rec := StateRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (d *DBBackend) Del(ctx context.Context, key string) error {
	return d.db.WithContext(ctx).Delete(&StateRecord{Key: key}).Error
}
