package database

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options select a driver and how the schema is brought up to date.
type Options struct {
	Driver      string // postgres | sqlite
	PostgresDSN string
	SQLitePath  string
	Migrations  string // auto | sql
}

// Open connects and migrates. SQL migrations need a postgres:// URL; sqlite always auto-migrates.
func Open(opts Options) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch opts.Driver {
	case "postgres":
		db, err = ConnectPostgres(opts.PostgresDSN)
	case "sqlite":
		db, err = ConnectSQLite(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.Driver == "postgres" && opts.Migrations == "sql" {
		if !strings.HasPrefix(opts.PostgresDSN, "postgres://") && !strings.HasPrefix(opts.PostgresDSN, "postgresql://") {
			return nil, fmt.Errorf("MIGRATIONS=sql needs DATABASE_URL in postgres:// form")
		}
		err = MigrateUp(opts.PostgresDSN)
	} else {
		err = AutoMigrate(db)
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"driver": opts.Driver, "migrations": opts.Migrations}).Info("database ready")
	return db, nil
}
