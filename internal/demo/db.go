package demo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmgilman/go/errors"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite"
)

// Open connects to driver ("sqlite", "mysql" or "postgres") and returns a
// bun handle with the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	var d schema.Dialect
	switch driver {
	case "sqlite":
		d = sqlitedialect.New()
	case "mysql":
		d = mysqldialect.New()
	case "postgres":
		d = pgdialect.New()
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unsupported database driver %q", driver)
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to open database")
	}
	if driver == "sqlite" {
		// in-memory databases live on a single connection
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		sqldb.SetConnMaxLifetime(0)
	}

	return bun.NewDB(sqldb, d), nil
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory() (*bun.DB, error) {
	return Open("sqlite", "file::memory:")
}

// CreateSchema creates the demo tables if they do not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	models := []any{(*Company)(nil), (*Employee)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CodeDatabase, "failed to create schema")
		}
	}
	return nil
}

// Seed inserts companies with perCompany employees each. Employee ids are
// assigned in insertion order.
func Seed(ctx context.Context, db bun.IDB, companies, perCompany int) error {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for c := 1; c <= companies; c++ {
		company := &Company{Name: fmt.Sprintf("Company %d", c)}
		if _, err := db.NewInsert().Model(company).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CodeDatabase, "failed to seed companies")
		}

		if perCompany == 0 {
			continue
		}
		staff := make([]*Employee, perCompany)
		for e := range staff {
			staff[e] = &Employee{
				CompanyID: company.ID,
				Name:      fmt.Sprintf("Employee %d-%d", c, e+1),
				Title:     titles[e%len(titles)],
				Salary:    int64(50000 + 1000*e),
				HiredAt:   base.AddDate(0, 0, c*100+e),
			}
		}
		if _, err := db.NewInsert().Model(&staff).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CodeDatabase, "failed to seed employees")
		}
	}
	return nil
}

var titles = []string{"engineer", "designer", "manager", "analyst"}
