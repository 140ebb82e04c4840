package demo

import (
	"context"
	"strconv"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-collection-cache/bunfinder"
	"github.com/goliatone/go-collection-cache/collectioncache"
)

// RegisterTypes registers the demo record types.
func RegisterTypes(types *collectioncache.TypeRegistry) error {
	if _, err := types.Register(CompanyType, (*Company)(nil)); err != nil {
		return err
	}
	if _, err := types.Register(EmployeeType, (*Employee)(nil), collectioncache.WithPerPage(10)); err != nil {
		return err
	}
	return nil
}

// RegisterBlueprints declares the demo collections:
//
//   - Company#<id> "employees": a lazy scope, newest hire first; counting it never loads rows
//   - Company#<id> "payroll": the salary total, cached as a scalar
//   - Company "recent_hires": the latest hires across companies, newest first
//   - Company "all": every company
func RegisterBlueprints(proxy *collectioncache.Proxy, db bun.IDB, expiresIn time.Duration) error {
	employeeType, err := proxy.Types().Resolve(EmployeeType)
	if err != nil {
		return err
	}
	companyType, err := proxy.Types().Resolve(CompanyType)
	if err != nil {
		return err
	}

	defaults := collectioncache.Options{}
	if expiresIn > 0 {
		defaults.ExpiresIn = collectioncache.Duration(expiresIn)
	}
	registry := proxy.Registry()

	registry.Register(CompanyType, collectioncache.InstanceScope, "employees",
		func(ctx context.Context, subject collectioncache.Subject) (any, error) {
			id, err := subjectID(subject)
			if err != nil {
				return nil, err
			}
			return bunfinder.NewScope(db, employeeType, func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Order("hired_at DESC", "id DESC")
			}).Where("?TableAlias.company_id = ?", id), nil
		}, defaults)

	registry.Register(CompanyType, collectioncache.InstanceScope, "payroll",
		func(ctx context.Context, subject collectioncache.Subject) (any, error) {
			id, err := subjectID(subject)
			if err != nil {
				return nil, err
			}
			var total int64
			err = db.NewSelect().
				Model((*Employee)(nil)).
				ColumnExpr("COALESCE(SUM(?TableAlias.salary), 0)").
				Where("company_id = ?", id).
				Scan(ctx, &total)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeDatabase, "failed to compute payroll")
			}
			return total, nil
		}, defaults)

	registry.Register(CompanyType, collectioncache.ClassScope, "recent_hires",
		func(ctx context.Context, subject collectioncache.Subject) (any, error) {
			var hires []*Employee
			err := db.NewSelect().
				Model(&hires).
				Order("hired_at DESC", "id DESC").
				Limit(25).
				Scan(ctx)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeDatabase, "failed to load recent hires")
			}
			return hires, nil
		}, defaults)

	registry.Register(CompanyType, collectioncache.ClassScope, "all",
		func(ctx context.Context, subject collectioncache.Subject) (any, error) {
			return bunfinder.NewScope(db, companyType, func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Order("name")
			}), nil
		}, defaults)

	return nil
}

func subjectID(subject collectioncache.Subject) (int64, error) {
	id, err := strconv.ParseInt(subject.SubjectID(), 10, 64)
	if err != nil {
		return 0, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidInput, "subject id is not numeric"),
			"subject_id", subject.SubjectID(),
		)
	}
	return id, nil
}
