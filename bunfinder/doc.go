// Package bunfinder is the relational side of collectioncache on uptrace/bun.
//
// Finder reloads records from cached ids. Unless an explicit order is
// requested the rows come back in the order of the ids, using ORDER BY
// FIELD() on MySQL and a CASE expression on SQLite and PostgreSQL.
//
// Scope wraps a query as a collectioncache.LazySource, so a FetchCount over
// a scope runs SELECT count(*) instead of loading rows:
//
//	employees := bunfinder.NewScope(db, employeeType,
//		func(q *bun.SelectQuery) *bun.SelectQuery {
//			return q.Where("company_id = ?", company.ID).Order("name")
//		})
package bunfinder
