// Package repositorycache keeps collection caches coherent with writes made
// through go-repository-bun repositories.
//
// InvalidatingRepository wraps a repository.Repository[T]. Reads, raw
// queries and Handlers pass straight through. Every successful write
// (Create, Update, Upsert, Delete and their Many, Where, Force and Tx
// variants) clears the class and the instance collections of the owner
// types the decorator was built with:
//
//	employees := repositorycache.New(base, container.Proxy(), []string{demo.CompanyType})
//	_, err := employees.Create(ctx, hire) // Company collections are now gone
//
// Instance clearing covers every instance of an owner type, so there is no
// need to work out which owner a record belongs to.
//
// A single write can clear more types by attaching them to the context:
//
//	ctx = repositorycache.WithInvalidationTypes(ctx, "Department")
//
// A failed write clears nothing. When the write succeeds but clearing
// fails, the error is logged and the write result is returned unchanged.
//
// Writes inside a transaction clear caches when the Tx method returns, not
// when the transaction commits. A reader racing the commit can cache the
// pre-commit state; a later write or an explicit Invalidate drops it.
package repositorycache
