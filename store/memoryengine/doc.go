// Package memoryengine provides an in-process implementation of store.Store.
//
// All data lives in maps guarded by one mutex. Save checks the book version and the
// previous status of every transitioned reservation under the write lock, so it has the
// same atomicity and conflict semantics as the SQL engine. It is the default engine of
// the test suite and of local runs without a database.
package memoryengine
