// Package storetest holds the behavior every store.Store implementation must show.
// Engine packages run it from their own tests with a factory for a fresh store.
package storetest
