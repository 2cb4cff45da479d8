// Package displaynames resolves book titles and user nicknames for the reporting views.
//
// Resolved names are kept in an expiring LRU cache, so a report over many reservations
// of the same books and users hits the catalog once per entity.
// Unknown ids are reported as not found and are never cached.
package displaynames
