// Package helper provides fixtures and Given* arrangement helpers shared by the tests of all packages.
package helper
