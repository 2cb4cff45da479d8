package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func GivenUniqueID(t testing.TB) uuid.UUID {
	t.Helper()

	return uuid.New()
}

func GivenNow() time.Time {
	return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}
