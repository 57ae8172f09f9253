package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CatalogVersionKey returns the key of the counter bumped on every catalog write.
// Cached catalog pages embed the version so a bump invalidates all of them at once.
func (r *CacheKeyStruct) CatalogVersionKey() string {
	return "catalog:version"
}

// CatalogOfferingsKey returns the cache key for the offering list of a term.
func (r *CacheKeyStruct) CatalogOfferingsKey(version int64, semester string, year int) string {
	return fmt.Sprintf("catalog:v%d:offerings:%s:%d", version, semester, year)
}

// CatalogCoursesKey returns the cache key for the full course list.
func (r *CacheKeyStruct) CatalogCoursesKey(version int64) string {
	return fmt.Sprintf("catalog:v%d:courses", version)
}

// StudentEnrollmentChannel returns the Redis PubSub channel carrying a student's enrollment events.
func (r *CacheKeyStruct) StudentEnrollmentChannel(studentID string) string {
	return fmt.Sprintf("student:%s:enrollments", studentID)
}

var CacheKey = NewCacheKeyStruct()
