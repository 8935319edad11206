package cache

import "strings"

const (
	GlobalKeyPrefix = "curricula"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, strings.ToLower(identifier)}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// CurriculumSummaryKey is where the latest build summary of discipline is cached.
func CurriculumSummaryKey(discipline string) string {
	return GenerateCacheKey("curriculum", "summary", discipline)
}

// CurriculumConceptsKey caches the concept list of one stored build.
func CurriculumConceptsKey(discipline, buildID string) string {
	return GenerateCacheKey("curriculum", "concepts", discipline, buildID)
}
