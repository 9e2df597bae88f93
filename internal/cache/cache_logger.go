package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// InvalidateSubjectCache drops every cached subject listing
func InvalidateSubjectCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Subject, "list:*")
}

// SubjectListKey is the cache key for a subject listing. An empty grade
// filter maps to "all".
func SubjectListKey(gradeLevel string) string {
	if gradeLevel == "" {
		return "list:all"
	}
	return "list:grade:" + gradeLevel
}
