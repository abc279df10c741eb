package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey returns the deny-list key for a signed-out token ID.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// RevokedBeforeKey returns the key holding the unix time before which every
// token issued to userID is void.
func (r *CacheKeyStruct) RevokedBeforeKey(userID string) string {
	return fmt.Sprintf("auth:revoked-before:%s", userID)
}

// CatalogVersionKey returns the counter bumped whenever catalog data changes.
// Every catalog cache key embeds the current version, so bumping it orphans
// stale entries until their TTL expires.
func (r *CacheKeyStruct) CatalogVersionKey() string {
	return "catalog:version"
}

// CatalogCategoriesKey returns the cache key for the public category list.
func (r *CacheKeyStruct) CatalogCategoriesKey(version int64) string {
	return fmt.Sprintf("catalog:v%d:categories", version)
}

// CatalogCoursesKey returns the cache key for the public course list,
// optionally narrowed to one category slug.
func (r *CacheKeyStruct) CatalogCoursesKey(version int64, categorySlug string) string {
	if categorySlug == "" {
		categorySlug = "all"
	}
	return fmt.Sprintf("catalog:v%d:courses:%s", version, categorySlug)
}

// CatalogCourseKey returns the cache key for a single public course page.
func (r *CacheKeyStruct) CatalogCourseKey(version int64, slug string) string {
	return fmt.Sprintf("catalog:v%d:course:%s", version, slug)
}

// AdminFeedChannel returns the Redis PubSub channel for the admin live feed.
func (r *CacheKeyStruct) AdminFeedChannel() string {
	return "admin:feed"
}

var CacheKey = NewCacheKeyStruct()
