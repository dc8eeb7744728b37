package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	accountKeyPrefix = "account:%d"
	articleKeyPrefix = "article:%d"
	tagListKey       = "tags:all"
)

const (
	AccountTTL = 5 * time.Minute
	ArticleTTL = 10 * time.Minute
	TagListTTL = 10 * time.Minute
)

func AccountKey(accountID uint) string {
	return fmt.Sprintf(accountKeyPrefix, accountID)
}

func ArticleKey(articleID uint) string {
	return fmt.Sprintf(articleKeyPrefix, articleID)
}

func TagListKey() string {
	return tagListKey
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateAccount(ctx context.Context, accountID uint) {
	Invalidate(ctx, AccountKey(accountID))
}

func InvalidateArticle(ctx context.Context, articleID uint) {
	Invalidate(ctx, ArticleKey(articleID))
}

func InvalidateTagList(ctx context.Context) {
	Invalidate(ctx, TagListKey())
}
