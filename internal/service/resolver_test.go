package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cms-redirect-go/internal/model"
)

func TestResolver_NoRedirect(t *testing.T) {
	store := newMemStore()
	store.addPost(1, "hello", "Hello", model.PostStatusPublished)
	resolver := NewRedirectResolver(store)

	decision := resolver.Resolve(context.Background(), 1)
	assert.Nil(t, decision)
}

func TestResolver_URLRedirect(t *testing.T) {
	store := newMemStore()
	store.addURLRedirect(1, "https://ext.example/a", 302)
	resolver := NewRedirectResolver(store)

	decision := resolver.Resolve(context.Background(), 1)
	require.NotNil(t, decision)
	assert.Equal(t, model.RedirectTypeURL, decision.Type)
	assert.Equal(t, 302, decision.HTTPStatus)
	assert.Equal(t, "https://ext.example/a", decision.Target.URL)
	assert.Nil(t, decision.Target.PostID)
}

func TestResolver_PostRedirect_TargetExists(t *testing.T) {
	store := newMemStore()
	store.addPost(2, "new-home", "New Home", model.PostStatusPublished)
	store.addPostRedirect(1, 2, 301)
	resolver := NewRedirectResolver(store)

	decision := resolver.Resolve(context.Background(), 1)
	require.NotNil(t, decision)
	assert.Equal(t, model.RedirectTypePost, decision.Type)
	assert.Equal(t, 301, decision.HTTPStatus)
	require.NotNil(t, decision.Target.PostID)
	assert.Equal(t, uint(2), *decision.Target.PostID)
	assert.Equal(t, "new-home", decision.Target.Slug)
	assert.Equal(t, "New Home", decision.Target.Title)
	assert.False(t, decision.Target.HasFurtherRedirect)
}

func TestResolver_PostRedirect_TargetDeleted_Returns410(t *testing.T) {
	store := newMemStore()
	// 目标文章不存在：broken redirect，配置的 301 被 410 覆盖
	store.addPostRedirect(1, 2, 301)
	resolver := NewRedirectResolver(store)

	decision := resolver.Resolve(context.Background(), 1)
	require.NotNil(t, decision)
	assert.Equal(t, model.RedirectTypePost, decision.Type)
	assert.Equal(t, 410, decision.HTTPStatus)
	require.NotNil(t, decision.Target.PostID)
	assert.Equal(t, uint(2), *decision.Target.PostID)
	assert.Equal(t, "target post deleted", decision.Target.Error)
}

func TestResolver_OneHopPeek(t *testing.T) {
	store := newMemStore()
	store.addPost(2, "mid", "Mid", model.PostStatusPublished)
	store.addPost(3, "end", "End", model.PostStatusPublished)
	store.addPostRedirect(1, 2, 301)
	store.addPostRedirect(2, 3, 301)
	resolver := NewRedirectResolver(store)

	decision := resolver.Resolve(context.Background(), 1)
	require.NotNil(t, decision)
	// 决定不变：还是指向 2，只是标记目标还有下一跳
	require.NotNil(t, decision.Target.PostID)
	assert.Equal(t, uint(2), *decision.Target.PostID)
	assert.True(t, decision.Target.HasFurtherRedirect)
}

func TestResolver_Idempotent(t *testing.T) {
	store := newMemStore()
	store.addPost(2, "new-home", "New Home", model.PostStatusPublished)
	store.addPostRedirect(1, 2, 308)
	resolver := NewRedirectResolver(store)

	first := resolver.Resolve(context.Background(), 1)
	second := resolver.Resolve(context.Background(), 1)
	assert.Equal(t, first, second)
}

func TestResolver_FailsOpenOnStoreError(t *testing.T) {
	store := newMemStore()
	store.addURLRedirect(1, "https://ext.example/a", 301)
	store.failFindBySource = true
	resolver := NewRedirectResolver(store)

	assert.Nil(t, resolver.Resolve(context.Background(), 1))
	assert.False(t, resolver.HasRedirect(context.Background(), 1))
}

func TestResolver_HasRedirect(t *testing.T) {
	store := newMemStore()
	store.addURLRedirect(1, "https://ext.example/a", 301)
	resolver := NewRedirectResolver(store)

	assert.True(t, resolver.HasRedirect(context.Background(), 1))
	assert.False(t, resolver.HasRedirect(context.Background(), 2))
}

func TestResolver_InboundRedirectSources(t *testing.T) {
	store := newMemStore()
	store.addPostRedirect(1, 5, 301)
	store.addPostRedirect(2, 5, 301)
	store.addURLRedirect(3, "https://ext.example", 301)
	resolver := NewRedirectResolver(store)

	sources := resolver.InboundRedirectSources(context.Background(), 5)
	assert.ElementsMatch(t, []uint{1, 2}, sources)

	// 查询失败返回空序列
	store.failFindByTarget = true
	assert.Empty(t, resolver.InboundRedirectSources(context.Background(), 5))
}
