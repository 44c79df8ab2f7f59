package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cms-redirect-go/internal/model"
)

func TestDeletionGuard_BlocksWhileTargeted(t *testing.T) {
	store := newMemStore()
	store.addPost(2, "b", "B", model.PostStatusPublished)
	redirect := store.addPostRedirect(1, 2, 301)
	guard := NewDeletionGuard(NewRedirectResolver(store))
	ctx := context.Background()

	result := guard.CanDeletePost(ctx, 2)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "1 redirect(s)")

	// 删除该重定向后放行
	require.NoError(t, store.Delete(ctx, redirect.ID))
	result = guard.CanDeletePost(ctx, 2)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestDeletionGuard_UnblocksAfterRepoint(t *testing.T) {
	store := newMemStore()
	store.addPost(2, "b", "B", model.PostStatusPublished)
	store.addPost(3, "c", "C", model.PostStatusPublished)
	redirect := store.addPostRedirect(1, 2, 301)
	guard := NewDeletionGuard(NewRedirectResolver(store))
	ctx := context.Background()

	assert.False(t, guard.CanDeletePost(ctx, 2).Valid)

	// 改指向别的文章后放行
	newTarget := uint(3)
	redirect.TargetPostID = &newTarget
	require.NoError(t, store.Update(ctx, redirect))
	assert.True(t, guard.CanDeletePost(ctx, 2).Valid)
}

func TestDeletionGuard_FailsOpenWithWarning(t *testing.T) {
	store := newMemStore()
	store.addPostRedirect(1, 2, 301)
	store.failFindByTarget = true
	guard := NewDeletionGuard(NewRedirectResolver(store))

	result := guard.CanDeletePost(context.Background(), 2)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "could not be checked")
}

func TestDeletionGuard_URLRedirectsDoNotBlock(t *testing.T) {
	store := newMemStore()
	store.addURLRedirect(1, "https://ext.example/a", 301)
	guard := NewDeletionGuard(NewRedirectResolver(store))

	// url 类型不构成入边
	assert.True(t, guard.CanDeletePost(context.Background(), 2).Valid)
}
