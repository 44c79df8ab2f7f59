package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/dto"
	"cms-redirect-go/internal/model"
)

// initTestService 用内存 store 组装子系统（无 Redis，缓存直接穿透）
func initTestService(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore()
	Init(store, nil)
	return store
}

func TestCreateRedirect_Success(t *testing.T) {
	store := initTestService(t)
	store.addPost(1, "old", "Old", model.PostStatusPublished)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	ctx := context.Background()

	redirect, result, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, redirect.ID)
	assert.Equal(t, uint(42), redirect.CreatedBy)
	// 缺省状态码 301
	assert.Equal(t, http.StatusMovedPermanently, redirect.HTTPStatusCode)
}

func TestCreateRedirect_ValidationFailureDoesNotWrite(t *testing.T) {
	store := initTestService(t)
	store.addPost(1, "old", "Old", model.PostStatusPublished)
	ctx := context.Background()

	_, result, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(1), // 自我重定向
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.Empty(t, store.redirects)
}

func TestCreateRedirect_SecondCreateForSameSourceRejected(t *testing.T) {
	store := initTestService(t)
	store.addPost(1, "old", "Old", model.PostStatusPublished)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	store.addPost(3, "other", "Other", model.PostStatusPublished)
	ctx := context.Background()

	_, _, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)

	_, result, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(3),
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "already exists")
}

func TestUpdateRedirect_ExcludesSelfFromUniqueness(t *testing.T) {
	store := initTestService(t)
	store.addPost(1, "old", "Old", model.PostStatusPublished)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	store.addPost(3, "other", "Other", model.PostStatusPublished)
	ctx := context.Background()

	created, _, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)

	updated, result, err := UpdateRedirect(ctx, created.ID, dto.UpdateRedirectRequest{
		TargetPostID:   uintPtr(3),
		HTTPStatusCode: intPtr(302),
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, result.Valid)
	require.NotNil(t, updated.TargetPostID)
	assert.Equal(t, uint(3), *updated.TargetPostID)
	assert.Equal(t, 302, updated.HTTPStatusCode)
	// sourcePostId 与 id 不变
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, uint(1), updated.SourcePostID)
}

func TestUpdateRedirect_TypeSwitchClearsOtherTarget(t *testing.T) {
	store := initTestService(t)
	store.addPost(1, "old", "Old", model.PostStatusPublished)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	ctx := context.Background()

	created, _, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)

	updated, result, err := UpdateRedirect(ctx, created.ID, dto.UpdateRedirectRequest{
		RedirectType: strPtr(model.RedirectTypeURL),
		TargetURL:    strPtr("https://ext.example/a"),
	}, 42)
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Nil(t, updated.TargetPostID)
	require.NotNil(t, updated.TargetURL)
	assert.Equal(t, "https://ext.example/a", *updated.TargetURL)
}

func TestUpdateRedirect_NotFound(t *testing.T) {
	initTestService(t)

	_, _, err := UpdateRedirect(context.Background(), "missing-id", dto.UpdateRedirectRequest{}, 42)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestUpdateRedirect_WrongOwner(t *testing.T) {
	store := initTestService(t)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	ctx := context.Background()

	created, _, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)

	_, _, err = UpdateRedirect(ctx, created.ID, dto.UpdateRedirectRequest{Notes: strPtr("x")}, 99)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestDeleteRedirect(t *testing.T) {
	store := initTestService(t)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	ctx := context.Background()

	created, _, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)

	require.NoError(t, DeleteRedirect(ctx, created.ID, 42))
	assert.Empty(t, store.redirects)

	err = DeleteRedirect(ctx, created.ID, 42)
	require.Error(t, err)
}

func TestCreateRedirect_InvalidStatusCodeRejected(t *testing.T) {
	store := initTestService(t)
	store.addPost(2, "new", "New", model.PostStatusPublished)

	// 303 不在白名单内，服务层直接拒绝，不进校验也不写库
	_, _, err := CreateRedirect(context.Background(), dto.CreateRedirectRequest{
		SourcePostID:   1,
		RedirectType:   model.RedirectTypePost,
		TargetPostID:   uintPtr(2),
		HTTPStatusCode: 303,
	}, 42)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "error.status_code_invalid", appErr.Message)
	assert.Empty(t, store.redirects)
}

func TestUpdateRedirect_InvalidStatusCodeRejected(t *testing.T) {
	store := initTestService(t)
	store.addPost(2, "new", "New", model.PostStatusPublished)
	ctx := context.Background()

	created, _, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)

	_, _, err = UpdateRedirect(ctx, created.ID, dto.UpdateRedirectRequest{
		HTTPStatusCode: intPtr(200),
	}, 42)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "error.status_code_invalid", appErr.Message)
	// 原记录不变
	assert.Equal(t, http.StatusMovedPermanently, store.redirects[created.ID].HTTPStatusCode)
}

func TestCreateRedirect_TombstoneSourceAllowed(t *testing.T) {
	store := initTestService(t)
	// 源文章 1 不存在（已删除），目标存在：墓碑重定向允许创建
	store.addPost(2, "new", "New", model.PostStatusPublished)
	ctx := context.Background()

	redirect, result, err := CreateRedirect(ctx, dto.CreateRedirectRequest{
		SourcePostID: 1,
		RedirectType: model.RedirectTypePost,
		TargetPostID: uintPtr(2),
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.True(t, result.Valid)
}

func intPtr(v int) *int { return &v }
