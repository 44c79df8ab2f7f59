package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/model"
)

// memStore 内存版 RedirectStore，供单元测试使用。
// fail* 开关用于模拟存储故障，验证各组件的 fail open / fail closed 策略。
type memStore struct {
	redirects map[string]*model.Redirect // by id
	posts     map[uint]*model.Post

	failFindBySource bool
	failFindByTarget bool
	failFetchPost    bool
}

func newMemStore() *memStore {
	return &memStore{
		redirects: make(map[string]*model.Redirect),
		posts:     make(map[uint]*model.Post),
	}
}

func (m *memStore) addPost(id uint, slug, title, status string) *model.Post {
	post := &model.Post{
		BaseModel: model.BaseModel{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Slug:      slug,
		Title:     title,
		Status:    status,
	}
	m.posts[id] = post
	return post
}

func (m *memStore) addPostRedirect(source, target uint, code int) *model.Redirect {
	redirect := &model.Redirect{
		ID:             uuid.NewString(),
		SourcePostID:   source,
		RedirectType:   model.RedirectTypePost,
		TargetPostID:   &target,
		HTTPStatusCode: code,
		CreatedBy:      1,
	}
	m.redirects[redirect.ID] = redirect
	return redirect
}

func (m *memStore) addURLRedirect(source uint, url string, code int) *model.Redirect {
	redirect := &model.Redirect{
		ID:             uuid.NewString(),
		SourcePostID:   source,
		RedirectType:   model.RedirectTypeURL,
		TargetURL:      &url,
		HTTPStatusCode: code,
		CreatedBy:      1,
	}
	m.redirects[redirect.ID] = redirect
	return redirect
}

func (m *memStore) FindBySource(ctx context.Context, postID uint) (*model.Redirect, error) {
	if m.failFindBySource {
		return nil, fmt.Errorf("store unavailable")
	}
	for _, redirect := range m.redirects {
		if redirect.SourcePostID == postID {
			copied := *redirect
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByTarget(ctx context.Context, postID uint) ([]model.Redirect, error) {
	if m.failFindByTarget {
		return nil, fmt.Errorf("store unavailable")
	}
	var result []model.Redirect
	for _, redirect := range m.redirects {
		if redirect.RedirectType == model.RedirectTypePost && redirect.TargetPostID != nil && *redirect.TargetPostID == postID {
			result = append(result, *redirect)
		}
	}
	return result, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*model.Redirect, error) {
	redirect, ok := m.redirects[id]
	if !ok {
		return nil, nil
	}
	copied := *redirect
	return &copied, nil
}

func (m *memStore) Create(ctx context.Context, redirect *model.Redirect) error {
	for _, existing := range m.redirects {
		if existing.SourcePostID == redirect.SourcePostID {
			return apperrors.ConflictError("a redirect already exists for this source post")
		}
	}
	if redirect.ID == "" {
		redirect.ID = uuid.NewString()
	}
	redirect.CreatedAt = time.Now()
	redirect.UpdatedAt = time.Now()
	copied := *redirect
	m.redirects[redirect.ID] = &copied
	return nil
}

func (m *memStore) Update(ctx context.Context, redirect *model.Redirect) error {
	if _, ok := m.redirects[redirect.ID]; !ok {
		return fmt.Errorf("redirect %s not found", redirect.ID)
	}
	redirect.UpdatedAt = time.Now()
	copied := *redirect
	m.redirects[redirect.ID] = &copied
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	delete(m.redirects, id)
	return nil
}

func (m *memStore) List(ctx context.Context, page, size int) ([]model.Redirect, int64, error) {
	all := make([]model.Redirect, 0, len(m.redirects))
	for _, redirect := range m.redirects {
		all = append(all, *redirect)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SourcePostID < all[j].SourcePostID })

	start := (page - 1) * size
	if start >= len(all) {
		return []model.Redirect{}, int64(len(all)), nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *memStore) FetchPost(ctx context.Context, postID uint) (*model.Post, error) {
	if m.failFetchPost {
		return nil, fmt.Errorf("store unavailable")
	}
	post, ok := m.posts[postID]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (m *memStore) FetchPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	for _, post := range m.posts {
		if post.Slug == slug {
			copied := *post
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeletePost(ctx context.Context, postID uint) error {
	delete(m.posts, postID)
	return nil
}
