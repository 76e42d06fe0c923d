// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/taibuivan/sleepora/internal/audit"
	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/validate"
	"github.com/taibuivan/sleepora/pkg/pagination"
	"github.com/taibuivan/sleepora/pkg/pointer"
	"github.com/taibuivan/sleepora/pkg/slice"
	"github.com/taibuivan/sleepora/pkg/slug"
)

// Cached public paths dropped after an editorial change.
const (
	PathBlog    = "/api/v1/blog"
	PathGallery = "/api/v1/gallery"
)

// Invalidator drops cached responses under a path prefix.
type Invalidator interface {
	Invalidate(ctx context.Context, pathPrefix string) error
}

// Service manages blog posts and gallery items.
type Service struct {
	repository  Repository
	invalidator Invalidator
	recorder    audit.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a [Service]. invalidator may be nil.
func NewService(repository Repository, invalidator Invalidator, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repository:  repository,
		invalidator: invalidator,
		recorder:    recorder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// # Blog

// ListPublished returns one page of published posts, newest first, optionally
// restricted to posts carrying tag.
func (service *Service) ListPublished(ctx context.Context, tag string, params pagination.Params) ([]Post, pagination.Meta, error) {
	posts, err := service.repository.ListPosts(ctx, true)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
		posts = slice.Filter(posts, func(post Post) bool { return slices.Contains(post.Tags, tag) })
	}

	page, meta := pagination.Slice(posts, params)
	return page, meta, nil
}

// GetPublished returns the published post with slug. Drafts are NotFound.
func (service *Service) GetPublished(ctx context.Context, slug string) (*Post, error) {
	post, err := service.repository.FindPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, apperr.NotFound(entityPost)
	}
	return post, nil
}

// PostInput is the editor payload for a blog post.
type PostInput struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Slug       string   `json:"slug" validate:"omitempty,slug,max=200"`
	Excerpt    string   `json:"excerpt" validate:"max=500"`
	Body       string   `json:"body" validate:"required"`
	CoverImage string   `json:"cover_image" validate:"omitempty,url"`
	Author     string   `json:"author" validate:"max=100"`
	Tags       []string `json:"tags" validate:"max=20,dive,required,max=40"`
	Published  bool     `json:"published"`
}

// CreatePost validates input and stores a new post.
func (service *Service) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	post, err := service.postFromInput(ctx, "", input)
	if err != nil {
		return nil, err
	}
	if post.Published {
		post.PublishedAt = pointer.To(service.now())
	}

	if err := service.repository.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	service.afterChange(ctx, audit.ActionCreate, "post", post.ID, PathBlog)
	return post, nil
}

/*
UpdatePost replaces the editable fields of post id.

Description: The first publication stamps PublishedAt; republishing keeps the
original date and unpublishing clears it.
*/
func (service *Service) UpdatePost(ctx context.Context, id string, input PostInput) (*Post, error) {
	existing, err := service.repository.FindPost(ctx, id)
	if err != nil {
		return nil, err
	}

	post, err := service.postFromInput(ctx, id, input)
	if err != nil {
		return nil, err
	}
	post.ID, post.CreatedAt = existing.ID, existing.CreatedAt

	switch {
	case !post.Published:
		post.PublishedAt = nil
	case existing.PublishedAt != nil:
		post.PublishedAt = existing.PublishedAt
	default:
		post.PublishedAt = pointer.To(service.now())
	}

	if err := service.repository.SavePost(ctx, post); err != nil {
		return nil, err
	}

	service.afterChange(ctx, audit.ActionUpdate, "post", id, PathBlog)
	return post, nil
}

// DeletePost removes post id.
func (service *Service) DeletePost(ctx context.Context, id string) error {
	if err := service.repository.DeletePost(ctx, id); err != nil {
		return err
	}

	service.afterChange(ctx, audit.ActionDelete, "post", id, PathBlog)
	return nil
}

func (service *Service) postFromInput(ctx context.Context, id string, input PostInput) (*Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Slug == "" {
		input.Slug = slug.From(input.Title)
	}

	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" && !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	input.Tags = tags

	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if input.Slug == "" {
		return nil, validate.RequiredError("slug", "Could not derive a slug from the title")
	}

	clash, err := service.repository.FindPostBySlug(ctx, input.Slug)
	switch {
	case err == nil && clash.ID != id:
		return nil, apperr.Conflict("A post with slug '" + input.Slug + "' already exists")
	case err != nil && !apperr.IsNotFound(err):
		return nil, err
	}

	return &Post{
		Slug:       input.Slug,
		Title:      input.Title,
		Excerpt:    strings.TrimSpace(input.Excerpt),
		Body:       input.Body,
		CoverImage: input.CoverImage,
		Author:     strings.TrimSpace(input.Author),
		Tags:       input.Tags,
		Published:  input.Published,
	}, nil
}

// # Gallery

// ListGallery returns gallery items, newest first. An empty category lists all.
func (service *Service) ListGallery(ctx context.Context, category string) ([]GalleryItem, error) {
	return service.repository.ListGallery(ctx, strings.ToLower(strings.TrimSpace(category)))
}

// GalleryInput is the editor payload for a gallery item.
type GalleryInput struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Image      string   `json:"image" validate:"required,url"`
	Caption    string   `json:"caption" validate:"max=500"`
	Category   string   `json:"category" validate:"omitempty,slug,max=60"`
	ProductIDs []string `json:"product_ids" validate:"dive,required"`
}

// CreateGalleryItem validates input and stores a new gallery item.
func (service *Service) CreateGalleryItem(ctx context.Context, input GalleryInput) (*GalleryItem, error) {
	item, err := galleryFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := service.repository.CreateGalleryItem(ctx, item); err != nil {
		return nil, err
	}

	service.afterChange(ctx, audit.ActionCreate, "gallery_item", item.ID, PathGallery)
	return item, nil
}

// UpdateGalleryItem replaces the editable fields of gallery item id.
func (service *Service) UpdateGalleryItem(ctx context.Context, id string, input GalleryInput) (*GalleryItem, error) {
	existing, err := service.repository.FindGalleryItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := galleryFromInput(input)
	if err != nil {
		return nil, err
	}
	item.ID, item.CreatedAt = existing.ID, existing.CreatedAt

	if err := service.repository.SaveGalleryItem(ctx, item); err != nil {
		return nil, err
	}

	service.afterChange(ctx, audit.ActionUpdate, "gallery_item", id, PathGallery)
	return item, nil
}

// DeleteGalleryItem removes gallery item id.
func (service *Service) DeleteGalleryItem(ctx context.Context, id string) error {
	if err := service.repository.DeleteGalleryItem(ctx, id); err != nil {
		return err
	}

	service.afterChange(ctx, audit.ActionDelete, "gallery_item", id, PathGallery)
	return nil
}

func galleryFromInput(input GalleryInput) (*GalleryItem, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))

	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	products := input.ProductIDs
	if products == nil {
		products = []string{}
	}

	return &GalleryItem{
		Title:      input.Title,
		Image:      input.Image,
		Caption:    strings.TrimSpace(input.Caption),
		Category:   input.Category,
		ProductIDs: products,
	}, nil
}

func (service *Service) afterChange(ctx context.Context, action, entityType, id, path string) {
	if service.invalidator != nil {
		if err := service.invalidator.Invalidate(ctx, path); err != nil {
			service.logger.WarnContext(ctx, "cache_invalidation_failed",
				slog.String("prefix", path), slog.Any("error", err))
		}
	}

	service.recorder.Record(ctx, audit.Entry{Action: action, EntityType: entityType, EntityID: id})
	service.logger.InfoContext(ctx, entityType+"_"+action+"d", slog.String("id", id))
}
