// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"
	"slices"
	"time"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/docstore"
)

const (
	entityPost        = "Post"
	entityGalleryItem = "GalleryItem"
)

type postData struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

type galleryData struct {
	Title      string   `json:"title"`
	Image      string   `json:"image"`
	Caption    string   `json:"caption,omitempty"`
	Category   string   `json:"category,omitempty"`
	ProductIDs []string `json:"products"`
}

// DocumentRepository implements [Repository] over the CMS.
type DocumentRepository struct {
	store docstore.Store
}

// NewDocumentRepository constructs a [DocumentRepository].
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// # Posts

// ListPosts implements [Repository].
func (repository *DocumentRepository) ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error) {
	query := docstore.Query{Type: docstore.TypeBlogPost}
	if publishedOnly {
		query.Match = map[string]any{"published": true}
	}

	documents, err := repository.store.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(documents))
	for _, document := range slices.Backward(documents) {
		post, err := decodePost(document)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

// FindPost implements [Repository].
func (repository *DocumentRepository) FindPost(ctx context.Context, id string) (*Post, error) {
	document, err := repository.store.Get(ctx, id)
	if err != nil {
		return nil, rename(err, entityPost)
	}
	if document.Type != docstore.TypeBlogPost {
		return nil, apperr.NotFound(entityPost)
	}
	return decodePost(*document)
}

// FindPostBySlug implements [Repository].
func (repository *DocumentRepository) FindPostBySlug(ctx context.Context, slug string) (*Post, error) {
	document, err := repository.store.FindOne(ctx, docstore.Query{
		Type:  docstore.TypeBlogPost,
		Match: map[string]any{"slug": slug},
	})
	if err != nil {
		return nil, rename(err, entityPost)
	}
	return decodePost(*document)
}

// CreatePost implements [Repository].
func (repository *DocumentRepository) CreatePost(ctx context.Context, post *Post) error {
	data, err := docstore.Encode(toPostData(post))
	if err != nil {
		return err
	}

	document := &docstore.Document{ID: post.ID, Type: docstore.TypeBlogPost, Data: data}
	if err := repository.store.Create(ctx, document); err != nil {
		return err
	}

	post.ID = document.ID
	post.CreatedAt, post.UpdatedAt = document.CreatedAt, document.UpdatedAt
	return nil
}

// SavePost implements [Repository].
func (repository *DocumentRepository) SavePost(ctx context.Context, post *Post) error {
	data := toPostData(post)
	document, err := repository.store.Patch(ctx, post.ID, map[string]any{
		"slug":        data.Slug,
		"title":       data.Title,
		"excerpt":     data.Excerpt,
		"body":        data.Body,
		"coverImage":  data.CoverImage,
		"author":      data.Author,
		"tags":        data.Tags,
		"published":   data.Published,
		"publishedAt": data.PublishedAt,
	})
	if err != nil {
		return rename(err, entityPost)
	}

	post.UpdatedAt = document.UpdatedAt
	return nil
}

// DeletePost implements [Repository].
func (repository *DocumentRepository) DeletePost(ctx context.Context, id string) error {
	if _, err := repository.FindPost(ctx, id); err != nil {
		return err
	}
	return rename(repository.store.Delete(ctx, id), entityPost)
}

func decodePost(document docstore.Document) (*Post, error) {
	data, err := docstore.Decode[postData](document)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}

	return &Post{
		ID:          document.ID,
		Slug:        data.Slug,
		Title:       data.Title,
		Excerpt:     data.Excerpt,
		Body:        data.Body,
		CoverImage:  data.CoverImage,
		Author:      data.Author,
		Tags:        tags,
		Published:   data.Published,
		PublishedAt: data.PublishedAt,
		CreatedAt:   document.CreatedAt,
		UpdatedAt:   document.UpdatedAt,
	}, nil
}

func toPostData(post *Post) postData {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	return postData{
		Slug:        post.Slug,
		Title:       post.Title,
		Excerpt:     post.Excerpt,
		Body:        post.Body,
		CoverImage:  post.CoverImage,
		Author:      post.Author,
		Tags:        tags,
		Published:   post.Published,
		PublishedAt: post.PublishedAt,
	}
}

// # Gallery

// ListGallery implements [Repository]. An empty category lists everything.
func (repository *DocumentRepository) ListGallery(ctx context.Context, category string) ([]GalleryItem, error) {
	query := docstore.Query{Type: docstore.TypeGalleryItem}
	if category != "" {
		query.Match = map[string]any{"category": category}
	}

	documents, err := repository.store.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]GalleryItem, 0, len(documents))
	for _, document := range slices.Backward(documents) {
		item, err := decodeGalleryItem(document)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// FindGalleryItem implements [Repository].
func (repository *DocumentRepository) FindGalleryItem(ctx context.Context, id string) (*GalleryItem, error) {
	document, err := repository.store.Get(ctx, id)
	if err != nil {
		return nil, rename(err, entityGalleryItem)
	}
	if document.Type != docstore.TypeGalleryItem {
		return nil, apperr.NotFound(entityGalleryItem)
	}
	return decodeGalleryItem(*document)
}

// CreateGalleryItem implements [Repository].
func (repository *DocumentRepository) CreateGalleryItem(ctx context.Context, item *GalleryItem) error {
	data, err := docstore.Encode(toGalleryData(item))
	if err != nil {
		return err
	}

	document := &docstore.Document{ID: item.ID, Type: docstore.TypeGalleryItem, Data: data}
	if err := repository.store.Create(ctx, document); err != nil {
		return err
	}

	item.ID = document.ID
	item.CreatedAt, item.UpdatedAt = document.CreatedAt, document.UpdatedAt
	return nil
}

// SaveGalleryItem implements [Repository].
func (repository *DocumentRepository) SaveGalleryItem(ctx context.Context, item *GalleryItem) error {
	data := toGalleryData(item)
	document, err := repository.store.Patch(ctx, item.ID, map[string]any{
		"title":    data.Title,
		"image":    data.Image,
		"caption":  data.Caption,
		"category": data.Category,
		"products": data.ProductIDs,
	})
	if err != nil {
		return rename(err, entityGalleryItem)
	}

	item.UpdatedAt = document.UpdatedAt
	return nil
}

// DeleteGalleryItem implements [Repository].
func (repository *DocumentRepository) DeleteGalleryItem(ctx context.Context, id string) error {
	if _, err := repository.FindGalleryItem(ctx, id); err != nil {
		return err
	}
	return rename(repository.store.Delete(ctx, id), entityGalleryItem)
}

func decodeGalleryItem(document docstore.Document) (*GalleryItem, error) {
	data, err := docstore.Decode[galleryData](document)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	products := data.ProductIDs
	if products == nil {
		products = []string{}
	}

	return &GalleryItem{
		ID:         document.ID,
		Title:      data.Title,
		Image:      data.Image,
		Caption:    data.Caption,
		Category:   data.Category,
		ProductIDs: products,
		CreatedAt:  document.CreatedAt,
		UpdatedAt:  document.UpdatedAt,
	}, nil
}

func toGalleryData(item *GalleryItem) galleryData {
	products := item.ProductIDs
	if products == nil {
		products = []string{}
	}

	return galleryData{
		Title:      item.Title,
		Image:      item.Image,
		Caption:    item.Caption,
		Category:   item.Category,
		ProductIDs: products,
	}
}

func rename(err error, entity string) error {
	if apperr.IsNotFound(err) {
		return apperr.NotFound(entity)
	}
	return err
}
