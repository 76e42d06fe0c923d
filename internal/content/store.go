// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import "context"

// Repository persists posts and gallery items. Listings are newest first.
type Repository interface {
	ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error)
	FindPost(ctx context.Context, id string) (*Post, error)
	FindPostBySlug(ctx context.Context, slug string) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	SavePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id string) error

	ListGallery(ctx context.Context, category string) ([]GalleryItem, error)
	FindGalleryItem(ctx context.Context, id string) (*GalleryItem, error)
	CreateGalleryItem(ctx context.Context, item *GalleryItem) error
	SaveGalleryItem(ctx context.Context, item *GalleryItem) error
	DeleteGalleryItem(ctx context.Context, id string) error
}
