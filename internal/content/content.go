// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package content serves the editorial pages of the storefront: blog posts and
the bedroom gallery. Both live in the CMS as documents.

Visitors only ever see published posts. Editors with the "content" capability
create, update and delete posts and gallery items.
*/
package content

import "time"

// Post is a blog article.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GalleryItem is one photo of a furnished room.
type GalleryItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Caption  string `json:"caption,omitempty"`
	Category string `json:"category,omitempty"`

	// ProductIDs links the photo to the catalogue items shown in it.
	ProductIDs []string `json:"product_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
