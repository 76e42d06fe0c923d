// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"slices"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/docstore"
)

const (
	entityProduct  = "Product"
	entityCategory = "Category"
)

// productData is the CMS document body of a product.
type productData struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       *float64     `json:"price,omitempty"`
	Stock       *int         `json:"stock,omitempty"`
	Discount    *float64     `json:"discount,omitempty"`
	Categories  CategoryRefs `json:"categories"`
	Label       string       `json:"label,omitempty"`
	Rating      *float64     `json:"rating,omitempty"`
	Images      []string     `json:"images,omitempty"`
}

type categoryData struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// # Products

// DocumentProductRepository implements [ProductRepository] over the CMS.
type DocumentProductRepository struct {
	store docstore.Store
}

// NewDocumentProductRepository constructs a [DocumentProductRepository].
func NewDocumentProductRepository(store docstore.Store) *DocumentProductRepository {
	return &DocumentProductRepository{store: store}
}

// List implements [ProductRepository].
func (repository *DocumentProductRepository) List(ctx context.Context) ([]Product, error) {
	documents, err := repository.store.Find(ctx, docstore.Query{Type: docstore.TypeProduct})
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(documents))
	for _, document := range slices.Backward(documents) {
		product, err := productFromDocument(document)
		if err != nil {
			return nil, apperr.Unavailable(err)
		}
		products = append(products, *product)
	}
	return products, nil
}

// FindByID implements [ProductRepository].
func (repository *DocumentProductRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	document, err := repository.store.Get(ctx, id)
	if err != nil {
		return nil, rename(err, entityProduct)
	}
	if document.Type != docstore.TypeProduct {
		return nil, apperr.NotFound(entityProduct)
	}
	return decodeProduct(*document)
}

// FindBySlug implements [ProductRepository].
func (repository *DocumentProductRepository) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	document, err := repository.store.FindOne(ctx, docstore.Query{
		Type:  docstore.TypeProduct,
		Match: map[string]any{"slug": slug},
	})
	if err != nil {
		return nil, rename(err, entityProduct)
	}
	return decodeProduct(*document)
}

// FindByIDs implements [ProductRepository].
func (repository *DocumentProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	result := make(map[string]Product, len(ids))
	for _, id := range ids {
		if _, seen := result[id]; seen {
			continue
		}

		product, err := repository.FindByID(ctx, id)
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[id] = *product
	}
	return result, nil
}

// Create implements [ProductRepository].
func (repository *DocumentProductRepository) Create(ctx context.Context, product *Product) error {
	data, err := docstore.Encode(toProductData(product))
	if err != nil {
		return err
	}

	document := &docstore.Document{ID: product.ID, Type: docstore.TypeProduct, Data: data}
	if err := repository.store.Create(ctx, document); err != nil {
		return err
	}

	product.ID = document.ID
	product.CreatedAt, product.UpdatedAt = document.CreatedAt, document.UpdatedAt
	return nil
}

// Save implements [ProductRepository].
func (repository *DocumentProductRepository) Save(ctx context.Context, product *Product) error {
	data := toProductData(product)
	document, err := repository.store.Patch(ctx, product.ID, map[string]any{
		"slug":        data.Slug,
		"name":        data.Name,
		"description": data.Description,
		"price":       data.Price,
		"stock":       data.Stock,
		"discount":    data.Discount,
		"categories":  data.Categories,
		"label":       data.Label,
		"rating":      data.Rating,
		"images":      data.Images,
	})
	if err != nil {
		return rename(err, entityProduct)
	}

	product.UpdatedAt = document.UpdatedAt
	return nil
}

// SetStock implements [ProductRepository].
func (repository *DocumentProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	_, err := repository.store.Patch(ctx, id, map[string]any{"stock": stock})
	return rename(err, entityProduct)
}

// Delete implements [ProductRepository].
func (repository *DocumentProductRepository) Delete(ctx context.Context, id string) error {
	return rename(repository.store.Delete(ctx, id), entityProduct)
}

func decodeProduct(document docstore.Document) (*Product, error) {
	product, err := productFromDocument(document)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return product, nil
}

func productFromDocument(document docstore.Document) (*Product, error) {
	data, err := docstore.Decode[productData](document)
	if err != nil {
		return nil, err
	}

	return &Product{
		ID:          document.ID,
		Slug:        data.Slug,
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		Stock:       data.Stock,
		Discount:    data.Discount,
		Categories:  data.Categories,
		Label:       data.Label,
		Rating:      data.Rating,
		Images:      data.Images,
		CreatedAt:   document.CreatedAt,
		UpdatedAt:   document.UpdatedAt,
	}, nil
}

func toProductData(product *Product) productData {
	categories := product.Categories
	if categories == nil {
		categories = CategoryRefs{}
	}

	return productData{
		Slug:        product.Slug,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Discount:    product.Discount,
		Categories:  categories,
		Label:       product.Label,
		Rating:      product.Rating,
		Images:      product.Images,
	}
}

// # Categories

// DocumentCategoryRepository implements [CategoryRepository] over the CMS.
type DocumentCategoryRepository struct {
	store docstore.Store
}

// NewDocumentCategoryRepository constructs a [DocumentCategoryRepository].
func NewDocumentCategoryRepository(store docstore.Store) *DocumentCategoryRepository {
	return &DocumentCategoryRepository{store: store}
}

// List implements [CategoryRepository]. Categories keep creation order.
func (repository *DocumentCategoryRepository) List(ctx context.Context) ([]Category, error) {
	documents, err := repository.store.Find(ctx, docstore.Query{Type: docstore.TypeCategory})
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(documents))
	for _, document := range documents {
		category, err := decodeCategory(document)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

// FindByID implements [CategoryRepository].
func (repository *DocumentCategoryRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	document, err := repository.store.Get(ctx, id)
	if err != nil {
		return nil, rename(err, entityCategory)
	}
	if document.Type != docstore.TypeCategory {
		return nil, apperr.NotFound(entityCategory)
	}
	return decodeCategory(*document)
}

// FindBySlug implements [CategoryRepository].
func (repository *DocumentCategoryRepository) FindBySlug(ctx context.Context, slug string) (*Category, error) {
	document, err := repository.store.FindOne(ctx, docstore.Query{
		Type:  docstore.TypeCategory,
		Match: map[string]any{"slug": slug},
	})
	if err != nil {
		return nil, rename(err, entityCategory)
	}
	return decodeCategory(*document)
}

// Create implements [CategoryRepository].
func (repository *DocumentCategoryRepository) Create(ctx context.Context, category *Category) error {
	data, err := docstore.Encode(categoryData{Slug: category.Slug, Name: category.Name, Description: category.Description})
	if err != nil {
		return err
	}

	document := &docstore.Document{ID: category.ID, Type: docstore.TypeCategory, Data: data}
	if err := repository.store.Create(ctx, document); err != nil {
		return err
	}

	category.ID, category.CreatedAt = document.ID, document.CreatedAt
	return nil
}

// Save implements [CategoryRepository].
func (repository *DocumentCategoryRepository) Save(ctx context.Context, category *Category) error {
	_, err := repository.store.Patch(ctx, category.ID, map[string]any{
		"slug":        category.Slug,
		"name":        category.Name,
		"description": category.Description,
	})
	return rename(err, entityCategory)
}

// Delete implements [CategoryRepository].
func (repository *DocumentCategoryRepository) Delete(ctx context.Context, id string) error {
	return rename(repository.store.Delete(ctx, id), entityCategory)
}

func decodeCategory(document docstore.Document) (*Category, error) {
	data, err := docstore.Decode[categoryData](document)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return &Category{
		ID:          document.ID,
		Slug:        data.Slug,
		Name:        data.Name,
		Description: data.Description,
		CreatedAt:   document.CreatedAt,
	}, nil
}

// rename replaces the generic document NotFound with one naming the entity.
func rename(err error, entity string) error {
	if apperr.IsNotFound(err) {
		return apperr.NotFound(entity)
	}
	return err
}
