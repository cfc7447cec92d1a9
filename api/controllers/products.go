package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	product "github.com/oakmart/storefront-backend/internal/products"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

type createProductRequest struct {
	Name                string  `json:"name" validate:"required,min=1,max=255"`
	SKU                 string  `json:"sku" validate:"required,min=1,max=100"`
	Description         *string `json:"description" validate:"omitempty,max=10000"`
	CategoryID          *string `json:"category_id" validate:"omitempty,uuid"`
	PriceCents          int     `json:"price_cents" validate:"gte=0"`
	CompareAtPriceCents *int    `json:"compare_at_price_cents" validate:"omitempty,gte=0"`
	Quantity            int     `json:"quantity" validate:"gte=0"`
	LowStockThreshold   *int    `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	AllowBackorder      bool    `json:"allow_backorder"`
	TrackQuantity       *bool   `json:"track_quantity"`
	Status              string  `json:"status" validate:"omitempty,oneof=draft active archived"`
	IsFeatured          bool    `json:"is_featured"`
}

type updateProductRequest struct {
	Name                *string `json:"name" validate:"omitempty,min=1,max=255"`
	SKU                 *string `json:"sku" validate:"omitempty,min=1,max=100"`
	Description         *string `json:"description" validate:"omitempty,max=10000"`
	CategoryID          *string `json:"category_id" validate:"omitempty,uuid"`
	ClearCategory       bool    `json:"clear_category"`
	PriceCents          *int    `json:"price_cents" validate:"omitempty,gte=0"`
	CompareAtPriceCents *int    `json:"compare_at_price_cents" validate:"omitempty,gte=0"`
	Quantity            *int    `json:"quantity" validate:"omitempty,gte=0"`
	LowStockThreshold   *int    `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	AllowBackorder      *bool   `json:"allow_backorder"`
	TrackQuantity       *bool   `json:"track_quantity"`
	Status              *string `json:"status" validate:"omitempty,oneof=draft active archived"`
	IsFeatured          *bool   `json:"is_featured"`
}

// ProductList serves the public catalog listing with filters and sorting.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := productFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The storefront only ever sees the live catalog.
		if !isAdmin(r) {
			status := enums.ProductStatusActive
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items": result.Items,
			"meta":  result.Meta,
		})
	}
}

// ProductGet serves a single product by id.
func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !isAdmin(r) && item.Status != enums.ProductStatusActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ProductGetBySlug serves a single product by its URL slug.
func ProductGetBySlug(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		item, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !isAdmin(r) && item.Status != enums.ProductStatusActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// AdminProductCreate adds a product to the catalog.
func AdminProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := optionalUUID(body.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), product.CreateProductInput{
			Name:                body.Name,
			SKU:                 body.SKU,
			Description:         body.Description,
			CategoryID:          categoryID,
			PriceCents:          body.PriceCents,
			CompareAtPriceCents: body.CompareAtPriceCents,
			Quantity:            body.Quantity,
			LowStockThreshold:   body.LowStockThreshold,
			AllowBackorder:      body.AllowBackorder,
			TrackQuantity:       body.TrackQuantity,
			Status:              enums.ProductStatus(body.Status),
			IsFeatured:          body.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminProductUpdate applies partial edits to a product.
func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := optionalUUID(body.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.UpdateProductInput{
			Name:                body.Name,
			SKU:                 body.SKU,
			Description:         body.Description,
			CategoryID:          categoryID,
			ClearCategory:       body.ClearCategory,
			PriceCents:          body.PriceCents,
			CompareAtPriceCents: body.CompareAtPriceCents,
			Quantity:            body.Quantity,
			LowStockThreshold:   body.LowStockThreshold,
			AllowBackorder:      body.AllowBackorder,
			TrackQuantity:       body.TrackQuantity,
			IsFeatured:          body.IsFeatured,
		}
		if body.Status != nil {
			status := enums.ProductStatus(*body.Status)
			input.Status = &status
		}

		item, err := svc.Update(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// AdminProductDelete archives a product out of the catalog.
func AdminProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func productFilterFromQuery(r *http.Request) (product.ListFilter, error) {
	filter := product.ListFilter{
		Search: validators.SanitizeString(r.URL.Query().Get("search"), 255),
		Sort:   validators.SanitizeString(r.URL.Query().Get("sort"), 50),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return filter, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a UUID").WithDetails(map[string]any{"field": "category_id"})
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.ProductStatus(raw)
		if !status.IsValid() {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown product status").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}

	minPrice, err := validators.ParseQueryInt(r, "min_price", -1, -1, 1<<31-1)
	if err != nil {
		return filter, err
	}
	if minPrice >= 0 {
		filter.MinPrice = &minPrice
	}

	maxPrice, err := validators.ParseQueryInt(r, "max_price", -1, -1, 1<<31-1)
	if err != nil {
		return filter, err
	}
	if maxPrice >= 0 {
		filter.MaxPrice = &maxPrice
	}

	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return filter, err
	}
	filter.Featured = featured

	inStock, err := validators.ParseQueryBool(r, "in_stock")
	if err != nil {
		return filter, err
	}
	if inStock != nil {
		filter.InStock = *inStock
	}

	return filter, nil
}

func optionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a valid UUID").WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}
