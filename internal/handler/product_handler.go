package handler

import (
	"net/http"
	"strconv"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
)

func formFloatPtr(r *http.Request, key string) *float64 {
	raw := r.FormValue(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formIntPtr(r *http.Request, key string) *int {
	raw := r.FormValue(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func productFromForm(r *http.Request) *domain.Product {
	return &domain.Product{
		Name:         r.FormValue("name"),
		Type:         domain.ProductType(r.FormValue("type")),
		Description:  r.FormValue("description"),
		InterestRate: formFloat(r, "interest_rate"),
		AnnualFee:    formFloatPtr(r, "annual_fee"),
		MinBalance:   formFloatPtr(r, "min_balance"),
		TenureMonths: formIntPtr(r, "tenure_months"),
	}
}

func (h *Handler) AdminProductList(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		redirectErr(w, r, "/admin/dashboard", err)
		return
	}
	h.render.Render(w, r, "admin_products.html", products)
}

func (h *Handler) AdminProductCreatePage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "admin_product_form.html", nil)
}

func (h *Handler) AdminProductCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/admin/products/new", err)
		return
	}
	if err := h.products.Create(r.Context(), productFromForm(r)); err != nil {
		redirectErr(w, r, "/admin/products/new", err)
		return
	}
	redirectOK(w, r, "/admin/products", "Product created.")
}

func (h *Handler) AdminProductEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		redirectErr(w, r, "/admin/products", err)
		return
	}
	h.render.Render(w, r, "admin_product_form.html", product)
}

func (h *Handler) AdminProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectErr(w, r, "/admin/products", err)
		return
	}
	product := productFromForm(r)
	product.ID = id
	if err := h.products.Update(r.Context(), product); err != nil {
		redirectErr(w, r, "/admin/products", err)
		return
	}
	redirectOK(w, r, "/admin/products", "Product updated.")
}

func (h *Handler) AdminProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		redirectErr(w, r, "/admin/products", err)
		return
	}
	redirectOK(w, r, "/admin/products", "Product deleted.")
}

// ProductCatalog is the customer-facing product listing.
func (h *Handler) ProductCatalog(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		redirectErr(w, r, "/customer/dashboard", err)
		return
	}
	h.render.Render(w, r, "products.html", products)
}
