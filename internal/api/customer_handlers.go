package api

import (
	"net/http"

	"github.com/ignite/customer-analytics/internal/pkg/httputil"
	"github.com/ignite/customer-analytics/internal/service/customer"
)

type customerListResponse struct {
	*customer.Overview
	Pagination PaginationMeta `json:"pagination"`
}

// ListCustomers returns one page of customers with store-wide aggregates.
//
//	GET /api/customers?page=1&limit=50
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, h.defaultLimit, h.maxLimit)
	ov, err := h.customers.Overview(r.Context(), params.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, customerListResponse{
		Overview:   ov,
		Pagination: NewPaginationMeta(params, int64(ov.Total)),
	})
}

// ProductUsage returns the number of transactions per product.
//
//	GET /api/products/usage
func (h *Handlers) ProductUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.customers.ProductUsage(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"product_usage": usage})
}

// PersonalInfo returns a customer's record.
//
//	GET /api/customer/{customer_id}/personal_info
func (h *Handlers) PersonalInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(r)
	if !ok {
		invalidCustomerID(w)
		return
	}
	c, err := h.customers.PersonalInfo(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// ServicesUsed lists the products a customer transacted against.
//
//	GET /api/customer/{customer_id}/services_used
func (h *Handlers) ServicesUsed(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(r)
	if !ok {
		invalidCustomerID(w)
		return
	}
	services, err := h.customers.ServicesUsed(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"customer_id":   id,
		"services_used": services,
	})
}

type transactionHistoryResponse struct {
	*customer.TransactionPage
	Pagination PaginationMeta `json:"pagination"`
}

// TransactionHistory returns a customer's transactions, newest first.
//
//	GET /api/customer/{customer_id}/transactions?page=1&limit=50
func (h *Handlers) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(r)
	if !ok {
		invalidCustomerID(w)
		return
	}
	params := ParsePagination(r, h.defaultLimit, h.maxLimit)
	page, err := h.customers.Transactions(r.Context(), id, params.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, transactionHistoryResponse{
		TransactionPage: page,
		Pagination:      NewPaginationMeta(params, int64(page.Total)),
	})
}

// Segmentation returns a customer's segment and spend profile.
//
//	GET /api/customer/{customer_id}/segmentation
func (h *Handlers) Segmentation(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(r)
	if !ok {
		invalidCustomerID(w)
		return
	}
	seg, err := h.customers.Segmentation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, seg)
}
