package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/customer-analytics/internal/analytics"
	"github.com/ignite/customer-analytics/internal/pkg/httputil"
)

// CustomerInsights runs the full analytics pipeline.
//
//	GET /api/customers/insights?period=week&granularity=day&segment=High&min_spent=100
func (h *Handlers) CustomerInsights(w http.ResponseWriter, r *http.Request) {
	req, err := h.insights.ParseRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.insights.Trends(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, resp)
}

// RevenueTrends returns only the revenue and product category series.
//
//	GET /api/revenue/trends?period=month
func (h *Handlers) RevenueTrends(w http.ResponseWriter, r *http.Request) {
	req, err := h.insights.ParseRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.insights.RevenueTrends(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, resp)
}

// ExportTrends computes insights and stores them as a report. Parameters
// come from the query string; a JSON object body overrides them.
//
//	POST /api/reports/trends
func (h *Handlers) ExportTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if r.Body != nil && r.Body != http.NoBody {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			httputil.BadRequest(w, "invalid JSON: "+err.Error())
			return
		}
		merged, err := mergeParams(q, body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		q = merged
	}

	req, err := h.insights.ParseRequest(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ref, err := h.insights.Export(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.Created(w, ref)
}

// GetTrendReport returns a stored trend report.
//
//	GET /api/reports/trends/{report_id}
func (h *Handlers) GetTrendReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.insights.Report(r.Context(), chi.URLParam(r, "report_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, report)
}

// mergeParams overlays scalar body fields on the query parameters.
func mergeParams(q url.Values, body map[string]any) (url.Values, error) {
	out := make(url.Values, len(q)+len(body))
	for k, v := range q {
		out[k] = v
	}
	for k, v := range body {
		switch v := v.(type) {
		case nil:
		case string:
			out.Set(k, v)
		case json.Number:
			out.Set(k, v.String())
		case bool:
			out.Set(k, strconv.FormatBool(v))
		default:
			return nil, &analytics.InvalidInputError{Param: k, Reason: "must be a string, number or boolean"}
		}
	}
	return out, nil
}
