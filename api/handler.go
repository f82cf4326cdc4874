package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"price-list/core/output"
	"price-list/core/types"
	"price-list/internal/errors"
)

// maxBodyBytes bounds compute request bodies
const maxBodyBytes = 1 << 20

// handleCompute handles POST /compute
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	id := RequestIDFromContext(r.Context())

	var req ComputeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.TypeInput, "invalid JSON body", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}

	listID := strings.TrimSpace(req.PriceList)
	if listID == "" {
		listID = s.opts.DefaultList
	}
	if listID == "" {
		s.writeError(w, r, errors.Input("price_list is required: no default price list is configured"))
		return
	}

	snap := s.current.Load()
	pl, err := snap.catalog.PriceList(listID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	product, err := snap.catalog.Product(req.Product)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	quote, err := snap.engine.Quote(pl, types.Request{
		Party:     req.Party,
		Product:   product,
		BasePrice: req.BasePrice,
		Quantity:  *req.Quantity,
		Unit:      req.Unit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, output.NewQuoteView(&output.QuoteResult{
		RequestID: id,
		PriceList: pl,
		ProductID: product.ID,
		Party:     req.Party,
		Quantity:  *req.Quantity,
		Unit:      req.Unit,
		BasePrice: req.BasePrice,
		Quote:     quote,
		Places:    s.opts.Places,
	}), http.StatusOK)
}

// handleListPriceLists handles GET /price-lists. Inactive lists are only
// included with ?all=true.
func (s *Server) handleListPriceLists(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"

	resp := PriceListsResponse{PriceLists: []output.PriceListView{}}
	for _, pl := range s.current.Load().catalog.PriceLists() {
		if !pl.Active && !all {
			continue
		}
		resp.PriceLists = append(resp.PriceLists, output.NewPriceListView(pl))
	}
	resp.Count = len(resp.PriceLists)
	writeJSON(w, resp, http.StatusOK)
}

// handleGetPriceList handles GET /price-lists/{id}
func (s *Server) handleGetPriceList(w http.ResponseWriter, r *http.Request) {
	pl, err := s.current.Load().catalog.PriceList(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, output.NewPriceListView(*pl), http.StatusOK)
}

// statusFor maps error types to HTTP status codes
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeFormulaSyntax, errors.TypeFormulaEvaluation, errors.TypeConversion:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := ErrorDetail{
		Code:      string(errors.TypeOf(err)),
		Message:   err.Error(),
		RequestID: RequestIDFromContext(r.Context()),
	}
	if typed, ok := err.(*errors.Error); ok {
		detail.Message = typed.Message
		if typed.Cause != nil {
			detail.Message += ": " + typed.Cause.Error()
		}
		detail.Context = typed.Context
	}
	if detail.Code == "" {
		detail.Code = string(errors.TypeInternal)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("request_id", detail.RequestID), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("request_id", detail.RequestID), zap.Error(err))
	}
	writeJSON(w, ErrorResponse{Error: detail}, status)
}

func validationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return errors.Wrap(errors.TypeInput, "invalid request", err)
	}
	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return errors.Newf(errors.TypeInput, "missing required fields: %s", strings.Join(fields, ", "))
}
