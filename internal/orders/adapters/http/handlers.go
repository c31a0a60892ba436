package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/orders/app"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/go-chi/chi/v5"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	defaultPageSize = 20
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

// Handler exposes HTTP endpoints for the register, the brewing station and the counter.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
}

func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the order routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", h.getCatalog)
		r.Post("/split-preview", h.previewSplit)
		r.Get("/discounts/{number}", h.checkDiscount)
		r.Get("/status-board", h.statusBoard)
		r.Get("/order-numbers/{number}", h.getOrderByNumber)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.submitOrder)
			r.Get("/", h.listOrders)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getOrder)
				r.Delete("/", h.deleteOrder)

				r.Post("/ready", h.markReady)
				r.Delete("/ready", h.undoReady)
				r.Post("/served", h.markServed)
				r.Delete("/served", h.undoServed)

				r.Post("/comments", h.addComment)
				r.Put("/items/{index}/assignee", h.assignItem)
				r.Delete("/items/{index}", h.removeItem)
				r.Put("/discount", h.applyDiscount)
				r.Delete("/discount", h.removeDiscount)
				r.Post("/print", h.printReceipt)
			})
		})
	})
}

func (h *Handler) getCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": h.service.Catalog()})
}

// submitOrder requires an Idempotency-Key. A retry with the same key and body
// replays the stored response; the same key with another body is rejected.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header required")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	fingerprint := ports.Fingerprint(raw)

	stored, err := h.service.GetIdempotentResponse(ctx, idemKey)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if stored != nil {
		if !stored.Matches(fingerprint) {
			h.writeServiceError(w, r, ports.ErrIdempotencyMismatch)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(headerReplayed, "true")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload app.SubmitOrderInput
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	order, err := h.service.SubmitOrder(ctx, payload)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(mapOrderToResponse(order, h.service.SplitAdvice(order)))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response := ports.StoredResponse{
		StatusCode:  http.StatusCreated,
		Body:        body,
		OrderID:     order.ID,
		Fingerprint: fingerprint,
	}
	if err := h.service.SaveIdempotentResponse(ctx, idemKey, response); err != nil {
		h.logger.WarnContext(ctx, "failed to store idempotent response",
			"order_id", order.ID,
			"error", err,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/v1/orders/"+order.ID)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ports.ListFilter{Page: 1, PageSize: defaultPageSize}

	if statusParam := query.Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		filter.Status = &status
	}

	var ok bool
	if filter.Page, ok = intParam(query.Get("page"), 1); !ok || filter.Page < 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "page must be a positive integer")
		return
	}
	if filter.PageSize, ok = intParam(query.Get("page_size"), defaultPageSize); !ok || filter.PageSize < 1 || filter.PageSize > maxPageSize {
		writeError(w, http.StatusBadRequest, "invalid_request", "page_size must be between 1 and 100")
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := ListOrdersResponse{
		Orders:   make([]OrderResponse, len(orders)),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i, order := range orders {
		resp.Orders[i] = mapOrderToResponse(order, h.service.SplitAdvice(order))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	h.writeOrder(w, r, order, err)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "order number must be an integer")
		return
	}
	order, err := h.service.GetOrderByNumber(r.Context(), number)
	h.writeOrder(w, r, order, err)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markReady(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.MarkReady(r.Context(), chi.URLParam(r, "id"))
	h.writeOrder(w, r, order, err)
}

func (h *Handler) undoReady(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.UndoReady(r.Context(), chi.URLParam(r, "id"))
	h.writeOrder(w, r, order, err)
}

func (h *Handler) markServed(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.MarkServed(r.Context(), chi.URLParam(r, "id"))
	h.writeOrder(w, r, order, err)
}

func (h *Handler) undoServed(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.UndoServed(r.Context(), chi.URLParam(r, "id"))
	h.writeOrder(w, r, order, err)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), req.Author, req.Text)
	h.writeOrder(w, r, order, err)
}

func (h *Handler) assignItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req AssignItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.service.AssignItem(r.Context(), chi.URLParam(r, "id"), index, req.Assignee)
	h.writeOrder(w, r, order, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	order, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "id"), index)
	h.writeOrder(w, r, order, err)
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req ApplyDiscountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.service.ApplyDiscount(r.Context(), chi.URLParam(r, "id"), req.AnchorOrderNumber)
	h.writeOrder(w, r, order, err)
}

func (h *Handler) removeDiscount(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RemoveDiscount(r.Context(), chi.URLParam(r, "id"))
	h.writeOrder(w, r, order, err)
}

func (h *Handler) printReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.PrintReceipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReceiptToResponse(receipt))
}

func (h *Handler) previewSplit(w http.ResponseWriter, r *http.Request) {
	var req SplitPreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	advice, err := h.service.PreviewSplit(r.Context(), req.Items)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

func (h *Handler) checkDiscount(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "order number must be an integer")
		return
	}

	eligibility, err := h.service.CheckDiscount(r.Context(), number, r.URL.Query().Get("claimant_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EligibilityResponse{OrderNumber: number, Eligibility: eligibility})
}

func (h *Handler) statusBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.StatusBoard(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, order *domain.Order, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order, h.service.SplitAdvice(order)))
}

// writeServiceError maps application errors to status codes. Unknown errors are
// logged and reported without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, app.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusBadRequest, "unknown_item", err.Error())
	case errors.Is(err, domain.ErrIndexOutOfRange):
		writeError(w, http.StatusBadRequest, "invalid_item_index", err.Error())
	case errors.Is(err, app.ErrDiscountUnavailable):
		writeError(w, http.StatusUnprocessableEntity, "discount_unavailable", err.Error())
	case errors.Is(err, ports.ErrIdempotencyMismatch):
		writeError(w, http.StatusUnprocessableEntity, "idempotency_key_reused", err.Error())
	case errors.Is(err, ports.ErrDuplicateOrderNumber):
		writeError(w, http.StatusConflict, "order_number_conflict", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_item_index", "item index must be an integer")
		return 0, false
	}
	return index, true
}

func intParam(value string, fallback int) (int, bool) {
	if value == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(value)
	return n, err == nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
