package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/anupamd/billsplit/internal/service"
	"github.com/anupamd/billsplit/internal/split"
	"github.com/anupamd/billsplit/internal/storage"
	"github.com/anupamd/billsplit/pkg/response"
)

// Handler handles HTTP requests for bill sessions
type Handler struct {
	service  *service.BillService
	validate *validator.Validate
}

// NewHandler creates a new bill handler
func NewHandler(svc *service.BillService) *Handler {
	return &Handler{
		service:  svc,
		validate: validator.New(),
	}
}

// Routes returns the router for bill endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateBill)
	r.Get("/{billID}", h.GetBill)
	r.Delete("/{billID}", h.DeleteBill)

	r.Post("/{billID}/people", h.AddPerson)
	r.Delete("/{billID}/people/{name}", h.RemovePerson)

	r.Post("/{billID}/items", h.AddItem)
	r.Put("/{billID}/items/{itemID}", h.UpdateItem)
	r.Delete("/{billID}/items/{itemID}", h.RemoveItem)

	r.Put("/{billID}/charges", h.SetCharges)

	r.Get("/{billID}/split", h.GetSplit)
	r.Get("/{billID}/summary", h.GetSummary)
	r.Post("/{billID}/scan", h.ScanReceipt)

	return r
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

// CreateBill handles POST /bills
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if !h.decode(w, r, &req) {
		return
	}

	tip := split.ChargePolicy{Kind: split.ChargePercentage, Value: 0}
	tax := split.ChargePolicy{Kind: split.ChargePercentage, Value: 0}
	if req.Tip != nil {
		tip = req.Tip.toPolicy()
	}
	if req.Tax != nil {
		tax = req.Tax.toPolicy()
	}

	bill, err := h.service.CreateBill(r.Context(), req.People, toModelItems(req.Items), tip, tax)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toBillResponse(bill))
}

// GetBill handles GET /bills/{billID}
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetBill(r.Context(), chi.URLParam(r, "billID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toBillResponse(bill))
}

// DeleteBill handles DELETE /bills/{billID}
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBill(r.Context(), chi.URLParam(r, "billID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPerson handles POST /bills/{billID}/people
func (h *Handler) AddPerson(w http.ResponseWriter, r *http.Request) {
	var req AddPersonRequest
	if !h.decode(w, r, &req) {
		return
	}

	bill, err := h.service.AddPerson(r.Context(), chi.URLParam(r, "billID"), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toBillResponse(bill))
}

// RemovePerson handles DELETE /bills/{billID}/people/{name}
func (h *Handler) RemovePerson(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.RemovePerson(r.Context(), chi.URLParam(r, "billID"), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toBillResponse(bill))
}

// AddItem handles POST /bills/{billID}/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemPayload
	if !h.decode(w, r, &req) {
		return
	}

	bill, err := h.service.AddItem(r.Context(), chi.URLParam(r, "billID"), req.toModel())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toBillResponse(bill))
}

// UpdateItem handles PUT /bills/{billID}/items/{itemID}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemPayload
	if !h.decode(w, r, &req) {
		return
	}

	bill, err := h.service.UpdateItem(r.Context(),
		chi.URLParam(r, "billID"), chi.URLParam(r, "itemID"), req.toModel())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toBillResponse(bill))
}

// RemoveItem handles DELETE /bills/{billID}/items/{itemID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "billID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toBillResponse(bill))
}

// SetCharges handles PUT /bills/{billID}/charges
func (h *Handler) SetCharges(w http.ResponseWriter, r *http.Request) {
	var req SetChargesRequest
	if !h.decode(w, r, &req) {
		return
	}

	bill, err := h.service.SetCharges(r.Context(), chi.URLParam(r, "billID"),
		req.Tip.toPolicy(), req.Tax.toPolicy())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toBillResponse(bill))
}

// GetSplit handles GET /bills/{billID}/split
func (h *Handler) GetSplit(w http.ResponseWriter, r *http.Request) {
	_, result, err := h.service.ComputeSplit(r.Context(), chi.URLParam(r, "billID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toSplitResponse(result))
}

// GetSummary handles GET /bills/{billID}/summary and returns plain text
// suitable for clipboard sharing.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "billID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(summary))
}

// ScanReceipt handles POST /bills/{billID}/scan
func (h *Handler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !h.decode(w, r, &req) {
		return
	}

	bill, err := h.service.ScanReceipt(r.Context(), chi.URLParam(r, "billID"), req.ImageBase64)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, toBillResponse(bill))
}

// writeError maps service and storage errors onto HTTP responses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *split.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, "Bill not found")
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrDuplicatePerson):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrUnknownPerson),
		errors.Is(err, service.ErrEmptyName),
		errors.As(err, &vErr):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrExtractionFailed):
		response.BadGateway(w, "Receipt extraction failed; add items manually")
	default:
		slog.Error("Request failed", "error", err)
		response.InternalError(w, "Internal server error")
	}
}
