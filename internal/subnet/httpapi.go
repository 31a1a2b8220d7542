package subnet

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// problem is an RFC 7807 "problem details" response, matching the shape
// used across the rest of this server's HTTP surfaces.
type problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func badRequest(w http.ResponseWriter, detail string) { writeProblem(w, http.StatusBadRequest, "Bad Request", detail) }
func notFound(w http.ResponseWriter, detail string)   { writeProblem(w, http.StatusNotFound, "Not Found", detail) }

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// createSubnetRequest is the body for POST /subnet.
type createSubnetRequest struct {
	CIDR string `json:"cidr"`
}

// subnetResponse is the body for every subnet endpoint, describing one
// allocation this process currently holds.
type subnetResponse struct {
	CIDR      string `json:"cidr"`
	Interface string `json:"interface"`
}

// Handler is the HTTP facade over a Manager, exposing allocate/list/remove
// as REST endpoints so the subnet manager can run embedded in the same
// process as the NFSv4 server or standalone as its own daemon.
type Handler struct {
	manager *Manager
}

// NewHandler returns a Handler backed by manager.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes mounts the subnet endpoints onto r: POST /subnet, GET /subnet,
// DELETE /subnet/{cidr}, and GET /healthz.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/subnet", h.create)
	r.Get("/subnet", h.list)
	r.Delete("/subnet/{cidr}", h.remove)
	r.Get("/healthz", h.healthz)
}

type healthResponse struct {
	Status        string `json:"status"`
	ActiveSubnets int    `json:"active_subnets"`
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", ActiveSubnets: len(h.manager.List())})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSubnetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.CIDR == "" {
		badRequest(w, "cidr is required")
		return
	}

	alloc, err := h.manager.Allocate(req.CIDR)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, subnetResponse{CIDR: alloc.CIDR.String(), Interface: alloc.Interface})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	allocs := h.manager.List()
	resp := make([]subnetResponse, len(allocs))
	for i, alloc := range allocs {
		resp[i] = subnetResponse{CIDR: alloc.CIDR.String(), Interface: alloc.Interface}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	cidr := chi.URLParam(r, "cidr")
	if cidr == "" {
		badRequest(w, "cidr is required")
		return
	}

	if err := h.manager.Remove(cidr); err != nil {
		notFound(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
