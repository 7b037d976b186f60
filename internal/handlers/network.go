package handlers

import (
	"net/http"

	"travel-discovery-backend/internal/baas"

	"github.com/rs/zerolog/log"
)

// NetworkSwitch is a network toggle that reports its position
type NetworkSwitch interface {
	baas.NetworkToggler
	Online() bool
}

// NetworkHandler relays the host's connectivity signal to the document store
type NetworkHandler struct {
	network NetworkSwitch
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(network NetworkSwitch) *NetworkHandler {
	return &NetworkHandler{
		network: network,
	}
}

// NetworkStatus is the response of the network endpoints
type NetworkStatus struct {
	Online bool `json:"online"`
}

// Online handles POST /api/v1/network/online
func (h *NetworkHandler) Online(w http.ResponseWriter, r *http.Request) {
	if err := h.network.EnableNetwork(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to enable network")
		respondError(w, "Failed to enable network", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, NetworkStatus{Online: h.network.Online()})
}

// Offline handles POST /api/v1/network/offline
func (h *NetworkHandler) Offline(w http.ResponseWriter, r *http.Request) {
	if err := h.network.DisableNetwork(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to disable network")
		respondError(w, "Failed to disable network", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, NetworkStatus{Online: h.network.Online()})
}

// Status handles GET /api/v1/network
func (h *NetworkHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NetworkStatus{Online: h.network.Online()})
}
