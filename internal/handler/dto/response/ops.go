package response

import (
	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type SweepResponse struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type RelayResponse struct {
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

type AvailabilityResponse struct {
	ResourceID uuid.UUID `json:"resourceId"`
	Unlimited  bool      `json:"unlimited"`
	// Omitted for unlimited resources.
	Available *int `json:"available,omitempty"`
}

func FromSweepResult(r commands.SweepResult) SweepResponse {
	return SweepResponse{
		Scanned: r.Scanned,
		Expired: r.Expired,
		Skipped: r.Skipped,
		Failed:  r.Failed,
	}
}

func FromRelayResult(r commands.RelayResult) RelayResponse {
	return RelayResponse{Published: r.Published, Failed: r.Failed}
}

func FromAvailability(resourceID uuid.UUID, a inventory.Availability) AvailabilityResponse {
	resp := AvailabilityResponse{ResourceID: resourceID, Unlimited: a.IsUnlimited()}
	if !a.IsUnlimited() {
		n := a.Count()
		resp.Available = &n
	}
	return resp
}
