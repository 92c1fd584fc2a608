package handler

import (
	"time"

	"civreg/internal/transfer/models"
	id "civreg/pkg/domain"
)

type TransferResponse struct {
	ID            string `json:"id"`
	ResidenceID   string `json:"residence_id"`
	FromWardID    string `json:"from_ward_id"`
	FromVillageID string `json:"from_village_id"`
	ToWardID      string `json:"to_ward_id"`
	ToVillageID   string `json:"to_village_id"`
	Type          string `json:"transfer_type"`
	Reason        string `json:"transfer_reason"`
	RequestedBy   string `json:"requested_by"`
	Status        string `json:"status"`

	WeoApprovedBy  string     `json:"weo_approved_by,omitempty"`
	WeoApprovedAt  *time.Time `json:"weo_approved_at,omitempty"`
	WardApprovedBy string     `json:"ward_approved_by,omitempty"`
	WardApprovedAt *time.Time `json:"ward_approved_at,omitempty"`
	VeoAcceptedBy  string     `json:"veo_accepted_by,omitempty"`
	VeoAcceptedAt  *time.Time `json:"veo_accepted_at,omitempty"`

	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type TransferDetailsResponse struct {
	Transfer TransferResponse `json:"transfer"`
	Progress models.Progress  `json:"progress"`
}

type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

func toTransferResponse(t *models.Transfer) TransferResponse {
	return TransferResponse{
		ID:              t.ID.String(),
		ResidenceID:     t.ResidenceID.String(),
		FromWardID:      t.FromWardID.String(),
		FromVillageID:   t.FromVillageID.String(),
		ToWardID:        t.ToWardID.String(),
		ToVillageID:     t.ToVillageID.String(),
		Type:            string(t.Type),
		Reason:          t.Reason,
		RequestedBy:     t.RequestedBy.String(),
		Status:          string(t.Status),
		WeoApprovedBy:   optionalUser(t.WeoApprovedBy),
		WeoApprovedAt:   t.WeoApprovedAt,
		WardApprovedBy:  optionalUser(t.WardApprovedBy),
		WardApprovedAt:  t.WardApprovedAt,
		VeoAcceptedBy:   optionalUser(t.VeoAcceptedBy),
		VeoAcceptedAt:   t.VeoAcceptedAt,
		RejectedBy:      optionalUser(t.RejectedBy),
		RejectedAt:      t.RejectedAt,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
	}
}

func toTransferDetailsResponse(t *models.Transfer, progress models.Progress) TransferDetailsResponse {
	return TransferDetailsResponse{Transfer: toTransferResponse(t), Progress: progress}
}

func toTransferListResponse(transfers []*models.Transfer) TransferListResponse {
	out := TransferListResponse{Transfers: make([]TransferResponse, 0, len(transfers))}
	for _, t := range transfers {
		out.Transfers = append(out.Transfers, toTransferResponse(t))
	}
	return out
}

func optionalUser(userID id.UserID) string {
	if userID.IsNil() {
		return ""
	}
	return userID.String()
}
