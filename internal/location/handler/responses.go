package handler

import (
	"time"

	"civreg/internal/location/models"
)

type WardResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type VillageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	WardID    string    `json:"ward_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type WardListResponse struct {
	Wards []WardResponse `json:"wards"`
}

type VillageListResponse struct {
	Villages []VillageResponse `json:"villages"`
}

func toWardResponse(w *models.Ward) WardResponse {
	return WardResponse{
		ID:        w.ID.String(),
		Name:      w.Name,
		Code:      w.Code,
		Status:    string(w.Status),
		CreatedAt: w.CreatedAt,
	}
}

func toWardListResponse(wards []*models.Ward) WardListResponse {
	out := WardListResponse{Wards: make([]WardResponse, 0, len(wards))}
	for _, w := range wards {
		out.Wards = append(out.Wards, toWardResponse(w))
	}
	return out
}

func toVillageResponse(v *models.Village) VillageResponse {
	return VillageResponse{
		ID:        v.ID.String(),
		Name:      v.Name,
		Code:      v.Code,
		WardID:    v.WardID.String(),
		Status:    string(v.Status),
		CreatedAt: v.CreatedAt,
	}
}

func toVillageListResponse(villages []*models.Village) VillageListResponse {
	out := VillageListResponse{Villages: make([]VillageResponse, 0, len(villages))}
	for _, v := range villages {
		out.Villages = append(out.Villages, toVillageResponse(v))
	}
	return out
}
