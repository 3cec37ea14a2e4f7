package entity

import "time"

type AssetStatus string

const (
	AssetActive      AssetStatus = "active"
	AssetInactive    AssetStatus = "inactive"
	AssetMaintenance AssetStatus = "maintenance"
	AssetRetired     AssetStatus = "retired"
)

func AllAssetStatuses() []AssetStatus {
	return []AssetStatus{AssetActive, AssetInactive, AssetMaintenance, AssetRetired}
}

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetActive, AssetInactive, AssetMaintenance, AssetRetired:
		return true
	}
	return false
}

type Asset struct {
	ID           string      `json:"id"`
	OrgID        string      `json:"org_id"`
	Name         string      `json:"name"`
	Description  *string     `json:"description"`
	Type         *string     `json:"type"`
	Location     *string     `json:"location"`
	Status       AssetStatus `json:"status"`
	QRCode       *string     `json:"qr_code"`
	SerialNumber *string     `json:"serial_number"`
	PurchaseDate *time.Time  `json:"purchase_date"`
	PurchaseCost *float64    `json:"purchase_cost"`
	CreatedBy    string      `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// AssetRef is the projection readable without a session, used by the
// public report page.
type AssetRef struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Location     *string `json:"location"`
	OrgID        string  `json:"org_id"`
	SerialNumber *string `json:"serial_number"`
}
