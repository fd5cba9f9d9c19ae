package bwapi

import (
	"encoding/json"
	"time"
)

type EquipmentItemRef struct {
	ItemName string `json:"itemName"`
	Quality  uint8  `json:"quality"`
}

type InventoryItem struct {
	ItemName    string            `json:"itemName"`
	ModuleSlots uint8             `json:"moduleSlots"`
	Quality     uint8             `json:"quality"`
	Modules     []json.RawMessage `json:"modules"`
	Quantity    int               `json:"quantity"`
}

// A player as returned by the users endpoint.
//
// Biography, Equipment and Inventory are only sent when requested with the matching
// [UserDataFlags]. A nil value means "not requested", which differs from an empty list.
type User struct {
	Name      string              `json:"name"`
	CreatedAt string              `json:"createdAt"`
	Biography *string             `json:"biography,omitempty"`
	Equipment *[]EquipmentItemRef `json:"equipment,omitempty"`
	Inventory *[]InventoryItem    `json:"inventory,omitempty"`
	Roles     []string            `json:"roles"`
}

// Parses CreatedAt. The API sends RFC 3339 timestamps.
func (u User) Created() (time.Time, error) {
	return time.Parse(time.RFC3339, u.CreatedAt)
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}

	return false
}
