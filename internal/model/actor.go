package model

import "github.com/google/uuid"

// Actor is the caller identity resolved by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor owns the store.
func (a Actor) Owns(store *Store) bool {
	return store != nil && store.OwnerID == a.ID
}

// CanManage reports whether the actor may act on the store's orders as the vendor side.
func (a Actor) CanManage(store *Store) bool {
	return a.IsAdmin() || a.Owns(store)
}

// CanView reports whether the actor may read the order.
func (a Actor) CanView(order *Order) bool {
	return a.CanManage(order.Store) || order.UserID == a.ID
}
