package shared

import "time"

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() int64
	GetCreatedAt() time.Time
}

// BaseEntity provides common fields for all entities.
// ID is zero until the entity has been persisted.
type BaseEntity struct {
	ID        int64
	CreatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() int64 {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// IsPersisted reports whether the entity has been assigned an identity
func (e *BaseEntity) IsPersisted() bool {
	return e.ID > 0
}

// NewBaseEntity creates a new, not yet persisted base entity
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		CreatedAt: time.Now(),
	}
}
