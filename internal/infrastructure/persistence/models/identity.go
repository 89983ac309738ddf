package models

import "github.com/techsolutions/pos/internal/domain/identity"

// UserModel is the persistence model for the User entity
type UserModel struct {
	BaseModel
	Username     string `gorm:"column:username;type:varchar(50);not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password;type:varchar(255);not null"`
	DisplayName  string `gorm:"column:nombre;type:varchar(100)"`
	Email        string `gorm:"column:email;type:varchar(100)"`
	AccessLevel  int    `gorm:"column:nivel_acceso;not null"`
	Active       bool   `gorm:"column:activo;not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "usuarios"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		AccessLevel:  identity.AccessLevel(m.AccessLevel),
		Active:       m.Active,
	}
}

// FromDomain populates the persistence model from a domain User entity
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Email = u.Email
	m.AccessLevel = int(u.AccessLevel)
	m.Active = u.Active
}

// UserModelFromDomain creates a new persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
