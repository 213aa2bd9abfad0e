package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin = 1
	RoleIDHost  = 2
	RoleIDUser  = 3
)

// RoleNames constants
const (
	RoleAdmin = "admin"
	RoleHost  = "host"
	RoleUser  = "user"
)

// RoleIDByName resolves a role name to its seeded ID.
func RoleIDByName(name string) (int, bool) {
	switch name {
	case RoleAdmin:
		return RoleIDAdmin, true
	case RoleHost:
		return RoleIDHost, true
	case RoleUser:
		return RoleIDUser, true
	}
	return 0, false
}
