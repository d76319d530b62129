package models

// User represents a registered account. Password holds a bcrypt hash, never the plain text.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(80);not null"`
	Password string `json:"-" gorm:"type:varchar(80);not null"`
}

// TableName pins the table name used by the schema.
func (User) TableName() string {
	return "users"
}
