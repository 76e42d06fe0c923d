package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table       string
	ID          string
	Subject     string
	Email       string
	DisplayName string
	Role        string
	IsActive    string
	IsVerified  string
	CreatedAt   string
	UpdatedAt   string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:       "users.profile",
	ID:          "id",
	Subject:     "subject",
	Email:       "email",
	DisplayName: "displayname",
	Role:        "role",
	IsActive:    "isactive",
	IsVerified:  "isverified",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t UserProfileTable) Columns() []string {
	return []string{
		t.ID, t.Subject, t.Email, t.DisplayName, t.Role,
		t.IsActive, t.IsVerified, t.CreatedAt, t.UpdatedAt,
	}
}
