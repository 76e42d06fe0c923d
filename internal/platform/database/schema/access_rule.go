package schema

// AccessRuleTable represents the 'access.rule' table
type AccessRuleTable struct {
	Table     string
	ID        string
	Subject   string
	Resource  string
	Action    string
	Allow     string
	Reason    string
	CreatedBy string
	CreatedAt string
	UpdatedAt string
}

// AccessRule is the schema definition for access.rule
var AccessRule = AccessRuleTable{
	Table:     "access.rule",
	ID:        "id",
	Subject:   "subject",
	Resource:  "resource",
	Action:    "action",
	Allow:     "allow",
	Reason:    "reason",
	CreatedBy: "createdby",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t AccessRuleTable) Columns() []string {
	return []string{
		t.ID, t.Subject, t.Resource, t.Action, t.Allow,
		t.Reason, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	}
}
