package schema

// CMSDocumentTable represents the 'cms.document' table
type CMSDocumentTable struct {
	Table     string
	ID        string
	Type      string
	Data      string
	CreatedAt string
	UpdatedAt string
}

// CMSDocument is the schema definition for cms.document
var CMSDocument = CMSDocumentTable{
	Table:     "cms.document",
	ID:        "id",
	Type:      "doctype",
	Data:      "data",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CMSDocumentTable) Columns() []string {
	return []string{t.ID, t.Type, t.Data, t.CreatedAt, t.UpdatedAt}
}
