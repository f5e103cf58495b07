package models

// FieldKind says how a field's value is stored and shown.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldStatus
	FieldTime
	FieldMarkdown
)

// Field describes one column of a resource.
type Field struct {
	Key   string
	Label string
	Kind  FieldKind

	Sortable   bool
	Filterable bool
	Searchable bool
	Editable   bool

	// Hidden fields are fetched but not shown as grid columns.
	Hidden bool
}

func text(key, label string) Field {
	return Field{Key: key, Label: label, Kind: FieldText, Sortable: true, Filterable: true, Searchable: true}
}

func editable(f Field) Field {
	f.Editable = true
	return f
}

func status() Field {
	return Field{Key: "status", Label: "Status", Kind: FieldStatus, Sortable: true, Filterable: true}
}

func timestamp(key, label string) Field {
	return Field{Key: key, Label: label, Kind: FieldTime, Sortable: true}
}

// ref is a hidden foreign key, carried so clients can follow references.
func ref(key string) Field {
	return Field{Key: key, Label: key, Kind: FieldText, Hidden: true}
}

func markdown(key, label string) Field {
	return Field{Key: key, Label: label, Kind: FieldMarkdown, Searchable: true, Editable: true, Hidden: true}
}

// Fields returns the fields of r in column order.
func Fields(r Resource) []Field {
	switch r {
	case ResourceUsers:
		return []Field{
			editable(text("name", "Name")),
			editable(text("email", "Email")),
			editable(text("phone", "Phone")),
			timestamp("created_at", "Joined"),
		}
	case ResourceCompanies:
		return []Field{
			editable(text("name", "Company")),
			editable(text("owner", "Owner")),
			editable(text("phone", "Phone")),
			text("registration_number", "Reg. No."),
			status(),
			timestamp("created_at", "Registered"),
		}
	case ResourceJobPosts:
		return []Field{
			editable(text("title", "Title")),
			text("company", "Company"),
			status(),
			timestamp("due_date", "Due"),
			{Key: "company_status", Label: "Company status", Kind: FieldStatus, Hidden: true},
			ref("company_id"),
		}
	case ResourceApplications:
		return []Field{
			text("applicant", "Applicant"),
			text("job_post", "Job post"),
			text("company", "Company"),
			status(),
			timestamp("applied_at", "Applied"),
			{Key: "post_status", Label: "Post status", Kind: FieldStatus, Hidden: true},
			ref("user_id"),
			ref("job_post_id"),
		}
	case ResourceReviews:
		return []Field{
			editable(text("title", "Title")),
			text("company", "Company"),
			text("author", "Author"),
			timestamp("created_at", "Written"),
			markdown("content", "Content"),
			ref("company_id"),
			ref("user_id"),
		}
	case ResourceNotices:
		return []Field{
			editable(text("title", "Title")),
			timestamp("created_at", "Posted"),
			markdown("content", "Content"),
		}
	default:
		return nil
	}
}

// LookupField finds the field with key on r.
func LookupField(r Resource, key string) (Field, bool) {
	for _, f := range Fields(r) {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// EditableFields returns the fields an admin may change through an update.
func EditableFields(r Resource) []Field {
	var out []Field
	for _, f := range Fields(r) {
		if f.Editable {
			out = append(out, f)
		}
	}
	return out
}
