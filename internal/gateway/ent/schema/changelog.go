package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Changelog holds the schema definition for the persisted changelog
// entity. The runtime store uses raw SQL over the same table; this
// schema documents the shape and drives migrations.
type Changelog struct {
	ent.Schema
}

// Fields of the Changelog.
func (Changelog) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Unique().
			Immutable(),
		field.String("version").
			Default(""),
		field.String("title").
			Default(""),
		field.String("start_date").
			NotEmpty(),
		field.String("end_date").
			NotEmpty(),
		field.Time("most_recent_commit"),
		field.JSON("sections", []map[string]any{}),
		field.Time("created_at").
			Default(time.Now),
	}
}

// Indexes of the Changelog.
func (Changelog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("start_date"),
	}
}
