package migrate

// versionOwnerColumns is the migration that added owner_id and the edit-token
// columns to dishes. Databases created before the owner feature may not have
// it applied yet.
const versionOwnerColumns = "003_add_owner_and_edit_token"

// Schema describes which optional columns the migrated database actually
// has. It is derived once from the ledger at startup and handed to the
// repositories, replacing runtime column introspection.
type Schema struct {
	// OwnerColumns is true when dishes has owner_id, edit_token and
	// edit_token_created_at.
	OwnerColumns bool
}

// SchemaFromRecords derives Schema capabilities from applied ledger records.
func SchemaFromRecords(records []Record) Schema {
	var s Schema
	for _, rec := range records {
		if rec.Version == versionOwnerColumns {
			s.OwnerColumns = true
		}
	}
	return s
}
