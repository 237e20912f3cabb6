package track

// MergeResult describes the outcome of merging an observation into a record
type MergeResult struct {
	Record        *Record
	Changed       bool
	FieldsChanged []string
	Overwritten   bool // true when the user-approved override rule fired
}

// Merge combines an existing stored record with an incoming observation.
//
// Default rule ("smart merge"): each field is copied from the incoming
// observation only when the existing field is absent and the incoming one is
// present. Present existing values are never overwritten, regardless of the
// incoming confidence.
//
// Override rule: when the incoming data source is a direct human approval
// (IsUserApproved), the incoming record replaces every field outright —
// including explicit clearing with empty values. This is the only path by
// which a populated field may change.
//
// The existing record is not mutated; the result holds a copy.
func Merge(existing, incoming *Record) *MergeResult {
	if IsUserApproved(incoming.DataSource) {
		return overwrite(existing, incoming)
	}
	return mergeDefault(existing, incoming)
}

// MergeDefault applies the non-destructive fill rule unconditionally,
// ignoring the incoming data source. Used by the deduplicator, which folds
// stored records and must never trigger the override path.
func MergeDefault(existing, incoming *Record) *MergeResult {
	return mergeDefault(existing, incoming)
}

func mergeDefault(existing, incoming *Record) *MergeResult {
	out := *existing
	res := &MergeResult{Record: &out}

	fillString(&out.CatalogCode, incoming.CatalogCode, "catalogCode", res)
	fillString(&out.Library, incoming.Library, "library", res)
	fillString(&out.Artist, incoming.Artist, "artist", res)
	fillString(&out.Source, incoming.Source, "source", res)
	fillString(&out.Composer, incoming.Composer, "composer", res)
	fillString(&out.Publisher, incoming.Publisher, "publisher", res)
	fillString(&out.MasterContact, incoming.MasterContact, "masterContact", res)
	fillString(&out.UseType, incoming.UseType, "useType", res)
	fillInt(&out.TrackNumber, incoming.TrackNumber, "trackNumber", res)
	fillInt(&out.Duration, incoming.Duration, "duration", res)

	// Bookkeeping: confidence ratchets up, verification is never cleared
	if incoming.Confidence > out.Confidence {
		out.Confidence = incoming.Confidence
		markChanged(res, "confidence")
	}
	if incoming.Verified && !out.Verified {
		out.Verified = true
		markChanged(res, "verified")
	}

	return res
}

func overwrite(existing, incoming *Record) *MergeResult {
	out := *incoming
	out.ID = existing.ID
	out.CreatedAt = existing.CreatedAt

	// Identity must survive an approval submitted without a name
	if !IsPresent(out.TrackName) {
		out.TrackName = existing.TrackName
	}

	// Confidence still ratchets: an approval never lowers it
	if existing.Confidence > out.Confidence {
		out.Confidence = existing.Confidence
	}

	res := &MergeResult{Record: &out, Overwritten: true}
	res.Changed = !fieldsEqual(existing, &out)
	if res.Changed {
		res.FieldsChanged = append(res.FieldsChanged, "all")
	}
	return res
}

func fillString(dst *string, incoming, name string, res *MergeResult) {
	if !IsPresent(*dst) && IsPresent(incoming) {
		*dst = incoming
		markChanged(res, name)
	}
}

func fillInt(dst *int, incoming int, name string, res *MergeResult) {
	if *dst == 0 && incoming > 0 {
		*dst = incoming
		markChanged(res, name)
	}
}

func markChanged(res *MergeResult, field string) {
	res.Changed = true
	res.FieldsChanged = append(res.FieldsChanged, field)
}

func fieldsEqual(a, b *Record) bool {
	return a.TrackName == b.TrackName &&
		a.CatalogCode == b.CatalogCode &&
		a.Library == b.Library &&
		a.Artist == b.Artist &&
		a.Source == b.Source &&
		a.TrackNumber == b.TrackNumber &&
		a.Duration == b.Duration &&
		a.Composer == b.Composer &&
		a.Publisher == b.Publisher &&
		a.MasterContact == b.MasterContact &&
		a.UseType == b.UseType &&
		a.Confidence == b.Confidence &&
		a.DataSource == b.DataSource &&
		a.Verified == b.Verified
}
