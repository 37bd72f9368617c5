package conjugation

// FilterTenses narrows an ordered tense sequence to the entries the
// checklist allows. A nil checklist passes every tense through
// unchanged. Otherwise a tense survives unless its id is explicitly
// mapped to false: the default for an unlisted tense id is enabled, so
// "not mentioned" never excludes. The check is an explicit presence
// test, not a zero-value read, to keep that default exact.
//
// Output order matches input order; the function never mutates its
// arguments and is safe for concurrent use.
func FilterTenses(tenses []TenseData, checklist ConstructChecklist) []TenseData {
	if checklist == nil {
		return tenses
	}
	out := make([]TenseData, 0, len(tenses))
	for _, t := range tenses {
		enabled, listed := checklist[t.TenseID]
		if listed && !enabled {
			continue
		}
		out = append(out, t)
	}
	return out
}
