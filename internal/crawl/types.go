// Package crawl implements the page crawl lifecycle: load a page through a
// backend handle, run the registered extraction routines against it with
// per-routine failure isolation, and release the page.
package crawl

// Record holds the fields extracted from one page. Values are nullable: a
// routine that cannot find its field writes a nil placeholder so the record
// stays complete. A Record belongs to exactly one Session and is replaced,
// never merged, on every load.
type Record map[string]*string

// Set stores value under key.
func (r Record) Set(key, value string) {
	v := value
	r[key] = &v
}

// SetMissing stores a null placeholder under key.
func (r Record) SetMissing(key string) {
	r[key] = nil
}

// Get returns the value under key; ok is false when the key is absent or
// holds the null placeholder.
func (r Record) Get(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// PageInfo records metadata about the currently loaded page. It is reset and
// repopulated at the start of every load and read-only afterwards.
type PageInfo struct {
	URL string `json:"url"`
}
