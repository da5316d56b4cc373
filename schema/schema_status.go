package schema

// StoreStatus represents the status of the data store.
type StoreStatus struct {
	Backend       string `json:"backend"`
	Connected     bool   `json:"connected"`
	Courses       int    `json:"courses"`
	Enrollments   int    `json:"enrollments"`
	Plans         int    `json:"plans"`
	Grades        int    `json:"grades"`
	SchemaVersion int    `json:"schema_version"`
	Dirty         bool   `json:"dirty"`
}

// CacheStats represents the counters of a request cache.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
