package app

import "fmt"

// Partitions names the three active cache partitions for one cache version.
// Exactly one partition is active per purpose; activating a new version
// evicts every partition outside the current set.
type Partitions struct {
	Static  string
	Dynamic string
	API     string
}

// PartitionsFor derives the partition names for a cache version.
func PartitionsFor(version string) Partitions {
	return Partitions{
		Static:  fmt.Sprintf("static-%s", version),
		Dynamic: fmt.Sprintf("dynamic-%s", version),
		API:     fmt.Sprintf("api-%s", version),
	}
}

// Names returns the partition names as the keep set for eviction.
func (p Partitions) Names() []string {
	return []string{p.Static, p.Dynamic, p.API}
}
