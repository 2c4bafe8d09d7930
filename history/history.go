// Package history keeps a registry of completed downloads.
package history

import (
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/segrab-cli/segrab/filesystem"
	"github.com/segrab-cli/segrab/source"
	"github.com/segrab-cli/segrab/where"
	"golang.org/x/exp/slices"
)

// Record describes one merged video.
type Record struct {
	Target      source.Target `json:"target" jsonschema:"description=What was downloaded"`
	Path        string        `json:"path" jsonschema:"description=Location of the merged video"`
	Segments    int           `json:"segments" jsonschema:"description=Number of segments merged"`
	StartID     int           `json:"start_id" jsonschema:"description=Id of the first segment"`
	BaseURL     string        `json:"base_url" jsonschema:"description=URL prefix segments were requested from"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Key identifies the record in the registry.
func (r *Record) Key() string {
	return r.Target.Dirname()
}

func (r *Record) String() string {
	return r.Target.String()
}

var (
	cacher     *gache.Cache[map[string]*Record]
	cacherOnce sync.Once
)

// registry opens the registry on first use, so the active filesystem backend is honored.
func registry() *gache.Cache[map[string]*Record] {
	cacherOnce.Do(func() {
		cacher = gache.New[map[string]*Record](
			&gache.Options{
				Path:       where.History(),
				FileSystem: &filesystem.GacheFs{},
			},
		)
	})
	return cacher
}

// Get returns every record keyed by target.
func Get() (map[string]*Record, error) {
	cached, expired, err := registry().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// List returns every record, most recent first.
func List() ([]*Record, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(saved))
	for _, r := range saved {
		records = append(records, r)
	}

	slices.SortFunc(records, func(a, b *Record) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	return records, nil
}

// Save stores record, replacing an earlier one for the same target.
func Save(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}

	saved[record.Key()] = record
	return registry().Set(saved)
}

// Remove deletes the record of a target.
func Remove(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.Key())
	return registry().Set(saved)
}

// Clear deletes every record.
func Clear() error {
	return registry().Set(make(map[string]*Record))
}

// Search returns the records whose target fuzzily matches query, best match first.
func Search(query string) ([]*Record, error) {
	records, err := List()
	if err != nil {
		return nil, err
	}

	if query == "" {
		return records, nil
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Target.String()
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		return a.Distance - b.Distance
	})

	matches := make([]*Record, len(ranks))
	for i, rank := range ranks {
		matches[i] = records[rank.OriginalIndex]
	}
	return matches, nil
}
