// Package store persists facts and answers the neighbor and range queries
// the traverser needs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/factlog/pkg/fact"
)

// ErrNotFound is returned when a stored fact cannot be located by pk.
var ErrNotFound = errors.New("store: fact not found")

// Persistence defines the persistence contract for facts.
type Persistence interface {
	// Antecedent returns the stored fact right before f, or nil.
	Antecedent(ctx context.Context, f *fact.Fact) (*fact.Fact, error)
	// Subsequent returns the stored fact right after f, or nil.
	Subsequent(ctx context.Context, f *fact.Fact) (*fact.Fact, error)
	// Surrounding returns the stored facts whose interval holds t.
	Surrounding(ctx context.Context, t time.Time, inclusive bool) ([]*fact.Fact, error)
	// GetAll runs a range query.
	GetAll(ctx context.Context, q fact.Query) ([]*fact.Fact, error)
	// Get returns the stored fact with the given pk.
	Get(ctx context.Context, pk int64) (*fact.Fact, error)
	// Now is the store's notion of the current time.
	Now() time.Time
	// Save writes facts, assigning pks to new ones, and erases stored facts
	// marked deleted. It returns the facts as stored.
	Save(ctx context.Context, facts []*fact.Fact) ([]*fact.Fact, error)
	// Watch streams change notifications until ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return NewDisk(cfg.BasePath()), nil
}

// Disk keeps one JSON file per fact, sharded by start date.
type Disk struct {
	d        *diskv.Diskv
	basePath string
	now      func() time.Time

	// mu serializes Save so pk assignment cannot race.
	mu sync.Mutex
}

// NewDisk opens, without touching the disk yet, a store rooted at basePath.
func NewDisk(basePath string) *Disk {
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		now:      time.Now,
	}
}

func (p *Disk) read(key string) (*fact.Fact, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	f := &fact.Fact{}
	if err := json.Unmarshal(val, f); err != nil {
		return nil, err
	}
	pk, err := pkFromKey(key)
	if err != nil {
		return nil, err
	}
	f.PK = pk
	return f, nil
}

// snapshot reads every stored fact along with a pk to key index. Unreadable
// files are reported and skipped.
func (p *Disk) snapshot(ctx context.Context) ([]*fact.Fact, map[int64]string, error) {
	all := make([]*fact.Fact, 0)
	keys := make(map[int64]string)
	for key := range p.d.Keys(ctx.Done()) {
		f, err := p.read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, f)
		keys[f.PK] = key
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	slices.SortFunc(all, fact.Compare)
	return all, keys, nil
}

func (p *Disk) Antecedent(ctx context.Context, f *fact.Fact) (*fact.Fact, error) {
	all, _, err := p.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: antecedent: %w", err)
	}
	return antecedent(all, f), nil
}

func (p *Disk) Subsequent(ctx context.Context, f *fact.Fact) (*fact.Fact, error) {
	all, _, err := p.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: subsequent: %w", err)
	}
	return subsequent(all, f), nil
}

func (p *Disk) Surrounding(ctx context.Context, t time.Time, inclusive bool) ([]*fact.Fact, error) {
	all, _, err := p.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: surrounding: %w", err)
	}
	return surrounding(all, t, inclusive), nil
}

func (p *Disk) GetAll(ctx context.Context, q fact.Query) ([]*fact.Fact, error) {
	all, _, err := p.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: get all: %w", err)
	}
	return query(all, q), nil
}

func (p *Disk) Get(ctx context.Context, pk int64) (*fact.Fact, error) {
	_, keys, err := p.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: get: %w", err)
	}
	key, ok := keys[pk]
	if !ok {
		return nil, fmt.Errorf("%w: #%d", ErrNotFound, pk)
	}
	return p.read(key)
}

func (p *Disk) Now() time.Time {
	return p.now()
}

func (p *Disk) Save(ctx context.Context, facts []*fact.Fact) ([]*fact.Fact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, keys, err := p.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: save: %w", err)
	}
	var maxPK int64
	for pk := range keys {
		maxPK = max(maxPK, pk)
	}

	saved := make([]*fact.Fact, 0, len(facts))
	for _, f := range facts {
		old, stored := keys[f.PK]
		if f.Deleted {
			if stored {
				if err := p.d.Erase(old); err != nil {
					return saved, fmt.Errorf("store: erase #%d: %w", f.PK, err)
				}
			}
			continue
		}
		out := clean(f)
		if !stored {
			maxPK++
			out.PK = maxPK
		}
		key := toKey(out)
		if stored && old != key {
			if err := p.d.Erase(old); err != nil {
				return saved, fmt.Errorf("store: move #%d: %w", f.PK, err)
			}
		}
		data, err := json.Marshal(out)
		if err != nil {
			return saved, fmt.Errorf("store: encode #%d: %w", out.PK, err)
		}
		if err := p.d.Write(key, data); err != nil {
			return saved, fmt.Errorf("store: write #%d: %w", out.PK, err)
		}
		saved = append(saved, out)
	}
	return saved, nil
}

// clean strips session state off f.
func clean(f *fact.Fact) *fact.Fact {
	return &fact.Fact{
		PK:          f.PK,
		Start:       f.Start,
		End:         f.End,
		Activity:    f.Activity,
		Category:    f.Category,
		Tags:        slices.Clone(f.Tags),
		Description: f.Description,
	}
}

const (
	layoutISO = "2006-01-02"
	keyPrefix = "fact"
)

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `fact-date-pk`
func toKey(f *fact.Fact) string {
	return fmt.Sprintf("%s-%s-%d", keyPrefix, f.Start.UTC().Format(layoutISO), f.PK)
}

func pkFromKey(key string) (int64, error) {
	pk, err := strconv.ParseInt(keyToPathTransform(key).FileName, 10, 64)
	if err != nil || pk <= 0 {
		return 0, fmt.Errorf("store: malformed key %q", key)
	}
	return pk, nil
}
