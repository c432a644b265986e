package dedup

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-cachekey/common"
)

// Kind is the resource granularity a key was derived for.
type Kind string

const (
	KindVertexBuffer      Kind = "vertex-buffer"
	KindIndexBuffer       Kind = "index-buffer"
	KindDracoVertexBuffer Kind = "draco-vertex-buffer"
	KindDracoIndexBuffer  Kind = "draco-index-buffer"
	KindImage             Kind = "image"
	KindTexture           Kind = "texture"
)

// Kinds lists every Kind in report order.
var Kinds = []Kind{
	KindVertexBuffer,
	KindIndexBuffer,
	KindDracoVertexBuffer,
	KindDracoIndexBuffer,
	KindImage,
	KindTexture,
}

// Entry is one derived key together with its kind.
type Entry struct {
	Key  string
	Kind Kind
}

// Stats summarizes an Inventory.
type Stats struct {
	// Assets is the number of distinct documents that contributed keys.
	Assets int

	// Keys is the number of distinct keys.
	Keys int

	// SharedKeys is the number of keys used by more than one document.
	SharedKeys int

	// References is the total number of key derivations, counting repeats.
	// References - Keys is the number of loads a keyed cache saves.
	References int

	// ByKind is the number of distinct keys per kind.
	ByKind map[Kind]int

	// Samplers is the number of distinct GPU samplers the textures need. Texture keys
	// that only differ in glTF sampler fields with no GPU equivalent share one sampler.
	Samplers int
}

// Inventory records which documents use which resource keys.
// It is safe for concurrent use.
type Inventory struct {
	mu         sync.RWMutex
	uses       map[string]map[string]struct{}
	kinds      map[string]Kind
	assets     map[string]struct{}
	references int

	samplers     map[string]*common.SamplerStagingData
	samplerUsers map[string]map[string]struct{}
}

// NewInventory creates an empty Inventory.
func NewInventory() *Inventory {
	return &Inventory{
		uses:   make(map[string]map[string]struct{}),
		kinds:  make(map[string]Kind),
		assets: make(map[string]struct{}),

		samplers:     make(map[string]*common.SamplerStagingData),
		samplerUsers: make(map[string]map[string]struct{}),
	}
}

// Add records that the document identified by documentKey uses every entry.
// A key keeps the kind it was first recorded with.
//
// Parameters:
//   - documentKey: the key of the document the entries were derived from
//   - entries: the derived keys
func (inv *Inventory) Add(documentKey string, entries ...Entry) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.assets[documentKey] = struct{}{}
	for _, e := range entries {
		users, ok := inv.uses[e.Key]
		if !ok {
			users = make(map[string]struct{})
			inv.uses[e.Key] = users
			inv.kinds[e.Key] = e.Kind
		}
		users[documentKey] = struct{}{}
		inv.references++
	}
}

// AddSamplers records that the document identified by documentKey samples its textures
// with every staging data. Staging data is grouped by its Key.
//
// Parameters:
//   - documentKey: the key of the document the samplers were resolved from
//   - samplers: the resolved sampler staging data
func (inv *Inventory) AddSamplers(documentKey string, samplers ...*common.SamplerStagingData) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, s := range samplers {
		key := s.Key()
		users, ok := inv.samplerUsers[key]
		if !ok {
			users = make(map[string]struct{})
			inv.samplerUsers[key] = users
			inv.samplers[key] = s
		}
		users[documentKey] = struct{}{}
	}
}

// SamplerKeys returns the keys of every distinct GPU sampler, sorted.
func (inv *Inventory) SamplerKeys() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	keys := make([]string, 0, len(inv.samplers))
	for k := range inv.samplers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Sampler returns the staging data recorded under a sampler key and the sorted keys of
// the documents that use it.
func (inv *Inventory) Sampler(key string) (*common.SamplerStagingData, []string, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	s, ok := inv.samplers[key]
	if !ok {
		return nil, nil, false
	}
	return s, sortedSet(inv.samplerUsers[key]), true
}

// Uses returns the sorted keys of the documents that use key.
func (inv *Inventory) Uses(key string) []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return sortedSet(inv.uses[key])
}

// Kind returns the kind key was recorded with.
func (inv *Inventory) Kind(key string) (Kind, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	k, ok := inv.kinds[key]
	return k, ok
}

// Keys returns every recorded key, sorted.
func (inv *Inventory) Keys() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	keys := make([]string, 0, len(inv.uses))
	for k := range inv.uses {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Shared returns the sorted keys used by more than one document.
func (inv *Inventory) Shared() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var shared []string
	for k, users := range inv.uses {
		if len(users) > 1 {
			shared = append(shared, k)
		}
	}
	slices.Sort(shared)
	return shared
}

// Stats returns summary counts for the inventory.
func (inv *Inventory) Stats() Stats {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	stats := Stats{
		Assets:     len(inv.assets),
		Keys:       len(inv.uses),
		References: inv.references,
		ByKind:     make(map[Kind]int, len(Kinds)),
		Samplers:   len(inv.samplers),
	}
	for k, users := range inv.uses {
		if len(users) > 1 {
			stats.SharedKeys++
		}
		stats.ByKind[inv.kinds[k]]++
	}
	return stats
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
