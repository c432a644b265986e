// Package dedup derives the cache keys of many glTF documents and reports which
// resources the documents share. It answers "what would a keyed resource cache load
// once instead of many times" without fetching any bytes.
package dedup

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-cachekey/common"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/cachekey"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/gltf"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/sampler"

	"github.com/jmgilman/go/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Document is a cachekey.Document that can enumerate what it renders.
// *gltf.Document satisfies it.
type Document interface {
	cachekey.Document

	Primitives() []gltf.Primitive
	TextureInfos() []gltf.TextureInfo
}

// planner is the implementation of the Planner interface.
type planner struct {
	deriver cachekey.KeyDeriver
	logger  *zap.Logger
	workers int

	pool      worker.DynamicWorkerPool
	poolOnce  sync.Once
	closeOnce sync.Once
}

// Planner derives every resource key of a set of assets into an Inventory.
type Planner interface {
	// Plan derives the keys of every primitive attribute, index buffer, image and texture
	// of each asset. Assets are planned concurrently. A failing asset does not stop the
	// others: the returned Inventory holds every asset that succeeded and the error
	// aggregates the failures.
	//
	// Parameters:
	//   - ctx: cancels planning of assets not yet started
	//   - assets: the assets to plan; each Document must implement Document
	//
	// Returns:
	//   - *Inventory: the keys of every asset planned successfully
	//   - error: the combined per-asset errors, or the context error
	Plan(ctx context.Context, assets []cachekey.Asset) (*Inventory, error)

	// Close stops the planner's workers. Only the first call has an effect and the planner
	// must not be used afterwards.
	Close()
}

var _ Planner = &planner{}

// NewPlanner creates a new Planner with the specified options applied.
//
// Parameters:
//   - options: a variadic list of PlannerBuilderOption functions to configure the Planner
//
// Returns:
//   - Planner: the configured planner
func NewPlanner(options ...PlannerBuilderOption) Planner {
	p := &planner{
		deriver: cachekey.NewKeyDeriver(),
		logger:  zap.NewNop(),
		workers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(p)
	}
	return p
}

func (p *planner) Plan(ctx context.Context, assets []cachekey.Asset) (*Inventory, error) {
	p.poolOnce.Do(func() {
		p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	})

	inv := NewInventory()
	var (
		mu     sync.Mutex
		errs   error
		failed int
		wg     sync.WaitGroup
	)

	p.logger.Debug("planning assets", zap.Int("assets", len(assets)), zap.Int("workers", p.workers))
	start := time.Now()

	for i, asset := range assets {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		p.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: asset.Location,
			Do: func() (any, error) {
				defer wg.Done()
				if ctx.Err() != nil {
					return nil, nil
				}

				documentKey, entries, samplers, err := p.planAsset(asset)
				if err != nil {
					p.logger.Warn("asset skipped", zap.String("location", asset.Location), zap.Error(err))
					mu.Lock()
					errs = multierr.Append(errs, err)
					failed++
					mu.Unlock()
					return nil, err
				}

				inv.Add(documentKey, entries...)
				inv.AddSamplers(documentKey, samplers...)
				p.logger.Debug("asset planned",
					zap.String("document", documentKey),
					zap.Int("keys", len(entries)),
				)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}

	stats := inv.Stats()
	p.logger.Info("planning complete",
		zap.Int("assets", stats.Assets),
		zap.Int("failed", failed),
		zap.Int("keys", stats.Keys),
		zap.Int("shared", stats.SharedKeys),
		zap.Int("references", stats.References),
		zap.Int("samplers", stats.Samplers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return inv, errs
}

func (p *planner) Close() {
	p.closeOnce.Do(func() {
		if p.pool != nil {
			p.pool.Stop()
		}
	})
}

// planAsset derives every key of one asset and the GPU samplers its textures need.
func (p *planner) planAsset(asset cachekey.Asset) (string, []Entry, []*common.SamplerStagingData, error) {
	doc, ok := asset.Document.(Document)
	if !ok {
		return "", nil, nil, errors.WithContext(
			errors.New(errors.CodeInvalidInput, "asset document cannot enumerate its primitives"),
			"location", asset.Location,
		)
	}

	documentKey, err := p.deriver.DocumentKey(asset)
	if err != nil {
		return "", nil, nil, wrapAsset(err, asset)
	}

	var (
		entries  []Entry
		samplers []*common.SamplerStagingData
	)
	add := func(kind Kind, key string, err error) error {
		if err != nil {
			return wrapAsset(err, asset)
		}
		entries = append(entries, Entry{Key: key, Kind: kind})
		return nil
	}

	for _, prim := range doc.Primitives() {
		if err := p.planPrimitive(asset, prim, add); err != nil {
			return "", nil, nil, err
		}
	}

	for _, info := range doc.TextureInfos() {
		imageID, err := p.deriver.TextureImageID(asset, info.Index)
		if err != nil {
			return "", nil, nil, wrapAsset(err, asset)
		}
		imageKey, err := p.deriver.ImageKey(asset, imageID)
		if err := add(KindImage, imageKey, err); err != nil {
			return "", nil, nil, err
		}
		textureKey, err := p.deriver.TextureKey(asset, info)
		if err := add(KindTexture, textureKey, err); err != nil {
			return "", nil, nil, err
		}

		state, err := sampler.Resolve(doc, info)
		if err != nil {
			return "", nil, nil, wrapAsset(err, asset)
		}
		samplers = append(samplers, state.StagingData())
	}

	return documentKey, entries, samplers, nil
}

// planPrimitive derives the geometry keys of one primitive. Attributes decoded from a
// draco block are keyed by attribute id; the rest by the buffer view their accessor reads.
func (p *planner) planPrimitive(asset cachekey.Asset, prim gltf.Primitive, add func(Kind, string, error) error) error {
	draco := prim.Draco()

	for _, semantic := range sortedSemantics(prim.Attributes) {
		if draco != nil {
			if id, ok := draco.Attributes[semantic]; ok {
				key, err := p.deriver.DracoVertexBufferKey(asset, cachekey.DracoAttribute{BufferView: draco.BufferView, AttributeID: id})
				if err := add(KindDracoVertexBuffer, key, err); err != nil {
					return err
				}
				continue
			}
		}

		acc, err := asset.Document.Accessor(prim.Attributes[semantic])
		if err != nil {
			return wrapAsset(err, asset)
		}
		// Zero-filled and fully sparse accessors have no bytes to share.
		if acc.BufferView == nil {
			continue
		}
		key, err := p.deriver.VertexBufferKey(asset, *acc.BufferView)
		if err := add(KindVertexBuffer, key, err); err != nil {
			return err
		}
	}

	if prim.Indices == nil {
		return nil
	}
	if draco != nil {
		key, err := p.deriver.DracoIndexBufferKey(asset, draco.BufferView)
		return add(KindDracoIndexBuffer, key, err)
	}
	key, err := p.deriver.IndexBufferKey(asset, *prim.Indices)
	return add(KindIndexBuffer, key, err)
}

func wrapAsset(err error, asset cachekey.Asset) error {
	return errors.WithContext(
		errors.Wrapf(err, errors.GetCode(err), "planning %s", asset.Location),
		"location", asset.Location,
	)
}

func sortedSemantics(attributes map[string]int) []string {
	semantics := make([]string, 0, len(attributes))
	for s := range attributes {
		semantics = append(semantics, s)
	}
	slices.Sort(semantics)
	return semantics
}
