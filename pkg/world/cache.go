// Package world maintains a 3D voxel cache built from decoded chunk
// packets: a block-keyed map for O(1) lookups and a chunk-keyed index of
// which block keys belong to which chunk, so unload is O(blocks touched)
// rather than a scan of the whole cache.
package world

import (
	"math"
	"sync"

	"github.com/StoreStation/vibebot/pkg/chunkcodec"
)

// worldBottomY is the lowest world height a section index 0 represents.
const worldBottomY int32 = -64

// BlockPos identifies a single cell by its absolute world coordinates.
type BlockPos struct {
	X, Y, Z int32
}

// ChunkPos identifies a chunk column by its chunk-grid coordinates
// (world coordinate / 16, floored).
type ChunkPos struct {
	X, Z int32
}

// Unloaded is the sentinel getBlock returns for any cell inside a chunk
// that has never been stored or has since been unloaded.
const Unloaded int32 = -1

// Cache is the client-side voxel world: every block state the client has
// observed, indexed for fast point lookups and fast chunk eviction.
//
// Invariant I2: the union of chunkBlocks' values always equals the key
// set of blockCache — every stored block belongs to exactly one tracked
// chunk, and unloading a chunk removes exactly the blocks it contributed.
type Cache struct {
	mu          sync.RWMutex
	blockCache  map[BlockPos]int32
	chunkBlocks map[ChunkPos][]BlockPos
	chunks      map[ChunkPos]*chunkcodec.Column
}

// NewCache returns an empty world cache.
func NewCache() *Cache {
	return &Cache{
		blockCache:  make(map[BlockPos]int32),
		chunkBlocks: make(map[ChunkPos][]BlockPos),
		chunks:      make(map[ChunkPos]*chunkcodec.Column),
	}
}

// StoreChunk decodes rawPayload with the chunk codec and, on success,
// replaces any existing record for (cx, cz) and fully re-indexes it.
func (c *Cache) StoreChunk(cx, cz int32, rawPayload []byte) error {
	col, err := chunkcodec.Decode(rawPayload)
	if err != nil {
		return err
	}

	cp := ChunkPos{cx, cz}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.unloadChunkLocked(cp)

	keys := make([]BlockPos, 0, len(col.Sections)*64)
	for si, sec := range col.Sections {
		baseY := worldBottomY + int32(si)*16
		for ly := int32(0); ly < 16; ly++ {
			for lz := int32(0); lz < 16; lz++ {
				for lx := int32(0); lx < 16; lx++ {
					state := sec.Blocks[(ly*16+lz)*16+lx]
					if isAirLike(state) {
						continue
					}
					bp := BlockPos{cx*16 + lx, baseY + ly, cz*16 + lz}
					c.blockCache[bp] = state
					keys = append(keys, bp)
				}
			}
		}
	}

	c.chunks[cp] = col
	c.chunkBlocks[cp] = keys
	return nil
}

// UnloadChunk removes the chunk record at (cx, cz) and every block key it
// contributed to blockCache.
func (c *Cache) UnloadChunk(cx, cz int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unloadChunkLocked(ChunkPos{cx, cz})
}

func (c *Cache) unloadChunkLocked(cp ChunkPos) {
	for _, bp := range c.chunkBlocks[cp] {
		delete(c.blockCache, bp)
	}
	delete(c.chunkBlocks, cp)
	delete(c.chunks, cp)
}

// ClearDistantChunks unloads every chunk whose Chebyshev chunk-coordinate
// distance from (centerX, centerZ) exceeds keepRange.
func (c *Cache) ClearDistantChunks(centerX, centerZ, keepRange int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []ChunkPos
	for cp := range c.chunks {
		if chebyshev(cp.X-centerX, cp.Z-centerZ) > keepRange {
			stale = append(stale, cp)
		}
	}
	for _, cp := range stale {
		c.unloadChunkLocked(cp)
	}
}

func chebyshev(dx, dz int32) int32 {
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// IsChunkLoaded reports whether (cx, cz) currently has a stored record.
func (c *Cache) IsChunkLoaded(cx, cz int32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.chunks[ChunkPos{cx, cz}]
	return ok
}

// GetBlock returns the stored state id at (x, y, z); Unloaded if the
// containing chunk has never been stored or has been unloaded; 0 if the
// chunk is loaded but the cell was empty (air was never indexed).
func (c *Cache) GetBlock(x, y, z int32) int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getBlockLocked(x, y, z)
}

func (c *Cache) getBlockLocked(x, y, z int32) int32 {
	cp := ChunkPos{floorDiv16(x), floorDiv16(z)}
	if _, ok := c.chunks[cp]; !ok {
		return Unloaded
	}
	if v, ok := c.blockCache[BlockPos{x, y, z}]; ok {
		return v
	}
	return AirState
}

// FloorBlockPos floors floating-point world coordinates to a cell.
func FloorBlockPos(x, y, z float64) BlockPos {
	return BlockPos{
		X: int32(math.Floor(x)),
		Y: int32(math.Floor(y)),
		Z: int32(math.Floor(z)),
	}
}

func floorDiv16(v int32) int32 {
	return v >> 4 // arithmetic shift is floor division for a power of two
}

// IsSolid reports whether an avatar AABB cannot occupy (x, y, z). In
// pathfinding mode, an unloaded cell is treated as passable so long-range
// planning can cross unmapped territory; otherwise unloaded cells fail
// closed (treated as solid).
func (c *Cache) IsSolid(x, y, z int32, pathfindingMode bool) bool {
	v := c.GetBlock(x, y, z)
	if v == Unloaded {
		return !pathfindingMode
	}
	return blockIsSolid(v)
}

// IsFluid reports whether (x, y, z) is a fluid cell. Unloaded cells are
// never considered fluid.
func (c *Cache) IsFluid(x, y, z int32) bool {
	v := c.GetBlock(x, y, z)
	if v == Unloaded {
		return false
	}
	return blockIsFluid(v)
}

// IsHazardous reports whether (x, y, z) should be rejected outright by the
// pathfinder (e.g. lava).
func (c *Cache) IsHazardous(x, y, z int32) bool {
	v := c.GetBlock(x, y, z)
	if v == Unloaded {
		return false
	}
	return blockIsHazardous(v)
}

// IsClimbable reports whether (x, y, z) is a ladder/vine-like cell.
func (c *Cache) IsClimbable(x, y, z int32) bool {
	v := c.GetBlock(x, y, z)
	if v == Unloaded {
		return false
	}
	return blockIsClimbable(v)
}

// IsWalkable reports whether an avatar can occupy (x, y, z): the cell
// itself must not be solid. Pathfinding mode treats unloaded cells as
// assumed walkable; otherwise they fail closed.
func (c *Cache) IsWalkable(x, y, z int32, pathfindingMode bool) bool {
	v := c.GetBlock(x, y, z)
	if v == Unloaded {
		return pathfindingMode
	}
	return !blockIsSolid(v)
}

// HasFloorSupport reports whether the cell at (x, y, z) would hold up a
// standing avatar above it (solid, fluid, or climbable). Used by the
// pathfinder to gate same-level moves: an open cell with nothing
// underneath is a fall waiting to happen, not a resting position.
func (c *Cache) HasFloorSupport(x, y, z int32, pathfindingMode bool) bool {
	v := c.GetBlock(x, y, z)
	if v == Unloaded {
		return pathfindingMode
	}
	return blockIsSolid(v) || blockIsFluid(v) || blockIsClimbable(v)
}

// CanJump reports whether an avatar standing with feet at (x, y, z) has
// room to step up: the cell one above feet and one above that must both
// be non-solid.
func (c *Cache) CanJump(x, y, z int32, pathfindingMode bool) bool {
	return c.IsWalkable(x, y+1, z, pathfindingMode) && c.IsWalkable(x, y+2, z, pathfindingMode)
}

// FindFloorBelow scans downward from y (exclusive) for the first solid
// cell within maxFall cells and returns the y coordinate of the cell
// directly above it (the floor an entity would land on), or Unloaded if
// no solid floor is found in range.
func (c *Cache) FindFloorBelow(x, y, z, maxFall int32, pathfindingMode bool) int32 {
	for fall := int32(1); fall <= maxFall; fall++ {
		cy := y - fall
		if c.IsSolid(x, cy, z, pathfindingMode) {
			return cy + 1
		}
	}
	return Unloaded
}

// GetMovementCost scores the cost of standing at (x, y, z): base 1.0,
// +2.0 if the feet cell is fluid, +1.5 if the cell below is fluid, +0.5
// if the 8-neighborhood at the same y has no solid block (a mild
// wall-hugging preference, since open ground is riskier to navigate).
func (c *Cache) GetMovementCost(x, y, z int32) float64 {
	cost := 1.0
	if c.IsFluid(x, y, z) {
		cost += 2.0
	}
	if c.IsFluid(x, y-1, z) {
		cost += 1.5
	}
	if !c.hasAdjacentSolid(x, y, z) {
		cost += 0.5
	}
	return cost
}

func (c *Cache) hasAdjacentSolid(x, y, z int32) bool {
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if c.IsSolid(x+dx, y, z+dz, false) {
				return true
			}
		}
	}
	return false
}
