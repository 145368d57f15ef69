package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfviewer/internal/engine/geometry"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
	"github.com/Faultbox/gltfviewer/internal/logger"
)

// MeshRecord holds the device objects of one uploaded primitive.
// It is valid only while the ResourcePool that created it is alive and
// has not released it.
type MeshRecord struct {
	Mesh      int // source mesh index
	Primitive int // primitive index within the mesh

	VertexArray  gpu.Handle
	VertexBuffer gpu.Handle
	IndexBuffer  gpu.Handle // zero when HasIndices is false

	Topology    gpu.Topology
	VertexCount int32
	IndexCount  int32
	HasIndices  bool

	Color  mgl32.Vec4
	Bounds geometry.Bounds // object space
}

// ResourcePool owns the device buffers of the live scene.
type ResourcePool struct {
	dev     gpu.Device
	records []*MeshRecord
	log     *zap.Logger
}

// NewResourcePool creates an empty pool on dev.
func NewResourcePool(dev gpu.Device) *ResourcePool {
	return &ResourcePool{
		dev: dev,
		log: logger.Named("scene"),
	}
}

// Upload creates device objects for each primitive. The result is not
// live until passed to Replace. If any upload fails, everything created
// by this call is released and the error is returned; the live set is
// untouched.
func (p *ResourcePool) Upload(prims []*geometry.Primitive) ([]*MeshRecord, error) {
	records := make([]*MeshRecord, 0, len(prims))
	for _, prim := range prims {
		if prim.VertexCount() == 0 || (prim.HasIndices && prim.IndexCount() == 0) {
			p.log.Debug("skipping empty primitive", zap.Int("mesh", prim.Mesh), zap.Int("primitive", prim.Index))
			continue
		}
		rec, err := p.uploadOne(prim)
		if err != nil {
			p.releaseRecords(records)
			return nil, fmt.Errorf("upload mesh %d primitive %d: %w", prim.Mesh, prim.Index, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *ResourcePool) uploadOne(prim *geometry.Primitive) (*MeshRecord, error) {
	rec := &MeshRecord{
		Mesh:        prim.Mesh,
		Primitive:   prim.Index,
		Topology:    prim.Topology,
		VertexCount: int32(prim.VertexCount()),
		Color:       prim.Color,
		Bounds:      prim.Bounds,
	}

	vao, err := p.dev.CreateVertexArray()
	if err != nil {
		return nil, err
	}
	rec.VertexArray = vao

	vbo, err := p.dev.CreateVertexBuffer(vao, prim.Positions, gpu.PositionLayout)
	if err != nil {
		p.release(rec)
		return nil, err
	}
	rec.VertexBuffer = vbo

	if prim.HasIndices {
		ebo, err := p.dev.CreateIndexBuffer(vao, prim.Indices)
		if err != nil {
			p.release(rec)
			return nil, err
		}
		rec.IndexBuffer = ebo
		rec.IndexCount = int32(prim.IndexCount())
		rec.HasIndices = true
	}

	return rec, nil
}

// Replace makes records the live set and releases the previous one.
func (p *ResourcePool) Replace(records []*MeshRecord) {
	old := p.records
	p.records = records
	p.releaseRecords(old)
	p.log.Debug("resource set replaced", zap.Int("released", len(old)), zap.Int("live", len(records)))
}

// Discard releases records that were uploaded but never made live.
func (p *ResourcePool) Discard(records []*MeshRecord) {
	p.releaseRecords(records)
}

// Release destroys every live record.
func (p *ResourcePool) Release() {
	p.releaseRecords(p.records)
	p.records = nil
}

// Records returns the live records.
func (p *ResourcePool) Records() []*MeshRecord {
	return p.records
}

// Len returns the number of live records.
func (p *ResourcePool) Len() int {
	return len(p.records)
}

func (p *ResourcePool) releaseRecords(records []*MeshRecord) {
	for _, rec := range records {
		p.release(rec)
	}
}

// release frees one record: index buffer, then vertex buffer, then the
// vertex array that references them.
func (p *ResourcePool) release(rec *MeshRecord) {
	if rec.IndexBuffer != 0 {
		p.dev.DeleteBuffer(rec.IndexBuffer)
		rec.IndexBuffer = 0
	}
	if rec.VertexBuffer != 0 {
		p.dev.DeleteBuffer(rec.VertexBuffer)
		rec.VertexBuffer = 0
	}
	if rec.VertexArray != 0 {
		p.dev.DeleteVertexArray(rec.VertexArray)
		rec.VertexArray = 0
	}
	rec.HasIndices = false
}
