package scene_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/gltfviewer/internal/asset"
	"github.com/Faultbox/gltfviewer/internal/asset/assettest"
	"github.com/Faultbox/gltfviewer/internal/engine/geometry"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu/gputest"
	"github.com/Faultbox/gltfviewer/internal/engine/scene"
)

func TestBuildTriangle(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	s, err := scene.Build(assettest.Triangle(), pool)
	require.NoError(t, err)

	require.Len(t, s.Records, 1)
	rec := s.Records[0]
	assert.Equal(t, int32(3), rec.VertexCount)
	assert.False(t, rec.HasIndices)
	assert.Zero(t, rec.IndexBuffer)
	assert.Equal(t, gpu.TopologyTriangles, rec.Topology)

	assert.Equal(t, assettest.TrianglePositions, dev.VertexData[rec.VertexBuffer])
	assert.Equal(t, gpu.PositionLayout, dev.Layouts[rec.VertexBuffer])
	assert.Equal(t, []string{"CreateVertexArray", "CreateVertexBuffer"}, dev.Ops())

	require.Len(t, s.Items, 1)
	assert.Equal(t, mgl32.Ident4(), s.Items[0].Model)
	assert.Equal(t, 3, s.Vertices())
	assert.Equal(t, 1, pool.Len())
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, s.Bounds.Max)
}

func TestBuildIndexed(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	s, err := scene.Build(assettest.IndexedQuad(), pool)
	require.NoError(t, err)

	rec := s.Records[0]
	assert.True(t, rec.HasIndices)
	assert.Equal(t, int32(6), rec.IndexCount)
	assert.Equal(t, int32(4), rec.VertexCount)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, dev.IndexData[rec.IndexBuffer])
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, rec.Color)
	assert.Equal(t, 6, s.Vertices())
}

func TestBuildRejectsInvalidDocument(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	doc := assettest.Triangle()
	doc.Accessors[0].BufferView = len(doc.BufferViews)

	s, err := scene.Build(doc, pool)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, asset.ErrInvalidDocument)
	assert.Empty(t, dev.Calls, "nothing may touch the device")
}

func TestBuildExtractionFailure(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	doc := assettest.Triangle()
	doc.Accessors[0].ComponentType = asset.ComponentShort

	_, err := scene.Build(doc, pool)
	assert.ErrorIs(t, err, geometry.ErrUnsupportedAccessor)
	var gerr *geometry.Error
	assert.True(t, errors.As(err, &gerr))
	assert.Zero(t, dev.Live())
}

func TestBuildRejectsIndexPastVertices(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	doc := assettest.IndexedQuad()
	// Last index of the second triangle, four vertices in the quad
	doc.Buffers[0].Data[48+5*2] = 0x28
	doc.Buffers[0].Data[48+5*2+1] = 0x23

	s, err := scene.Build(doc, pool)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, geometry.ErrOutOfRange)
	assert.Empty(t, dev.Ops())
}

func TestFailedBuildKeepsPreviousScene(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	first, err := scene.Build(assettest.Triangle(), pool)
	require.NoError(t, err)
	liveBefore := dev.Live()
	require.Equal(t, 2, liveBefore)

	dev.Fail = gputest.FailNth("CreateIndexBuffer", 1)
	_, err = scene.Build(assettest.IndexedQuad(), pool)
	require.Error(t, err)

	var derr *gpu.DeviceError
	assert.True(t, errors.As(err, &derr))

	// Old set still live and intact; the partial quad upload is gone
	assert.Equal(t, liveBefore, dev.Live())
	require.Equal(t, 1, pool.Len())
	assert.Same(t, first.Records[0], pool.Records()[0])
	assert.True(t, dev.VertexArrays[first.Records[0].VertexArray])
	assert.True(t, dev.Buffers[first.Records[0].VertexBuffer])
}

func TestFailedUploadRollsBackEarlierPrimitives(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	doc := assettest.Triangle()
	doc.Meshes = append(doc.Meshes, doc.Meshes[0])
	dev.Fail = gputest.FailNth("CreateVertexBuffer", 2)

	_, err := scene.Build(doc, pool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mesh 1 primitive 0")
	assert.Zero(t, dev.Live())
	assert.Zero(t, pool.Len())
}

func TestReleaseOrder(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	s, err := scene.Build(assettest.IndexedQuad(), pool)
	require.NoError(t, err)
	rec := *s.Records[0]

	dev.ResetCalls()
	pool.Release()

	assert.Equal(t, []gputest.Call{
		{Op: "DeleteBuffer", Handle: rec.IndexBuffer},
		{Op: "DeleteBuffer", Handle: rec.VertexBuffer},
		{Op: "DeleteVertexArray", Handle: rec.VertexArray},
	}, dev.Deletes())
	assert.Zero(t, dev.Live())
	assert.Zero(t, pool.Len())
}

func TestReplaceReleasesPrevious(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	first, err := scene.Build(assettest.Triangle(), pool)
	require.NoError(t, err)
	oldVAO := first.Records[0].VertexArray

	second, err := scene.Build(assettest.IndexedQuad(), pool)
	require.NoError(t, err)

	assert.False(t, dev.VertexArrays[oldVAO])
	assert.Equal(t, 3, dev.Live())
	assert.Equal(t, second.Records, pool.Records())
}

func TestNodeInstancing(t *testing.T) {
	doc := assettest.Triangle()
	left := assettest.Node(0)
	left.Translation = mgl32.Vec3{-5, 0, 0}
	right := assettest.Node(0)
	right.Translation = mgl32.Vec3{5, 0, 0}
	doc.Nodes = []asset.Node{assettest.Node(-1, 1, 2), left, right}

	s, err := scene.Build(doc, scene.NewResourcePool(gputest.New()))
	require.NoError(t, err)

	require.Len(t, s.Records, 1)
	require.Len(t, s.Items, 2)
	assert.Same(t, s.Items[0].Record, s.Items[1].Record)
	assert.Equal(t, mgl32.Translate3D(-5, 0, 0), s.Items[0].Model)
	assert.Equal(t, mgl32.Translate3D(5, 0, 0), s.Items[1].Model)

	assert.InDelta(t, -5, s.Bounds.Min.X(), 1e-5)
	assert.InDelta(t, 6, s.Bounds.Max.X(), 1e-5)
}

func TestUnplacedMeshesDrawnAtOrigin(t *testing.T) {
	doc := assettest.Triangle()
	doc.Nodes[0].Mesh = -1

	s, err := scene.Build(doc, scene.NewResourcePool(gputest.New()))
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, mgl32.Ident4(), s.Items[0].Model)
}

func TestEmptyPrimitiveSkipped(t *testing.T) {
	dev := gputest.New()
	pool := scene.NewResourcePool(dev)

	records, err := pool.Upload([]*geometry.Primitive{
		{Mesh: 0, Index: 0},
		{Mesh: 0, Index: 1, Positions: assettest.TrianglePositions},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Primitive)

	pool.Discard(records)
	assert.Zero(t, dev.Live())
}
