package export

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/occlusion/bake/bounds"
	"github.com/gekko3d/occlusion/bake/occluder"
	"github.com/gekko3d/occlusion/bake/volume"
)

func testVolumes() []volume.Serializable {
	root := volume.Generate(bounds.FromCenterSize(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{8, 8, 8}), 1)
	return volume.Merge(volume.Flatten(root, 0), []volume.Node{{
		PositionWS: mgl32.Vec3{20, 0, 0},
		ScaleWS:    mgl32.Vec3{4, 2, 4},
	}})
}

func testOccluders() []occluder.Serializable {
	return []occluder.Serializable{
		{
			PositionWS: mgl32.Vec3{1, 2, 3},
			RotationWS: mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0}),
			ScaleWS:    mgl32.Vec3{1, 1, 1},
			Mesh:       "6f1c2c1e-wall",
		},
		{
			PositionWS: mgl32.Vec3{-1, 0, 0},
			RotationWS: mgl32.QuatIdent(),
			ScaleWS:    mgl32.Vec3{2, 2, 2},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := Artifacts{
		Mode:      volume.Hybrid,
		Bounds:    bounds.FromCenterSize(mgl32.Vec3{}, mgl32.Vec3{8, 8, 8}),
		Volumes:   testVolumes(),
		Occluders: testOccluders(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, in))
	assert.Contains(t, buf.String(), `"mode": "hybrid"`)

	out, err := ReadJSON(&buf)
	require.NoError(t, err)

	in.Version = FormatVersion
	assert.Equal(t, in, out)
}

func TestJSON_EmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Artifacts{Mode: volume.Auto}))
	assert.Contains(t, buf.String(), `"volumes": []`)
	assert.Contains(t, buf.String(), `"occluders": []`)
}

func TestReadJSON_Errors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"version": 99, "mode": "auto"}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = ReadJSON(strings.NewReader(`{"version": 1, "mode": "sideways"}`))
	assert.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestWriteJSON_InvalidMode(t *testing.T) {
	err := WriteJSON(&bytes.Buffer{}, Artifacts{Mode: volume.Mode(7)})
	assert.Error(t, err)
}

func TestVolumesBinary(t *testing.T) {
	vols := testVolumes()
	data, err := EncodeVolumes(vols)
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+len(vols)*VolumeRecordSize)

	assert.Equal(t, "OCVL", string(data[0:4]))
	assert.Equal(t, uint32(len(vols)), binary.LittleEndian.Uint32(data[8:12]))

	// Root record: id 0, no parent, 8 children starting at 1.
	root := data[HeaderSize:]
	assert.Equal(t, int32(0), int32(binary.LittleEndian.Uint32(root[0:4])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(root[4:8])))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(root[8:12]))
	assert.Equal(t, int32(1), int32(binary.LittleEndian.Uint32(root[48:52])))

	// Leaf children slots are -1.
	leaf := data[HeaderSize+VolumeRecordSize:]
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(leaf[8:12]))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(leaf[48:52])))

	decoded, err := DecodeVolumes(data)
	require.NoError(t, err)
	assert.Equal(t, vols, decoded)
}

func TestVolumesBinary_Errors(t *testing.T) {
	_, err := EncodeVolumes([]volume.Serializable{{ChildIDs: make([]int, 9)}})
	assert.ErrorIs(t, err, ErrChildCount)

	data, err := EncodeVolumes(testVolumes())
	require.NoError(t, err)

	_, err = DecodeVolumes(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeVolumes(EncodeOccluders(nil))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = DecodeVolumes(data[:4])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestOccludersBinary(t *testing.T) {
	recs := testOccluders()
	data := EncodeOccluders(recs)

	assert.Len(t, data, HeaderSize+2*occluderFixedSize+len("6f1c2c1e-wall"))

	decoded, err := DecodeOccluders(data)
	require.NoError(t, err)
	assert.Equal(t, recs, decoded)

	_, err = DecodeOccluders(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestBinary_HeaderCountBeyondData(t *testing.T) {
	header := func(magic string, count uint32) []byte {
		buf := make([]byte, HeaderSize)
		copy(buf, magic)
		binary.LittleEndian.PutUint32(buf[4:8], FormatVersion)
		binary.LittleEndian.PutUint32(buf[8:12], count)
		return buf
	}

	_, err := DecodeOccluders(header(occluderMagic, 0x7fffffff))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeVolumes(header(volumeMagic, 0xffffffff))
	assert.ErrorIs(t, err, ErrTruncated)

	recs, err := DecodeOccluders(header(occluderMagic, 0))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
