package export

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gekko3d/occlusion/bake/occluder"
	"github.com/gekko3d/occlusion/bake/scene"
	"github.com/gekko3d/occlusion/bake/volume"
)

const (
	volumeMagic   = "OCVL"
	occluderMagic = "OCOC"

	// HeaderSize is magic, version and record count.
	HeaderSize = 12

	// VolumeRecordSize is the fixed size of one volume record:
	//
	//	0   id, parent id (int32), child count (uint32), pad
	//	16  position xyz, pad
	//	32  scale xyz, pad
	//	48  8 child ids (int32), -1 when absent
	VolumeRecordSize = 80

	// occluderFixedSize precedes the mesh ref of every occluder record:
	// position xyz, rotation xyzw, scale xyz, mesh ref length (uint32).
	occluderFixedSize = 44
)

var (
	ErrBadMagic   = errors.New("bad magic")
	ErrTruncated  = errors.New("truncated data")
	ErrChildCount = errors.New("volume has more than 8 children")
)

func putHeader(buf []byte, magic string, count int) {
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(count))
}

func readHeader(data []byte, magic string) (int, error) {
	if len(data) < HeaderSize {
		return 0, errors.Wrap(ErrTruncated, "header")
	}
	if string(data[0:4]) != magic {
		return 0, errors.Wrapf(ErrBadMagic, "want %q, got %q", magic, data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != FormatVersion {
		return 0, errors.Wrapf(ErrUnsupportedVersion, "got %d", v)
	}
	return int(binary.LittleEndian.Uint32(data[8:12])), nil
}

func putVec3(buf []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Z()))
}

func getVec3(buf []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

// EncodeVolumes packs vols into the fixed-size binary layout.
func EncodeVolumes(vols []volume.Serializable) ([]byte, error) {
	out := make([]byte, HeaderSize+len(vols)*VolumeRecordSize)
	putHeader(out, volumeMagic, len(vols))

	for i, v := range vols {
		if len(v.ChildIDs) > volume.ChildCount {
			return nil, errors.Wrapf(ErrChildCount, "volume %d", v.ID)
		}
		buf := out[HeaderSize+i*VolumeRecordSize : HeaderSize+(i+1)*VolumeRecordSize]

		binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(v.ID)))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(v.ParentID)))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(len(v.ChildIDs)))
		putVec3(buf[16:28], v.PositionWS)
		putVec3(buf[32:44], v.ScaleWS)
		for c := 0; c < volume.ChildCount; c++ {
			id := int32(-1)
			if c < len(v.ChildIDs) {
				id = int32(v.ChildIDs[c])
			}
			binary.LittleEndian.PutUint32(buf[48+c*4:52+c*4], uint32(id))
		}
	}
	return out, nil
}

func DecodeVolumes(data []byte) ([]volume.Serializable, error) {
	n, err := readHeader(data, volumeMagic)
	if err != nil {
		return nil, err
	}
	if n > (len(data)-HeaderSize)/VolumeRecordSize {
		return nil, errors.Wrapf(ErrTruncated, "%d volumes need %d bytes, got %d", n, HeaderSize+n*VolumeRecordSize, len(data))
	}

	vols := make([]volume.Serializable, n)
	for i := range vols {
		buf := data[HeaderSize+i*VolumeRecordSize : HeaderSize+(i+1)*VolumeRecordSize]

		childCount := int(binary.LittleEndian.Uint32(buf[8:12]))
		if childCount > volume.ChildCount {
			return nil, errors.Wrapf(ErrChildCount, "record %d", i)
		}
		v := volume.Serializable{
			ID:         int(int32(binary.LittleEndian.Uint32(buf[0:4]))),
			ParentID:   int(int32(binary.LittleEndian.Uint32(buf[4:8]))),
			PositionWS: getVec3(buf[16:28]),
			ScaleWS:    getVec3(buf[32:44]),
		}
		for c := 0; c < childCount; c++ {
			v.ChildIDs = append(v.ChildIDs, int(int32(binary.LittleEndian.Uint32(buf[48+c*4:52+c*4]))))
		}
		vols[i] = v
	}
	return vols, nil
}

// EncodeOccluders packs recs; each record is the fixed part followed by
// the mesh ref bytes.
func EncodeOccluders(recs []occluder.Serializable) []byte {
	size := HeaderSize
	for _, r := range recs {
		size += occluderFixedSize + len(r.Mesh)
	}
	out := make([]byte, size)
	putHeader(out, occluderMagic, len(recs))

	off := HeaderSize
	for _, r := range recs {
		buf := out[off:]
		putVec3(buf[0:12], r.PositionWS)
		putVec3(buf[12:24], r.RotationWS.V)
		binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(r.RotationWS.W))
		putVec3(buf[28:40], r.ScaleWS)
		binary.LittleEndian.PutUint32(buf[40:44], uint32(len(r.Mesh)))
		copy(buf[occluderFixedSize:], r.Mesh)
		off += occluderFixedSize + len(r.Mesh)
	}
	return out
}

func DecodeOccluders(data []byte) ([]occluder.Serializable, error) {
	n, err := readHeader(data, occluderMagic)
	if err != nil {
		return nil, err
	}

	if maxRecs := (len(data) - HeaderSize) / occluderFixedSize; n > maxRecs {
		return nil, errors.Wrapf(ErrTruncated, "%d occluders need at least %d bytes, got %d", n, HeaderSize+n*occluderFixedSize, len(data))
	}

	recs := make([]occluder.Serializable, 0, n)
	off := HeaderSize
	for i := 0; i < n; i++ {
		if len(data)-off < occluderFixedSize {
			return nil, errors.Wrapf(ErrTruncated, "occluder %d", i)
		}
		buf := data[off:]
		meshLen := int(binary.LittleEndian.Uint32(buf[40:44]))
		if len(buf)-occluderFixedSize < meshLen {
			return nil, errors.Wrapf(ErrTruncated, "occluder %d mesh ref", i)
		}
		recs = append(recs, occluder.Serializable{
			PositionWS: getVec3(buf[0:12]),
			RotationWS: mgl32.Quat{
				V: getVec3(buf[12:24]),
				W: math.Float32frombits(binary.LittleEndian.Uint32(buf[24:28])),
			},
			ScaleWS: getVec3(buf[28:40]),
			Mesh:    scene.MeshRef(buf[occluderFixedSize : occluderFixedSize+meshLen]),
		})
		off += occluderFixedSize + meshLen
	}
	return recs, nil
}
