package volume

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rebuild(t *testing.T, byID map[int]Serializable, id int) Node {
	t.Helper()
	rec, ok := byID[id]
	require.True(t, ok, "missing id %d", id)

	n := Node{PositionWS: rec.PositionWS, ScaleWS: rec.ScaleWS}
	for _, cid := range rec.ChildIDs {
		n.Children = append(n.Children, rebuild(t, byID, cid))
	}
	return n
}

func TestFlatten_ContiguousIDs(t *testing.T) {
	for _, start := range []int{0, 5, 100} {
		root := Generate(unitRoot, 2)
		recs := Flatten(root, start)

		require.Len(t, recs, Count(2))
		for i, r := range recs {
			assert.Equal(t, start+i, r.ID)
		}
	}
}

func TestFlatten_PreOrderNumbering(t *testing.T) {
	recs := Flatten(Generate(unitRoot, 2), 0)

	// Root, then child 0 and its eight children, then child 1.
	assert.Equal(t, []int{1, 10, 19, 28, 37, 46, 55, 64}, recs[0].ChildIDs)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9}, recs[1].ChildIDs)
	assert.Equal(t, mgl32.Vec3{-2, -2, -2}, recs[1].PositionWS)
	assert.Equal(t, mgl32.Vec3{-3, -3, -3}, recs[2].PositionWS)
	assert.Equal(t, mgl32.Vec3{2, -2, -2}, recs[10].PositionWS)
	assert.Equal(t, 1, recs[9].ParentID)
	assert.Equal(t, 0, recs[10].ParentID)
}

func TestFlatten_RoundTripTopology(t *testing.T) {
	root := Generate(unitRoot, 3)
	recs := Flatten(root, 7)

	require.NoError(t, Validate(recs))

	byID := make(map[int]Serializable, len(recs))
	for _, r := range recs {
		byID[r.ID] = r
	}
	roots := FilterNoParent(recs)
	require.Len(t, roots, 1)

	assert.Equal(t, root, rebuild(t, byID, roots[0].ID))
}

func TestFlatten_Hierarchy(t *testing.T) {
	tests := []struct {
		name       string
		opts       FlattenOptions
		wantRoots  int
		wantLeaves int
	}{
		{name: "Linked", opts: FlattenOptions{}, wantRoots: 1, wantLeaves: 8},
		{name: "Legacy", opts: FlattenOptions{Legacy: true}, wantRoots: 9, wantLeaves: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := FlattenWithOptions(Generate(unitRoot, 1), 0, tt.opts)

			require.Len(t, recs, 9)
			assert.Len(t, FilterNoParent(recs), tt.wantRoots)
			assert.Len(t, FilterNoChildren(recs), tt.wantLeaves)
			assert.NoError(t, Validate(recs))
		})
	}
}

func TestFlatten_DepthZero(t *testing.T) {
	recs := Flatten(Generate(unitRoot, 0), 0)

	require.Len(t, recs, 1)
	assert.Equal(t, NoParent, recs[0].ParentID)
	assert.Empty(t, recs[0].ChildIDs)
}

func TestMerge(t *testing.T) {
	auto := Flatten(Generate(unitRoot, 1), 0)
	manual := []Node{
		{PositionWS: mgl32.Vec3{20, 0, 0}, ScaleWS: mgl32.Vec3{2, 2, 2}},
		{PositionWS: mgl32.Vec3{-20, 0, 0}, ScaleWS: mgl32.Vec3{1, 3, 1}},
	}

	merged := Merge(auto, manual)

	require.Len(t, merged, len(auto)+len(manual))
	assert.Equal(t, auto, merged[:len(auto)])

	seen := make(map[int]bool)
	for _, v := range merged {
		assert.False(t, seen[v.ID], "duplicate id %d", v.ID)
		seen[v.ID] = true
	}
	for _, v := range merged[len(auto):] {
		assert.GreaterOrEqual(t, v.ID, len(auto))
		assert.True(t, v.IsRoot())
		assert.True(t, v.IsLeaf())
	}
	assert.Equal(t, 9, merged[9].ID)
	assert.Equal(t, mgl32.Vec3{20, 0, 0}, merged[9].PositionWS)
	assert.Equal(t, 10, merged[10].ID)
	assert.NoError(t, Validate(merged))
	assert.Len(t, FilterNoParent(merged), 3)
}

func TestMerge_EmptyAuto(t *testing.T) {
	merged := Merge(nil, []Node{{ScaleWS: mgl32.Vec3{1, 1, 1}}})

	require.Len(t, merged, 1)
	assert.Equal(t, 0, merged[0].ID)
}

func TestFilters_OnDepthOneExport(t *testing.T) {
	recs := Flatten(Generate(unitRoot, 1), 0)

	roots := FilterNoParent(recs)
	leaves := FilterNoChildren(recs)

	require.Len(t, roots, 1)
	assert.Equal(t, 0, roots[0].ID)
	require.Len(t, leaves, 8)
	for i, l := range leaves {
		assert.Equal(t, i+1, l.ID)
	}
}

func TestValidate_ReportsBrokenLinks(t *testing.T) {
	recs := []Serializable{
		{ID: 0, ParentID: NoParent, ChildIDs: []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{ID: 1, ParentID: 0},
		{ID: 1, ParentID: 0},
		{ID: 9, ParentID: 42},
		{ID: -1, ParentID: NoParent, ChildIDs: []int{3}},
	}

	err := Validate(recs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "parent 42 not found")
	assert.Contains(t, err.Error(), "negative id")
	assert.Contains(t, err.Error(), "child 2 not found")
	assert.Contains(t, err.Error(), "has 1 children")
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "auto", want: Auto},
		{in: " Manual ", want: Manual},
		{in: "HYBRID", want: Hybrid},
		{in: "octree", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
	assert.Equal(t, "Mode(9)", Mode(9).String())
	assert.False(t, Mode(9).Valid())
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	m, err := ParseMode(s)
	require.NoError(t, err)
	return m
}
