package cfg

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlab/haruspex/internal/bytecode"
)

func decode(t *testing.T, body []byte) *bytecode.Stream {
	t.Helper()
	s, err := bytecode.Decode(body)
	require.NoError(t, err)
	return s
}

func branch(op byte, at, target int) []byte {
	rel := target - at
	return []byte{op, byte(rel >> 8), byte(rel)}
}

func buildGraph(t *testing.T, body []byte, regions []bytecode.ExceptionRegion) *Graph {
	t.Helper()
	s := decode(t, body)
	blocks, err := Partition(s, regions)
	require.NoError(t, err)
	g, err := Build(s, blocks, regions)
	require.NoError(t, err)
	return g
}

// 0: iload_0; 1: ifeq -> 6; 4: iconst_1; 5: ireturn; 6: iconst_0; 7: ireturn
var bodySingleIf = append(append([]byte{0x1a}, branch(0x99, 1, 6)...),
	0x04, 0xac, 0x03, 0xac)

// 0: iload_0; 1: ifeq -> 9; 4..8: nop; 9: iload_1; 10: ifeq -> 4; 13: return
// The {4..8, 9..10} loop has two entries, so it is irreducible.
var bodyIrreducible = func() []byte {
	b := append([]byte{0x1a}, branch(0x99, 1, 9)...)
	b = append(b, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1b)
	b = append(b, branch(0x99, 10, 4)...)
	return append(b, 0xb1)
}()

func TestPartitionSingleIf(t *testing.T) {
	s := decode(t, bodySingleIf)
	blocks, err := Partition(s, nil)
	require.NoError(t, err)

	require.Len(t, blocks, 3)
	assert.Equal(t, 0, blocks[0].ID)
	assert.Equal(t, 1, blocks[0].End)
	assert.Equal(t, []int{0, 1}, blocks[0].Offsets)
	assert.Equal(t, 4, blocks[1].ID)
	assert.Equal(t, 5, blocks[1].End)
	assert.Equal(t, 6, blocks[2].ID)
	assert.Equal(t, 7, blocks[2].End)
}

func TestPartitionHandlerIsLeader(t *testing.T) {
	// 0: iconst_0; 1: ireturn; 2: iconst_1; 3: ireturn
	body := []byte{0x03, 0xac, 0x04, 0xac}
	s := decode(t, body)
	regions := []bytecode.ExceptionRegion{{StartPC: 0, EndPC: 2, HandlerPC: 2}}

	blocks, err := Partition(s, regions)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, 2, blocks[1].ID)
}

func TestPartitionTargetPastBody(t *testing.T) {
	body := append(branch(0x99, 0, 100), 0xb1)
	_, err := Partition(decode(t, body), nil)
	assert.ErrorIs(t, err, bytecode.ErrMalformed)
}

func TestPartitionMidInstructionTarget(t *testing.T) {
	// ifeq targets offset 4, which is bipush's operand byte.
	body := append(branch(0x99, 0, 4), 0x10, 0x07, 0xb1)
	_, err := Partition(decode(t, body), nil)
	assert.ErrorIs(t, err, bytecode.ErrUnresolvedTarget)
}

func TestBuildConditionalEdges(t *testing.T) {
	g := buildGraph(t, bodySingleIf, nil)

	require.Len(t, g.Edges, 2)
	out := g.Out(0)
	require.Len(t, out, 2)
	assert.Equal(t, EdgeCondTrue, out[0].Kind)
	assert.Equal(t, 6, out[0].To)
	assert.Equal(t, EdgeCondFalse, out[1].Kind)
	assert.Equal(t, 4, out[1].To)
	assert.Empty(t, g.Unreachable)
}

func TestBuildFallsOffEnd(t *testing.T) {
	s := decode(t, []byte{0x00}) // lone nop
	blocks, err := Partition(s, nil)
	require.NoError(t, err)
	_, err = Build(s, blocks, nil)
	assert.ErrorIs(t, err, bytecode.ErrMalformed)
}

func TestBuildSwitchEdgesDeduplicated(t *testing.T) {
	// tableswitch at 1 with cases [28, 28, 30] and default 30.
	body := []byte{0x1a, 0xaa, 0x00, 0x00}
	rel32 := func(target int) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(target-1)) // relative to pc 1
		body = append(body, b[:]...)
	}
	rel32(30) // default
	body = append(body, 0, 0, 0, 0)
	body = append(body, 0, 0, 0, 2) // low 0, high 2
	rel32(28)
	rel32(28)
	rel32(30)
	body = append(body, 0x03, 0xac, 0x04, 0xac)

	g := buildGraph(t, body, nil)

	out := g.Out(0)
	require.Len(t, out, 2, "shared targets collapse to one edge each")
	assert.Equal(t, 28, out[0].To)
	assert.Equal(t, 0, out[0].Case)
	assert.Equal(t, 30, out[1].To)
	assert.Equal(t, 2, out[1].Case, "attributed to the first case reaching the target")
}

func TestBuildOverlappingRegionEdges(t *testing.T) {
	// 0: iconst_0; 1: ireturn; 2: iconst_1; 3: ireturn; 4: iconst_1; 5: ireturn
	body := []byte{0x03, 0xac, 0x04, 0xac, 0x04, 0xac}
	regions := []bytecode.ExceptionRegion{
		{StartPC: 0, EndPC: 2, HandlerPC: 2, CatchType: "java/io/IOException"},
		{StartPC: 0, EndPC: 2, HandlerPC: 4},
	}
	g := buildGraph(t, body, regions)

	out := g.Out(0)
	require.Len(t, out, 2, "one edge per region, never deduplicated")
	assert.Equal(t, EdgeException, out[0].Kind)
	assert.Equal(t, 2, out[0].To)
	assert.Equal(t, EdgeException, out[1].Kind)
	assert.Equal(t, 4, out[1].To)

	nodes, edges := g.Counts(false)
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 0, edges, "Counts(false) excludes exception edges")
	_, withExc := g.Counts(true)
	assert.Equal(t, 2, withExc)

	assert.Equal(t, 3, g.Components(), "handlers are separate components without their exception edges")
}

func TestUnreachableBlocks(t *testing.T) {
	// 0: return; 1: goto -> 4; 4: return
	body := append([]byte{0xb1}, branch(0xa7, 1, 4)...)
	body = append(body, 0xb1)
	g := buildGraph(t, body, nil)
	assert.Equal(t, []int{1, 4}, g.Unreachable)
}

func TestDominatorsDiamond(t *testing.T) {
	// 0: iload_0; 1: ifeq -> 8; 4: iconst_1; 5: goto -> 10;
	// 8: iconst_0; 9: nop; 10: istore_1; 11: return
	body := append([]byte{0x1a}, branch(0x99, 1, 8)...)
	body = append(body, 0x04)
	body = append(body, branch(0xa7, 5, 10)...)
	body = append(body, 0x03, 0x00, 0x3c, 0xb1)

	g := buildGraph(t, body, nil)
	idom := Dominators(g)

	assert.Equal(t, 0, idom[4])
	assert.Equal(t, 0, idom[8])
	assert.Equal(t, 0, idom[10], "join point is dominated by the fork, not an arm")

	assert.True(t, StrictlyDominates(idom, 0, 10))
	assert.False(t, StrictlyDominates(idom, 4, 10))
	assert.False(t, StrictlyDominates(idom, 0, 0))

	pdom := PostDominators(g)
	assert.True(t, StrictlyDominates(pdom, 10, 0), "join post-dominates the fork")
	assert.False(t, StrictlyDominates(pdom, 4, 0))
}

func TestReduceStructured(t *testing.T) {
	r := Reduce(buildGraph(t, bodySingleIf, nil))
	assert.Equal(t, 1, r.Essential())

	// A simple loop is also fully reducible.
	// 0: iload_0; 1: ifeq -> 10; 4: iinc; 7: goto -> 0; 10: return
	body := append([]byte{0x1a}, branch(0x99, 1, 10)...)
	body = append(body, 0x84, 0x00, 0x01)
	body = append(body, branch(0xa7, 7, 0)...)
	body = append(body, 0xb1)
	r = Reduce(buildGraph(t, body, nil))
	assert.Equal(t, 1, r.Essential())
}

func TestReduceIrreducible(t *testing.T) {
	g := buildGraph(t, bodyIrreducible, nil)
	r := Reduce(g)
	assert.Equal(t, 3, r.Essential(), "a two-entry loop cannot be collapsed")
}
