package bubblegum

import "github.com/pkg/errors"

var (
	ErrInvalidMaxDepth       = errors.New("invalid max depth")
	ErrUnsupportedTreeConfig = errors.New("unsupported max depth and buffer size combination")
)

// MaxTreeDepth is the deepest tree the account compression program supports.
const MaxTreeDepth = 30

type treeSize struct {
	maxDepth      uint32
	maxBufferSize uint32
}

// Combinations the account compression program can allocate a concurrent
// merkle tree for.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/account-compression/programs/account-compression/src/state/concurrent_merkle_tree_header.rs
var supportedTreeSizes = map[treeSize]struct{}{
	{3, 8}:     {},
	{5, 8}:     {},
	{14, 64}:   {},
	{14, 256}:  {},
	{14, 1024}: {},
	{14, 2048}: {},
	{15, 64}:   {},
	{16, 64}:   {},
	{17, 64}:   {},
	{18, 64}:   {},
	{19, 64}:   {},
	{20, 64}:   {},
	{20, 256}:  {},
	{20, 1024}: {},
	{20, 2048}: {},
	{24, 64}:   {},
	{24, 256}:  {},
	{24, 512}:  {},
	{24, 1024}: {},
	{24, 2048}: {},
	{26, 512}:  {},
	{26, 1024}: {},
	{26, 2048}: {},
	{30, 512}:  {},
	{30, 1024}: {},
	{30, 2048}: {},
}

// ValidateTreeSize checks that a tree with the given depth and change log
// buffer size can be created.
func ValidateTreeSize(maxDepth int32, maxBufferSize uint32) error {
	if maxDepth <= 0 {
		return errors.Wrapf(ErrInvalidMaxDepth, "%d", maxDepth)
	}
	if maxBufferSize == 0 || maxBufferSize&(maxBufferSize-1) != 0 {
		return errors.Wrapf(ErrUnsupportedTreeConfig, "buffer size %d is not a power of two", maxBufferSize)
	}

	if _, ok := supportedTreeSizes[treeSize{uint32(maxDepth), maxBufferSize}]; !ok {
		return errors.Wrapf(ErrUnsupportedTreeConfig, "depth=%d buffer=%d", maxDepth, maxBufferSize)
	}
	return nil
}
