package oit

// TileCounts computes the number of histogram tiles in each dimension for a
// given viewport resolution and tile size. Partial tiles at the right and
// bottom edges count as full tiles.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//   - tileSize: tile edge length in pixels
//
// Returns:
//   - tileCountX: number of tile columns
//   - tileCountY: number of tile rows
func TileCounts(width, height, tileSize uint32) (tileCountX, tileCountY uint32) {
	tileCountX = (width + tileSize - 1) / tileSize
	tileCountY = (height + tileSize - 1) / tileSize
	return
}

// HistogramBufferSize computes the byte size of the histogram storage buffer:
// one u32 counter per bin per tile.
//
// Parameters:
//   - tileCountX: number of tile columns
//   - tileCountY: number of tile rows
//   - numBins: depth bins per tile
//
// Returns:
//   - uint64: buffer size in bytes
func HistogramBufferSize(tileCountX, tileCountY, numBins uint32) uint64 {
	return uint64(tileCountX) * uint64(tileCountY) * uint64(numBins) * 4
}

// CDFDispatch computes the workgroup counts for the CDF build compute pass.
// Each workgroup processes one tile, with one invocation per bin, so the
// dispatch is one workgroup per tile.
//
// Parameters:
//   - tileCountX: number of tile columns
//   - tileCountY: number of tile rows
//
// Returns:
//   - [3]uint32: workgroup counts for the x, y, and z dimensions
func CDFDispatch(tileCountX, tileCountY uint32) [3]uint32 {
	return [3]uint32{tileCountX, tileCountY, 1}
}
