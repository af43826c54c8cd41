package types

// Sanity limits applied while decoding, to prevent a malformed or hostile
// file from driving excessive allocation or unbounded recursion. These are
// defensive ceilings, not format-mandated values — the OneStore format
// itself imposes no hard caps on these counts.
const (
	// MaxFragmentsPerList bounds how many fragments a single file-node list
	// may chain through before decoding gives up.
	MaxFragmentsPerList = 1 << 16

	// MaxNodesPerFragment bounds how many file-nodes a single fragment body
	// may contain.
	MaxNodesPerFragment = 1 << 20

	// MaxPropertiesPerSet bounds cProperties in a single property set.
	MaxPropertiesPerSet = 1 << 16

	// MaxIDStreamCount bounds the count field of an object-space object
	// stream header (OIDs/OSIDs/ContextIDs).
	MaxIDStreamCount = 1 << 20

	// MaxGlobalIDTableEntries bounds the number of entries a single global ID
	// table may accumulate.
	MaxGlobalIDTableEntries = 1 << 20

	// MaxObjectTreeDepth bounds the recursion depth of the typed object tree
	// builder (component K), independent of the circular-reference guard.
	MaxObjectTreeDepth = 4096

	// MaxFileSize bounds the size of a file this decoder will mmap/buffer.
	MaxFileSize = 1 << 31 // 2 GiB
)
