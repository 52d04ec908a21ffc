package graph

// BoardFieldName is the canonical name of the destination-board input on
// nodes that persist images.
const BoardFieldName = "board"

// outputCapableTypes is the closed set of node types known to produce
// artifact identifiers on completion.  Membership is static configuration,
// never inferred from the graph.
var outputCapableTypes = map[string]bool{
	"l2i":                  true,
	"flux_vae_decode":      true,
	"sd3_l2i":              true,
	"cogview4_l2i":         true,
	"save_image":           true,
	"img_nsfw":             true,
	"img_watermark":        true,
	"canny_edge_detection": true,
	"hed_edge_detection":   true,
}

// IsOutputCapable reports whether the node type belongs to the terminal,
// artifact-producing set.
func IsOutputCapable(nodeType string) bool {
	return outputCapableTypes[nodeType]
}

// OutputCapableTypes returns the terminal type set; the returned slice is a
// copy.
func OutputCapableTypes() []string {
	types := make([]string, 0, len(outputCapableTypes))
	for nodeType := range outputCapableTypes {
		types = append(types, nodeType)
	}
	return types
}
