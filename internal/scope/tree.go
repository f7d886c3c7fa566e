package scope

import "fmt"

// NodeKind tags the level a tree node addresses.
type NodeKind string

// NodeKind constants.
const (
	NodeDevice  NodeKind = "device"
	NodeOutput  NodeKind = "output"
	NodeSegment NodeKind = "segment"
)

// TreeNode is one selectable entry in the scope tree.
type TreeNode struct {
	// ID is stable across snapshots: "dev:<port>", "out:<port>:<outputId>"
	// or "seg:<port>:<outputId>:<segmentId>".
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
	Name string   `json:"name"`
	// Scope is the canonical ref selecting this node.
	Scope Ref `json:"scope"`
	// DeviceType is set on device nodes and on merged single-output nodes.
	DeviceType DeviceType   `json:"device_type,omitempty"`
	State      ControlState `json:"state"`
	LedsCount  int          `json:"leds_count"`
	Children   []string     `json:"children,omitempty"`
}

// Tree is a flat arena of nodes keyed by id, with root ids in device order.
type Tree struct {
	Roots []string             `json:"roots"`
	Nodes map[string]*TreeNode `json:"nodes"`
}

// Node returns the node with the given id, if present.
func (t *Tree) Node(id string) (*TreeNode, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}

// DeviceNodeID returns the id of a device node.
func DeviceNodeID(port string) string { return "dev:" + port }

// OutputNodeID returns the id of an output node.
func OutputNodeID(port, outputID string) string {
	return fmt.Sprintf("out:%s:%s", port, outputID)
}

// SegmentNodeID returns the id of a segment node.
func SegmentNodeID(port, outputID, segmentID string) string {
	return fmt.Sprintf("seg:%s:%s:%s", port, outputID, segmentID)
}

// BuildTree projects the device list into the selection tree.
//
// A device with exactly one output collapses to a single node carrying
// the device's name and type but the output's identity and control
// state; its children are the output's segments. Segments of a
// multi-output device hang under their output node as usual.
func BuildTree(devices []Device) *Tree {
	t := &Tree{Nodes: make(map[string]*TreeNode)}
	for i := range devices {
		dev := &devices[i]
		if len(dev.Outputs) == 1 {
			t.Roots = append(t.Roots, buildMergedNode(t, dev))
			continue
		}

		devNode := &TreeNode{
			ID:         DeviceNodeID(dev.Port),
			Kind:       NodeDevice,
			Name:       deviceDisplayName(dev),
			Scope:      Ref{Port: dev.Port},
			DeviceType: dev.DeviceType,
			State:      ControlStateFromMode(dev.Mode),
			LedsCount:  dev.TotalLeds(),
		}
		for j := range dev.Outputs {
			devNode.Children = append(devNode.Children, buildOutputNode(t, dev, &dev.Outputs[j]))
		}
		t.Nodes[devNode.ID] = devNode
		t.Roots = append(t.Roots, devNode.ID)
	}
	return t
}

func buildMergedNode(t *Tree, dev *Device) string {
	out := &dev.Outputs[0]
	node := &TreeNode{
		ID:         OutputNodeID(dev.Port, out.ID),
		Kind:       NodeOutput,
		Name:       deviceDisplayName(dev),
		Scope:      Ref{Port: dev.Port, OutputID: out.ID},
		DeviceType: dev.DeviceType,
		State:      ControlStateFromMode(out.Mode),
		LedsCount:  out.LedsCount,
	}
	for i := range out.Segments {
		node.Children = append(node.Children, buildSegmentNode(t, dev.Port, out, &out.Segments[i]))
	}
	t.Nodes[node.ID] = node
	return node.ID
}

func buildOutputNode(t *Tree, dev *Device, out *OutputPort) string {
	node := &TreeNode{
		ID:        OutputNodeID(dev.Port, out.ID),
		Kind:      NodeOutput,
		Name:      out.Name,
		Scope:     Ref{Port: dev.Port, OutputID: out.ID},
		State:     ControlStateFromMode(out.Mode),
		LedsCount: out.LedsCount,
	}
	for i := range out.Segments {
		node.Children = append(node.Children, buildSegmentNode(t, dev.Port, out, &out.Segments[i]))
	}
	t.Nodes[node.ID] = node
	return node.ID
}

func buildSegmentNode(t *Tree, port string, out *OutputPort, seg *Segment) string {
	node := &TreeNode{
		ID:        SegmentNodeID(port, out.ID, seg.ID),
		Kind:      NodeSegment,
		Name:      seg.Name,
		Scope:     Ref{Port: port, OutputID: out.ID, SegmentID: seg.ID},
		State:     ControlStateFromMode(seg.Mode),
		LedsCount: seg.LedsCount,
	}
	t.Nodes[node.ID] = node
	return node.ID
}

func deviceDisplayName(dev *Device) string {
	if dev.Model != "" {
		return dev.Model
	}
	return dev.Port
}
