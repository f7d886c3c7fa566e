package scope

import "testing"

func TestBuildTree_MultiOutputDevice(t *testing.T) {
	tree := BuildTree(testDevices())

	if len(tree.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree.Roots))
	}

	devNode, ok := tree.Node("dev:COM3")
	if !ok {
		t.Fatal("expected device node dev:COM3")
	}
	if devNode.Kind != NodeDevice {
		t.Errorf("kind = %q, want %q", devNode.Kind, NodeDevice)
	}
	if devNode.Name != "Strip Controller" {
		t.Errorf("name = %q, want model name", devNode.Name)
	}
	if devNode.LedsCount != 26 {
		t.Errorf("leds = %d, want 26", devNode.LedsCount)
	}
	if len(devNode.Children) != 2 {
		t.Fatalf("expected 2 output children, got %d", len(devNode.Children))
	}

	outNode, ok := tree.Node("out:COM3:out-a")
	if !ok {
		t.Fatal("expected output node out:COM3:out-a")
	}
	if outNode.Scope != (Ref{Port: "COM3", OutputID: "out-a"}) {
		t.Errorf("output scope = %+v", outNode.Scope)
	}
	if len(outNode.Children) != 2 {
		t.Fatalf("expected 2 segment children, got %d", len(outNode.Children))
	}

	segNode, ok := tree.Node("seg:COM3:out-a:seg-2")
	if !ok {
		t.Fatal("expected segment node seg:COM3:out-a:seg-2")
	}
	if segNode.Kind != NodeSegment || segNode.Name != "Right" {
		t.Errorf("segment node = %+v", segNode)
	}
}

func TestBuildTree_SingleOutputMerges(t *testing.T) {
	devices := testDevices()
	devices[1].DeviceType = DeviceTypeLight
	devices[1].Outputs[0].Mode = ModeState{
		SelectedEffectID:  "static",
		EffectiveEffectID: "static",
	}

	tree := BuildTree(devices)

	if _, ok := tree.Node("dev:COM7"); ok {
		t.Error("single-output device must not produce a device node")
	}
	merged, ok := tree.Node("out:COM7:main")
	if !ok {
		t.Fatal("expected merged node out:COM7:main")
	}
	if merged.Kind != NodeOutput {
		t.Errorf("kind = %q, want %q", merged.Kind, NodeOutput)
	}
	if merged.Name != "Desk Lamp" {
		t.Errorf("merged node name = %q, want device name", merged.Name)
	}
	if merged.DeviceType != DeviceTypeLight {
		t.Errorf("merged node device type = %q", merged.DeviceType)
	}
	if merged.State != ControlExplicit {
		t.Errorf("merged node state = %q, want output's state", merged.State)
	}
	if merged.Scope != (Ref{Port: "COM7", OutputID: "main"}) {
		t.Errorf("merged node scope = %+v", merged.Scope)
	}
}

func TestBuildTree_StableIDsAcrossSnapshots(t *testing.T) {
	first := BuildTree(testDevices())

	devices := testDevices()
	devices[0].Outputs[0].Mode = ModeState{SelectedEffectID: "fire", EffectiveEffectID: "fire"}
	second := BuildTree(devices)

	for id := range first.Nodes {
		if _, ok := second.Nodes[id]; !ok {
			t.Errorf("node id %q missing after state change", id)
		}
	}
}
