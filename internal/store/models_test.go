package store_test

import (
	"testing"
	"time"

	"teachassist/internal/store"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to store.NodeStatus
		want     bool
	}{
		{store.NodePending, store.NodeRunning, true},
		{store.NodeRunning, store.NodeCompleted, true},
		{store.NodeRunning, store.NodeFailed, true},
		{store.NodePending, store.NodeCompleted, false},
		{store.NodeCompleted, store.NodeRunning, false},
		{store.NodeFailed, store.NodePending, false},
		{store.NodeCompleted, store.NodeFailed, false},
	}
	for _, tc := range cases {
		if got := store.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDerivedStatus(t *testing.T) {
	node := func(status store.NodeStatus) store.TaskNode {
		return store.TaskNode{NodeID: store.NodeID(1), TaskType: "generate-lesson-plan", Status: status}
	}

	cases := []struct {
		name string
		plan *store.Plan
		want store.RequestStatus
	}{
		{"nil plan", nil, store.StatusPending},
		{"no nodes", &store.Plan{}, store.StatusPlanned},
		{"all pending", &store.Plan{TaskNodes: []store.TaskNode{node(store.NodePending)}}, store.StatusPlanned},
		{"one running", &store.Plan{TaskNodes: []store.TaskNode{node(store.NodeRunning), node(store.NodePending)}}, store.StatusProcessing},
		{"all completed", &store.Plan{TaskNodes: []store.TaskNode{node(store.NodeCompleted)}}, store.StatusCompleted},
		{"any failed", &store.Plan{TaskNodes: []store.TaskNode{node(store.NodeCompleted), node(store.NodeFailed)}}, store.StatusFailed},
		{"failed beats running", &store.Plan{TaskNodes: []store.TaskNode{node(store.NodeRunning), node(store.NodeFailed)}}, store.StatusFailed},
	}
	for _, tc := range cases {
		if got := tc.plan.DerivedStatus(); got != tc.want {
			t.Errorf("%s: DerivedStatus() = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestArtifactMetaValidate(t *testing.T) {
	primary := store.ArtifactMeta{Kind: store.MetaPrimary, TaskType: "generate-lesson-plan", Model: "test-model", NodeID: store.NodeID(1)}
	if err := primary.Validate(); err != nil {
		t.Fatalf("primary meta should validate: %v", err)
	}

	tiering := store.ArtifactMeta{Kind: store.MetaTiering, TaskType: "generate-tiered-versions", Tier: store.TierApproaching, SourceArtifactID: "a1", Model: "test-model"}
	if err := tiering.Validate(); err != nil {
		t.Fatalf("tiering meta should validate: %v", err)
	}
	tiering.Tier = ""
	if err := tiering.Validate(); err == nil {
		t.Fatal("tiering meta without tier should fail validation")
	}

	translation := store.ArtifactMeta{Kind: store.MetaTranslation, TaskType: "generate-translation", TargetLanguage: "es", SourceArtifactID: "a1", Model: "test-model"}
	if err := translation.Validate(); err != nil {
		t.Fatalf("translation meta should validate: %v", err)
	}
	translation.TargetLanguage = ""
	if err := translation.Validate(); err == nil {
		t.Fatal("translation meta without target language should fail validation")
	}

	unknown := store.ArtifactMeta{Kind: "summary", TaskType: "generate-generic"}
	if err := unknown.Validate(); err == nil {
		t.Fatal("unknown meta kind should fail validation")
	}
}

func TestPlanNodeLookup(t *testing.T) {
	started := time.Now().UTC()
	plan := &store.Plan{TaskNodes: []store.TaskNode{
		{NodeID: store.NodeID(1), TaskType: "generate-lesson-plan", Status: store.NodeRunning, StartedAt: &started},
		{NodeID: store.NodeID(2), TaskType: "generate-worksheet", Status: store.NodePending},
	}}
	if node := plan.Node(store.NodeID(2)); node == nil || node.TaskType != "generate-worksheet" {
		t.Fatalf("expected node_2 lookup to return worksheet node, got %+v", node)
	}
	if node := plan.Node("node_9"); node != nil {
		t.Fatalf("expected missing node lookup to return nil, got %+v", node)
	}
}
