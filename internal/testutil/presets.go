package testutil

import "github.com/zjrosen/diagramkit/internal/model"

// Pair builds two linked nodes "a" and "b", a's right port to b's left port.
func Pair(t TB) *model.Diagram {
	t.Helper()
	return NewBuilder(t).
		WithNode("a", Ports(model.AlignRight)).
		WithNode("b", At(200, 0), Ports(model.AlignLeft)).
		WithLink("a", model.AlignRight, "b", model.AlignLeft).
		Build()
}

// NestedGroups builds an outer group holding an inner group with one node, plus a
// free node linked into it.
func NestedGroups(t TB) *model.Diagram {
	t.Helper()
	return NewBuilder(t).
		WithGroup("outer", GroupAt(300, 0)).
		WithGroup("inner", Nested("outer")).
		WithNode("child", At(340, 40), InGroup("inner"), Ports(model.AlignLeft)).
		WithNode("free", Ports(model.AlignRight)).
		WithLink("free", model.AlignRight, "child", model.AlignLeft, Via(model.Point{X: 200, Y: 30})).
		Build()
}
