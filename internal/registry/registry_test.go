package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type baseModel struct{ name string }

type derivedModel struct {
	baseModel
}

type taggedDerived struct {
	baseModel
}

type grandChild struct {
	*derivedModel
}

type wrapper struct {
	ext any
}

func (w *wrapper) Extension() any { return w.ext }

type extModel struct{ value int }

type viewA struct{ bound any }

func (v *viewA) Bind(m any) error                { v.bound = m; return nil }
func (v *viewA) Render(width, height int) string { return "A" }

type viewB struct{ bound any }

func (v *viewB) Bind(m any) error                { v.bound = m; return nil }
func (v *viewB) Render(width, height int) string { return "B" }

type failingView struct{}

func (failingView) Bind(any) error                  { return errors.New("nope") }
func (failingView) Render(width, height int) string { return "" }

type notAView struct{}

func TestRegistry_DirectOverridesInherited(t *testing.T) {
	r, err := MapType[baseModel, *viewB](NewBuilder()).
		Map(reflect.TypeFor[taggedDerived](), reflect.TypeFor[viewA]()).
		Build()
	require.NoError(t, err)

	ct, err := r.ComponentType(reflect.TypeFor[*taggedDerived]())
	require.NoError(t, err)
	require.Equal(t, reflect.TypeFor[*viewA](), ct)

	ct, err = r.ComponentType(reflect.TypeFor[derivedModel]())
	require.NoError(t, err)
	require.Equal(t, reflect.TypeFor[*viewB](), ct, "inherited through embedding")
}

func TestRegistry_NearestAncestorWins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(reflect.TypeFor[baseModel](), reflect.TypeFor[*viewB]()))
	require.NoError(t, r.Register(reflect.TypeFor[derivedModel](), reflect.TypeFor[*viewA]()))

	ct, err := r.ComponentType(reflect.TypeFor[grandChild]())
	require.NoError(t, err)
	require.Equal(t, reflect.TypeFor[*viewA](), ct)
}

func TestRegistry_NoComponent(t *testing.T) {
	r := NewRegistry()

	_, err := r.ComponentType(reflect.TypeFor[baseModel]())
	require.ErrorIs(t, err, ErrNoComponent)

	_, err = r.ComponentFor(&derivedModel{})
	require.ErrorIs(t, err, ErrNoComponent)
}

func TestRegistry_RegisterRejectsNonComponent(t *testing.T) {
	r := NewRegistry()

	err := r.Register(reflect.TypeFor[baseModel](), reflect.TypeFor[notAView]())
	require.ErrorIs(t, err, ErrNotComponent)
	require.Equal(t, 0, r.Len())

	require.ErrorIs(t, r.Register(nil, reflect.TypeFor[viewA]()), ErrNilType)
}

func TestBuilder_JoinsErrors(t *testing.T) {
	_, err := NewBuilder().
		Map(reflect.TypeFor[baseModel](), reflect.TypeFor[notAView]()).
		Map(reflect.TypeFor[derivedModel](), reflect.TypeFor[int]()).
		Build()
	require.ErrorIs(t, err, ErrNotComponent)
}

func TestRegistry_ExtensionResolvedFirst(t *testing.T) {
	r, err := MapType[extModel, *viewA](MapType[wrapper, *viewB](NewBuilder())).Build()
	require.NoError(t, err)

	ext := &extModel{value: 3}
	w := &wrapper{ext: ext}
	c, err := r.Instantiate(w)
	require.NoError(t, err)
	require.Equal(t, "A", c.Render(1, 1))
	require.Same(t, ext, c.(*viewA).bound)

	plain := &wrapper{}
	c, err = r.Instantiate(plain)
	require.NoError(t, err)
	require.Equal(t, "B", c.Render(1, 1))
	require.Same(t, plain, c.(*viewB).bound)

	unmapped := &wrapper{ext: &baseModel{}}
	ct, err := r.ComponentFor(unmapped)
	require.NoError(t, err)
	require.Equal(t, reflect.TypeFor[*viewB](), ct, "falls back to the model type")
}

func TestRegistry_InstantiateBindError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(reflect.TypeFor[baseModel](), reflect.TypeFor[failingView]()))

	_, err := r.Instantiate(&baseModel{})
	require.ErrorContains(t, err, "nope")
}

func TestRegistry_MappingsSorted(t *testing.T) {
	r, err := NewBuilder().
		Map(reflect.TypeFor[derivedModel](), reflect.TypeFor[viewA]()).
		Map(reflect.TypeFor[baseModel](), reflect.TypeFor[viewB]()).
		Build()
	require.NoError(t, err)

	m := r.Mappings()
	require.Len(t, m, 2)
	require.Equal(t, reflect.TypeFor[baseModel](), m[0].Model)
	require.Equal(t, reflect.TypeFor[*viewB](), m[0].Component)
}
