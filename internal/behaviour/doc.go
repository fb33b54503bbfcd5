// Package behaviour hosts the interactive editing layer of a diagram.
//
// A behaviour is a unit of logic that subscribes to the diagram's bus while
// its options are enabled and releases every subscription when they are not.
// Concrete behaviours embed Base, which owns that lifecycle: the attach
// function passed to Base.Init registers handlers through On and OnWhere, and
// Base replays it whenever the options flip back to enabled.
//
// Container holds at most one behaviour and one options value per concrete
// type. Behaviours mutate the model only through Host, which the diagram
// service implements.
package behaviour
