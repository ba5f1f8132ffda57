package emit

import "github.com/lhaig/idlgen/internal/model"

// ClassEmitter is the per-class contract every binding backend
// implements. WalkClass drives it in a fixed order so that all targets
// expose the same surface: lifecycle, then methods, then one result
// container per distinct vector element type, then attribute getters.
type ClassEmitter interface {
	BeginClass(c *model.Class)
	// Lifecycle emits the create/destroy pair. ctor is nil when the class
	// declares no constructor.
	Lifecycle(c *model.Class, ctor *model.Method)
	Method(c *model.Class, m *model.Method)
	Result(c *model.Class, elem string)
	Getter(c *model.Class, attr model.Member)
	EndClass(c *model.Class)
}

// WalkClass drives e over one class
func WalkClass(e ClassEmitter, c *model.Class) {
	e.BeginClass(c)
	e.Lifecycle(c, c.Constructor())
	ops := c.Operations()
	for i := range ops {
		e.Method(c, &ops[i])
	}
	for _, elem := range ResultElems(c) {
		e.Result(c, elem)
	}
	for _, attr := range c.Attributes {
		e.Getter(c, attr)
	}
	e.EndClass(c)
}

// WalkClasses drives e over classes in declaration order
func WalkClasses(e ClassEmitter, classes []model.Class) {
	for i := range classes {
		WalkClass(e, &classes[i])
	}
}
