// classes.go — PRIVATE: the clowder (class) runtime.
//
// This file:
//  - Builds runtime *Class values from parsed "clowder" nodes.
//  - Constructs instances (`new`), seeding field defaults along the
//    inheritance chain and running the constructor when declared.
//  - Resolves property access and assignment on instances and classes,
//    including getters, setters, static methods, and `this` binding.
//
// Dispatch rule: lookup walks Instance -> Class -> parent chain and stops at
// the first match (nearest wins). A miss on an instance is a runtime error
// naming the member; plain objects fall back to their prototype, then null.

package pawx

// FieldDef is a declared class field with an optional default expression,
// evaluated per instance at construction time.
type FieldDef struct {
	Name    string
	Default S // nil -> null
}

// Class is the runtime representation of a clowder declaration.
type Class struct {
	Name    string
	Parent  *Class
	Fields  []FieldDef
	Methods map[string]*Fun
	Getters map[string]*Fun
	Setters map[string]*Fun
	Statics map[string]*Fun

	// DefEnv is the environment the class was declared in; field defaults
	// and methods close over it.
	DefEnv *Env
}

// Instance owns its field map and points back at its Class for dispatch.
type Instance struct {
	Class  *Class
	Fields *MapObject
}

func ClassVal(c *Class) Value       { return Value{Tag: VTClass, Data: c} }
func InstanceVal(i *Instance) Value { return Value{Tag: VTInstance, Data: i} }

// ─────────────────────────── class construction ─────────────────────────────

// buildClass turns a ("clowder", name, parent, ("members", ...), pos) node
// into a runtime class. The parent name, when present, must resolve to a
// class in env.
func (ip *Interpreter) buildClass(node S, env *Env) *Class {
	name := node[1].(string)
	parentName := node[2].(string)

	cls := &Class{
		Name:    name,
		Methods: map[string]*Fun{},
		Getters: map[string]*Fun{},
		Setters: map[string]*Fun{},
		Statics: map[string]*Fun{},
		DefEnv:  env,
	}

	if parentName != "" {
		pv, err := env.Get(parentName)
		if err != nil {
			failName("undefined class: " + parentName)
		}
		if pv.Tag != VTClass {
			failType("'" + parentName + "' is not a class")
		}
		cls.Parent = pv.Data.(*Class)
	}

	members := node[3].(S)
	for _, raw := range members[1:] {
		m := raw.(S)
		switch tag(m) {
		case "field":
			var def S
			if m[2] != nil {
				def = m[2].(S)
			}
			cls.Fields = append(cls.Fields, FieldDef{Name: m[1].(string), Default: def})
		case "method":
			fn := &Fun{Params: m[2].([]string), Body: m[3].(S), Env: env}
			if m[4].(bool) {
				cls.Statics[m[1].(string)] = fn
			} else {
				cls.Methods[m[1].(string)] = fn
			}
		case "getter":
			cls.Getters[m[1].(string)] = &Fun{Body: m[2].(S), Env: env}
		case "setter":
			cls.Setters[m[1].(string)] = &Fun{Params: []string{m[2].(string)}, Body: m[3].(S), Env: env}
		}
	}
	return cls
}

// ─────────────────────────── instance construction ──────────────────────────

// constructInstance builds `new C(args)`: field defaults are seeded walking
// the chain root-first (so subclass defaults override), then the nearest
// declared constructor method runs with `this` bound.
func (ip *Interpreter) constructInstance(cls *Class, args []Value) Value {
	inst := &Instance{Class: cls, Fields: NewMapObject()}

	for _, c := range chainRootFirst(cls) {
		for _, fd := range c.Fields {
			v := Null
			if fd.Default != nil {
				v = ip.eval(fd.Default, NewEnv(c.DefEnv))
			}
			inst.Fields.SetKey(fd.Name, v)
		}
	}

	self := InstanceVal(inst)
	if ctor := findMethod(cls, "new"); ctor != nil {
		ip.applyArgs(bindThis(ctor, self), args)
	}
	return self
}

func chainRootFirst(c *Class) []*Class {
	var out []*Class
	for ; c != nil; c = c.Parent {
		out = append([]*Class{c}, out...)
	}
	return out
}

func findMethod(c *Class, name string) *Fun {
	for ; c != nil; c = c.Parent {
		if m, ok := c.Methods[name]; ok {
			return m
		}
	}
	return nil
}

func findGetter(c *Class, name string) *Fun {
	for ; c != nil; c = c.Parent {
		if g, ok := c.Getters[name]; ok {
			return g
		}
	}
	return nil
}

func findSetter(c *Class, name string) *Fun {
	for ; c != nil; c = c.Parent {
		if s, ok := c.Setters[name]; ok {
			return s
		}
	}
	return nil
}

func findStatic(c *Class, name string) *Fun {
	for ; c != nil; c = c.Parent {
		if s, ok := c.Statics[name]; ok {
			return s
		}
	}
	return nil
}

// bindThis returns a copy of fn with the receiver attached, so a method
// detached via obj.m keeps its receiver.
func bindThis(fn *Fun, recv Value) Value {
	bound := *fn
	bound.This = &recv
	return FunVal(&bound)
}

// ─────────────────────────── property access ────────────────────────────────

// getProp resolves `obj.name` for every receiver kind.
func (ip *Interpreter) getProp(recv Value, name string) Value {
	switch recv.Tag {
	case VTInstance:
		inst := recv.Data.(*Instance)
		if g := findGetter(inst.Class, name); g != nil {
			return ip.applyArgs(bindThis(g, recv), nil)
		}
		if v, ok := inst.Fields.GetKey(name); ok {
			return v
		}
		if m := findMethod(inst.Class, name); m != nil {
			return bindThis(m, recv)
		}
		fail("undefined property '" + name + "' on instance of " + inst.Class.Name)

	case VTClass:
		cls := recv.Data.(*Class)
		if s := findStatic(cls, name); s != nil {
			return bindThis(s, recv)
		}
		fail("undefined static member '" + name + "' on class " + cls.Name)

	case VTObject:
		mo := recv.Data.(*MapObject)
		for ; mo != nil; mo = mo.Proto {
			if v, ok := mo.GetKey(name); ok {
				return v
			}
		}
		return Null

	case VTError:
		if name == "message" {
			return Str(recv.Data.(*ErrorValue).Message)
		}
		fail("undefined property '" + name + "' on error")

	case VTFuture:
		return ip.futureMember(recv.Data.(*Future), name)

	case VTStr:
		if name == "length" {
			return Num(float64(len(recv.Data.(string))))
		}
		fail("undefined property '" + name + "' on string")

	case VTArray:
		if name == "length" {
			return Num(float64(len(recv.Data.(*ArrayObject).Elems)))
		}
		fail("undefined property '" + name + "' on array")

	case VTTuple:
		if name == "length" {
			return Num(float64(len(recv.Data.([]Value))))
		}
		fail("undefined property '" + name + "' on tuple")

	case VTBytes:
		if name == "length" {
			return Num(float64(len(recv.Data.([]byte))))
		}
		fail("undefined property '" + name + "' on bytes")
	}

	failType("property access on " + typeName(recv))
	return Null
}

// setProp resolves `obj.name = v`.
func (ip *Interpreter) setProp(recv Value, name string, v Value) {
	switch recv.Tag {
	case VTInstance:
		inst := recv.Data.(*Instance)
		if s := findSetter(inst.Class, name); s != nil {
			ip.applyArgs(bindThis(s, recv), []Value{v})
			return
		}
		inst.Fields.SetKey(name, v)
		return
	case VTObject:
		recv.Data.(*MapObject).SetKey(name, v)
		return
	}
	failType("cannot assign property '" + name + "' on " + typeName(recv))
}
