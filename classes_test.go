// classes_test.go
package pawx

import (
	"strings"
	"testing"
)

func Test_Classes_ConstructAndCall(t *testing.T) {
	src := `
clowder Cat {
    name = "unnamed";
    new(n) { this.name = n; }
    speak() { return this.name + " says meow"; }
}
snuggle c = new Cat("Trouble");
c.speak();
`
	wantStr(t, evalSrc(t, src), "Trouble says meow")
}

func Test_Classes_FieldDefaults(t *testing.T) {
	src := `
clowder Cat {
    name = "unnamed";
    age = 0;
}
snuggle c = new Cat();
c.name + ":" + c.age;
`
	wantStr(t, evalSrc(t, src), "unnamed:0")
}

func Test_Classes_InstancesAreIndependent(t *testing.T) {
	src := `
clowder Counter {
    n = 0;
    bump() { this.n = this.n + 1; return this.n; }
}
snuggle a = new Counter();
snuggle b = new Counter();
a.bump(); a.bump(); a.bump();
b.bump();
(a.n, b.n);
`
	tup := evalSrc(t, src).Data.([]Value)
	wantNum(t, tup[0], 3)
	wantNum(t, tup[1], 1)
}

func Test_Classes_Inheritance_NearestWins(t *testing.T) {
	src := `
clowder Animal {
    speak() { return "..."; }
    kind() { return "animal"; }
}
clowder Cat inherits Animal {
    speak() { return "meow"; }
}
snuggle c = new Cat();
c.speak() + "/" + c.kind();
`
	wantStr(t, evalSrc(t, src), "meow/animal")
}

func Test_Classes_SubclassFieldDefaults_Override(t *testing.T) {
	src := `
clowder Animal { legs = 0; }
clowder Cat inherits Animal { legs = 4; }
snuggle c = new Cat();
c.legs;
`
	wantNum(t, evalSrc(t, src), 4)
}

func Test_Classes_ParentConstructor_RunsWhenNotOverridden(t *testing.T) {
	src := `
clowder Animal {
    name = null;
    new(n) { this.name = n; }
}
clowder Cat inherits Animal { }
snuggle c = new Cat("Trouble");
c.name;
`
	wantStr(t, evalSrc(t, src), "Trouble")
}

func Test_Classes_GetterBeforeField(t *testing.T) {
	src := `
clowder Cat {
    name = "raw";
    get name { return "got:" + "raw"; }
}
snuggle c = new Cat();
c.name;
`
	wantStr(t, evalSrc(t, src), "got:raw")
}

func Test_Classes_Setter_Intercepts(t *testing.T) {
	src := `
clowder Cat {
    stored = null;
    set name(v) { this.stored = "set:" + v; }
}
snuggle c = new Cat();
c.name = "Trouble";
c.stored;
`
	wantStr(t, evalSrc(t, src), "set:Trouble")
}

func Test_Classes_StaticMethods(t *testing.T) {
	src := `
clowder Cat {
    static kind() { return "feline"; }
}
Cat.kind();
`
	wantStr(t, evalSrc(t, src), "feline")
}

func Test_Classes_Static_NotOnInstance(t *testing.T) {
	e := evalErr(t, `
clowder Cat {
    static kind() { return "feline"; }
}
snuggle c = new Cat();
c.kind();
`)
	if !strings.Contains(e.Msg, "undefined property 'kind'") {
		t.Fatalf("msg: %q", e.Msg)
	}
}

func Test_Classes_UndefinedMember_Fails(t *testing.T) {
	e := evalErr(t, `
clowder Cat { }
snuggle c = new Cat();
c.whiskers;
`)
	if !strings.Contains(e.Msg, "undefined property 'whiskers' on instance of Cat") {
		t.Fatalf("msg: %q", e.Msg)
	}
}

func Test_Classes_DetachedMethod_KeepsReceiver(t *testing.T) {
	src := `
clowder Cat {
    name = "Trouble";
    who() { return this.name; }
}
snuggle c = new Cat();
snuggle m = c.who;
m();
`
	wantStr(t, evalSrc(t, src), "Trouble")
}

func Test_Classes_NewOnNonClass_IsTypeError(t *testing.T) {
	e := evalErr(t, `snuggle x = 5; new x();`)
	if e.Kind != DiagType {
		t.Fatalf("want type error, got %v: %s", e.Kind, e.Msg)
	}
}

func Test_Classes_InheritUnknownParent_IsNameError(t *testing.T) {
	e := evalErr(t, `clowder Cat inherits Ghost { }`)
	if e.Kind != DiagName {
		t.Fatalf("want name error, got %v: %s", e.Kind, e.Msg)
	}
}

func Test_Classes_PlainObject_PrototypeFallback(t *testing.T) {
	src := `
snuggle base = { greet: "hello" };
snuggle child = { name: "kit" };
setProto(child, base);
child.greet + " " + child.name;
`
	wantStr(t, evalSrc(t, src), "hello kit")
}

func Test_Classes_ObjectMiss_IsNull(t *testing.T) {
	wantNull(t, evalSrc(t, `snuggle o = { a: 1 }; o.b;`))
}
