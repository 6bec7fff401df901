package signature

import (
	"strconv"
	"strings"
)

// builtins maps qualified class names of builtin types to JVM descriptors.
var builtins = func() map[string]string {
	m := map[string]string{
		"kotlin/Unit": "V",
	}

	primitives := []struct{ name, desc string }{
		{"Boolean", "Z"},
		{"Char", "C"},
		{"Byte", "B"},
		{"Short", "S"},
		{"Int", "I"},
		{"Float", "F"},
		{"Long", "J"},
		{"Double", "D"},
	}
	for _, p := range primitives {
		m["kotlin/"+p.name] = p.desc
		m["kotlin/"+p.name+"Array"] = "[" + p.desc
	}

	javaLang := []struct{ name, java string }{
		{"Any", "Object"},
		{"Nothing", "Void"},
		{"Annotation", "annotation/Annotation"},
		{"String", "String"},
		{"CharSequence", "CharSequence"},
		{"Throwable", "Throwable"},
		{"Cloneable", "Cloneable"},
		{"Number", "Number"},
		{"Comparable", "Comparable"},
		{"Enum", "Enum"},
	}
	for _, j := range javaLang {
		m["kotlin/"+j.name] = "Ljava/lang/" + j.java + ";"
	}

	collections := []struct{ name, java string }{
		{"Iterator", "java/util/Iterator"},
		{"Collection", "java/util/Collection"},
		{"List", "java/util/List"},
		{"Set", "java/util/Set"},
		{"ListIterator", "java/util/ListIterator"},
		{"Iterable", "java/lang/Iterable"},
		{"Map", "java/util/Map"},
		{"Map.Entry", "java/util/Map$Entry"},
	}
	for _, c := range collections {
		desc := "L" + c.java + ";"
		m["kotlin/collections/"+c.name] = desc
		m["kotlin/collections/Mutable"+c.name] = desc
	}
	delete(m, "kotlin/collections/MutableMap.Entry")
	m["kotlin/collections/MutableMap.MutableEntry"] = "Ljava/util/Map$Entry;"

	for i := 0; i <= 22; i++ {
		n := strconv.Itoa(i)
		m["kotlin/jvm/functions/Function"+n] = "Lkotlin/jvm/functions/Function" + n + ";"
		m["kotlin/Function"+n] = "Lkotlin/jvm/functions/Function" + n + ";"
		m["kotlin/reflect/KFunction"+n] = "Lkotlin/reflect/KFunction;"
	}

	for _, name := range []string{"Char", "Byte", "Short", "Int", "Float", "Long", "Double", "String", "Enum"} {
		m["kotlin/"+name+".Companion"] = "Lkotlin/jvm/internal/" + name + "CompanionObject;"
	}
	return m
}()

// MapClass returns the JVM descriptor of a qualified class name such as
// "kotlin/Int" or "com/example/Outer.Inner".
//
// Builtin types map to their JVM counterparts; any other class maps to an
// object descriptor with nested class separators replaced by '$'.
func MapClass(qualifiedName string) string {
	if desc, ok := builtins[qualifiedName]; ok {
		return desc
	}
	return "L" + strings.ReplaceAll(qualifiedName, ".", "$") + ";"
}
