package typemap

// C maps to the stable C ABI. bool crosses the ABI as int and strings as
// borrowed NUL-terminated buffers; a vector is a pointer to its first
// element.
var C = &Table{
	Name: "c",
	Primitives: map[string]string{
		"void":     "void",
		"bool":     "int",
		"int":      "int",
		"int8_t":   "int8_t",
		"int16_t":  "int16_t",
		"int32_t":  "int32_t",
		"int64_t":  "int64_t",
		"uint8_t":  "uint8_t",
		"uint16_t": "uint16_t",
		"uint32_t": "uint32_t",
		"uint64_t": "uint64_t",
		"float":    "float",
		"double":   "double",
		"string":   "const char*",
	},
	Vector: func(elem string) string { return elem + "*" },
}

// Cpp maps to the native C++ implementation types.
var Cpp = &Table{
	Name: "cpp",
	Primitives: map[string]string{
		"void":     "void",
		"bool":     "bool",
		"int":      "int",
		"int8_t":   "int8_t",
		"int16_t":  "int16_t",
		"int32_t":  "int32_t",
		"int64_t":  "int64_t",
		"uint8_t":  "uint8_t",
		"uint16_t": "uint16_t",
		"uint32_t": "uint32_t",
		"uint64_t": "uint64_t",
		"float":    "float",
		"double":   "double",
		"string":   "std::string",
	},
	Vector: func(elem string) string { return "std::vector<" + elem + ">" },
}

// Embind maps to the types exposed through Emscripten bindings. Vectors
// cross as JavaScript arrays.
var Embind = &Table{
	Name:       "wasm",
	Primitives: Cpp.Primitives,
	Vector:     func(string) string { return "emscripten::val" },
}

// Java maps to the Java types of the high-level wrapper. Unsigned integers
// use the signed type of the same width.
var Java = &Table{
	Name: "java",
	Primitives: map[string]string{
		"void":     "void",
		"bool":     "boolean",
		"int":      "int",
		"int8_t":   "byte",
		"int16_t":  "short",
		"int32_t":  "int",
		"int64_t":  "long",
		"uint8_t":  "byte",
		"uint16_t": "short",
		"uint32_t": "int",
		"uint64_t": "long",
		"float":    "float",
		"double":   "double",
		"string":   "String",
	},
	Vector: func(elem string) string { return "List<" + Boxed(elem) + ">" },
}

var boxed = map[string]string{
	"boolean": "Boolean",
	"byte":    "Byte",
	"short":   "Short",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

// Boxed returns the reference type for a Java primitive.
func Boxed(javaType string) string {
	if b, ok := boxed[javaType]; ok {
		return b
	}
	return javaType
}

// JNI maps to JNI native types. A vector crosses as the jlong address of
// a result container.
var JNI = &Table{
	Name: "jni",
	Primitives: map[string]string{
		"void":     "void",
		"bool":     "jboolean",
		"int":      "jint",
		"int8_t":   "jbyte",
		"int16_t":  "jshort",
		"int32_t":  "jint",
		"int64_t":  "jlong",
		"uint8_t":  "jbyte",
		"uint16_t": "jshort",
		"uint32_t": "jint",
		"uint64_t": "jlong",
		"float":    "jfloat",
		"double":   "jdouble",
		"string":   "jstring",
	},
	Vector: func(string) string { return "jlong" },
}

// JNISignature maps to JVM type descriptors. Declared types pass through
// and are qualified by the caller.
var JNISignature = &Table{
	Name: "jni-signature",
	Primitives: map[string]string{
		"void":     "V",
		"bool":     "Z",
		"int":      "I",
		"int8_t":   "B",
		"int16_t":  "S",
		"int32_t":  "I",
		"int64_t":  "J",
		"uint8_t":  "B",
		"uint16_t": "S",
		"uint32_t": "I",
		"uint64_t": "J",
		"float":    "F",
		"double":   "D",
		"string":   "Ljava/lang/String;",
	},
	Vector: func(elem string) string { return "[" + elem },
}

// Ctypes maps to Python ctypes type expressions.
var Ctypes = &Table{
	Name: "ctypes",
	Primitives: map[string]string{
		"void":     "None",
		"bool":     "c_int",
		"int":      "c_int",
		"int8_t":   "c_int8",
		"int16_t":  "c_int16",
		"int32_t":  "c_int32",
		"int64_t":  "c_int64",
		"uint8_t":  "c_uint8",
		"uint16_t": "c_uint16",
		"uint32_t": "c_uint32",
		"uint64_t": "c_uint64",
		"float":    "c_float",
		"double":   "c_double",
		"string":   "c_char_p",
	},
	Vector: func(elem string) string { return "POINTER(" + elem + ")" },
}

// Python maps to Python type hints.
var Python = &Table{
	Name: "python",
	Primitives: map[string]string{
		"void":     "None",
		"bool":     "bool",
		"int":      "int",
		"int8_t":   "int",
		"int16_t":  "int",
		"int32_t":  "int",
		"int64_t":  "int",
		"uint8_t":  "int",
		"uint16_t": "int",
		"uint32_t": "int",
		"uint64_t": "int",
		"float":    "float",
		"double":   "float",
		"string":   "str",
	},
	Vector: func(elem string) string { return "List[" + elem + "]" },
}
