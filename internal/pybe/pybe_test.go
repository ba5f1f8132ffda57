package pybe

import (
	"strings"
	"testing"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/idltest"
)

func pyModule(t *testing.T, archive string, opts emit.Options) string {
	t.Helper()
	out, err := Generate(idltest.Graph(t, archive), opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	name := FileName(opts.Namespace)
	text, ok := out[name]
	if !ok || len(out) != 1 {
		t.Fatalf("expected the single artifact %s, got %d artifacts", name, len(out))
	}
	return text
}

func TestPreamble(t *testing.T) {
	text := pyModule(t, idltest.Calculator, emit.Options{Namespace: "calc"})
	if !strings.HasPrefix(text, "\"\"\"\nAUTO-GENERATED - DO NOT EDIT\n") {
		t.Errorf("expected the module docstring to carry the banner, got %q", text[:40])
	}
	idltest.Contains(t, "module", text,
		"from __future__ import annotations",
		"override = os.environ.get(\"CALC_LIBRARY\")",
		"name = \"calc.dll\"",
		"name = \"libcalc.dylib\"",
		"name = \"libcalc.so\"",
		"_lib = _load_library()",
		"__all__ = [\n    \"Point\",\n    \"Calculator\",\n]",
	)
}

func TestLibraryNameOverride(t *testing.T) {
	text := pyModule(t, idltest.Calculator, emit.Options{Namespace: "calc", LibraryName: "calcengine"})
	idltest.Contains(t, "module", text, "name = \"libcalcengine.so\"")
	idltest.Excludes(t, "module", text, "name = \"libcalc.so\"")
}

func TestCalculatorWrapper(t *testing.T) {
	text := pyModule(t, idltest.Calculator, emit.Options{Namespace: "calc"})
	idltest.Contains(t, "module", text,
		"class Point(Structure):\n    _fields_ = [\n        (\"x\", c_int),\n        (\"y\", c_int),\n    ]",
		"return f\"Point(x={self.x!r}, y={self.y!r})\"",
		"_lib.Calculator_create.restype = c_void_p\n_lib.Calculator_create.argtypes = []",
		"_lib.Calculator_destroy.restype = None\n_lib.Calculator_destroy.argtypes = [c_void_p]",
		"_lib.Calculator_add.restype = c_int\n_lib.Calculator_add.argtypes = [c_void_p, c_int, c_int]",
		"class Calculator:",
		"def __init__(self):\n        self._callbacks = []\n        self._handle = _lib.Calculator_create()\n        if not self._handle:\n            raise RuntimeError(\"Failed to create Calculator\")",
		"def add(self, a: int, b: int) -> int:\n        return _lib.Calculator_add(self._handle, a, b)",
		"def __exit__(self, exc_type, exc_val, exc_tb):\n        self.close()\n        return False",
	)
}

func TestEnumsAndCallbacks(t *testing.T) {
	text := pyModule(t, idltest.Geometry, emit.Options{Namespace: "geo"})
	idltest.Contains(t, "module", text,
		"class Color(IntEnum):\n    RED = 2\n    GREEN = 3\n    BLUE = 4",
		"FaceVisitor = CFUNCTYPE(c_int, POINTER(Face), c_int)",
		"Progress = CFUNCTYPE(None, c_int)",
		"def _wrap_FaceVisitor(fn):\n    def trampoline(face, index):\n        return 1 if fn(face.contents if face else None, index) else 0\n    return FaceVisitor(trampoline)",
		"def _wrap_Progress(fn):\n    def trampoline(percent):\n        fn(percent)\n    return Progress(trampoline)",
		"def visitFaces(self, visitor: Callable[[Face, int], bool]) -> None:\n        _visitor = _wrap_FaceVisitor(visitor)\n        self._callbacks.append(_visitor)\n        _lib.Geometry_visitFaces(self._handle, _visitor)",
		"_lib.Geometry_visitFaces.argtypes = [c_void_p, FaceVisitor]",
		"def tint(self) -> Color:\n        return Color(_lib.Geometry_tint(self._handle))",
		"_lib.Geometry_tint.restype = c_int",
	)
}

func TestResultCollection(t *testing.T) {
	text := pyModule(t, idltest.Geometry, emit.Options{Namespace: "geo"})
	idltest.Contains(t, "module", text,
		"class Geometry_Point_CResult(Structure):\n    pass",
		"class Geometry_double_CResult(Structure):\n    pass",
		"_lib.Geometry_createLine.restype = c_void_p",
		"_lib.Geometry_Point_CResult_getData.restype = POINTER(Point)",
		"_lib.Geometry_double_CResult_getData.restype = POINTER(c_double)",
		"_lib.Geometry_Point_CResult_free.restype = None",
		"def createLine(self, x0: int, y0: int, x1: int, y1: int, n: int) -> List[Point]:\n        return _collect(_lib.Geometry_createLine(self._handle, x0, y0, x1, y1, n), _lib.Geometry_Point_CResult_getCount, _lib.Geometry_Point_CResult_getData, _lib.Geometry_Point_CResult_free, Point.from_buffer_copy)",
		"return _collect(_lib.Geometry_lengths(self._handle), _lib.Geometry_double_CResult_getCount, _lib.Geometry_double_CResult_getData, _lib.Geometry_double_CResult_free)\n",
		"finally:\n        free(result)",
	)
}

func TestConversions(t *testing.T) {
	text := pyModule(t, idltest.Geometry, emit.Options{Namespace: "geo"})
	idltest.Contains(t, "module", text,
		"def __init__(self, name: str, scale: int):",
		"self._handle = _lib.Geometry_create(_encode(name), scale)",
		"_lib.Geometry_create.argtypes = [c_char_p, c_int]",
		"def describe(self, p: Point) -> Optional[str]:\n        return _decode(_lib.Geometry_describe(self._handle, p))",
		"def contains(self, p: Point) -> bool:\n        return bool(_lib.Geometry_contains(self._handle, p))",
		"_lib.Geometry_blend(self._handle, other._handle if other is not None else None, into._handle if into is not None else None)",
		"def blend(self, other: Geometry, into: Optional[Geometry]) -> None:",
		"def clone(self) -> Optional[Geometry]:\n        return Geometry._adopt(_lib.Geometry_clone(self._handle))",
		"_lib.Geometry_load.argtypes = [c_void_p, POINTER(c_uint8), c_int]",
		"def load(self, data: bytes, size: int) -> None:\n        _lib.Geometry_load(self._handle, _buffer(data), size)",
	)
}

func TestAttributes(t *testing.T) {
	text := pyModule(t, idltest.Geometry, emit.Options{Namespace: "geo"})
	idltest.Contains(t, "module", text,
		"_lib.Geometry_isVisible.restype = c_int",
		"@property\n    def visible(self) -> bool:\n        return bool(_lib.Geometry_isVisible(self._handle))",
		"@property\n    def width(self) -> int:\n        return _lib.Geometry_getWidth(self._handle)",
		"@property\n    def label(self) -> str:\n        return _decode(_lib.Geometry_getLabel(self._handle))",
	)
}

func TestClassWithoutConstructor(t *testing.T) {
	archive := `
-- registry.idl --
class Registry {
    int size() const;
}
`
	text := pyModule(t, archive, emit.Options{Namespace: "reg"})
	idltest.Contains(t, "module", text,
		"raise TypeError(\"Registry has no constructor\")",
		"_lib.Registry_destroy.argtypes = [c_void_p]",
	)
	idltest.Excludes(t, "module", text, "Registry_create")
}
